package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

// rootFlags are shared by the run and once subcommands.
type rootFlags struct {
	configPath string
	headless   bool
}

func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "autovisa",
		Short: "Watches a visa appointment portal and rebooks earlier slots as they open up",
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "config.yaml", "path to the YAML config file")
	root.PersistentFlags().BoolVar(&flags.headless, "headless", true, "run the browser without a visible window")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newOnceCmd(flags))
	root.AddCommand(newRunCmd(flags))

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
