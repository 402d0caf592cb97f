package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thiagorcdl/autovisa/pkg/supervisor"
)

func newRunCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run supervised reschedule attempts until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			s := supervisor.New(a, a.notifier, a.pacer, a.log)
			s.Start()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			sig := <-sigCh

			a.log.Infof("Received %s, shutting down", sig)
			s.Stop()
			return nil
		},
	}
}
