package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newOnceCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Perform a single reschedule attempt and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.RunOnce()
			if err != nil {
				if nerr := a.notifier.RunFailed(err); nerr != nil {
					a.log.Warnf("Failure notification not delivered: %v", nerr)
				}
				return err
			}

			fmt.Printf("Appointments found: %d\n", result.Discovered)
			for _, rb := range result.Rebooked {
				fmt.Printf("Rescheduled: %s -> %s\n", rb.Previous, rb.New)
				if nerr := a.notifier.Rebooked(rb.Previous, rb.New); nerr != nil {
					a.log.Warnf("Rebooking notification not delivered: %v", nerr)
				}
			}
			if len(result.Rebooked) == 0 {
				fmt.Println("No better slot found this time")
			}
			return nil
		},
	}
}
