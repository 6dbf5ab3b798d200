package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/colinjianingxie/walletfreak-sub000/api"
	"github.com/colinjianingxie/walletfreak-sub000/benefits"
)

// newRemindCommand runs a single reminder pass, for cron-style deployments
// that don't keep the server's scheduler running.
func newRemindCommand() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Run one reminder pass and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			rs := api.NewReminderScheduler(a.service, benefits.LogNotifier{Logger: a.logger}, a.logger)
			rs.DaysBefore = a.cfg.Reminders.DaysBefore
			if cmd.Flags().Changed("days") {
				rs.DaysBefore = days
			}

			reminders, err := rs.RunNow(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d reminder(s)\n", len(reminders))
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "remind when a window closes within this many days")
	return cmd
}
