package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/colinjianingxie/walletfreak-sub000/engine"
)

// newWindowsCommand prints the windows of a policy for one year. It needs
// no config or storage.
func newWindowsCommand() *cobra.Command {
	var (
		frequency string
		anchor    string
		year      int
		ceiling   string
		at        string
	)

	cmd := &cobra.Command{
		Use:   "windows",
		Short: "List the windows of a frequency policy for a year",
		Example: `  benefitd windows --frequency quarterly --anchor 2021-06-15 --year 2024 --ceiling 200
  benefitd windows --frequency quadrennial --anchor unknown`,
		RunE: func(cmd *cobra.Command, args []string) error {
			freq, err := engine.ParseFrequency(frequency)
			if err != nil {
				return err
			}
			a, err := engine.ParseAnchor(anchor)
			if err != nil {
				return err
			}
			annual, err := decimal.NewFromString(ceiling)
			if err != nil {
				return fmt.Errorf("invalid ceiling %q: %w", ceiling, err)
			}

			now := time.Now().UTC()
			if at != "" {
				if now, err = time.Parse(engine.AnchorLayout, at); err != nil {
					return fmt.Errorf("invalid --now %q: %w", at, err)
				}
			}
			if year == 0 {
				year = now.Year()
			}

			cfg := engine.Config{AnnualCeiling: annual, Frequency: freq}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tLABEL\tSTART\tEND\tCEILING\tAVAILABLE\tCURRENT\tDAYS LEFT")
			for _, w := range cfg.Series(a, year, now) {
				days := "-"
				if w.Current {
					days = fmt.Sprint(w.DaysRemaining(now))
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\t%t\t%s\n",
					w.Key, w.Label,
					w.Start.Format(engine.AnchorLayout), w.End.Format(engine.AnchorLayout),
					w.Ceiling.StringFixed(engine.CeilingPlaces), w.Available, w.Current, days)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&frequency, "frequency", "f", "", "policy: monthly, quarterly, semi_annual, annual, anniversary, quadrennial")
	cmd.Flags().StringVarP(&anchor, "anchor", "a", "unknown", "account open date (YYYY-MM-DD) or \"unknown\"")
	cmd.Flags().IntVarP(&year, "year", "y", 0, "calendar year (default: current year)")
	cmd.Flags().StringVar(&ceiling, "ceiling", "0", "annual ceiling to split across windows")
	cmd.Flags().StringVar(&at, "now", "", "evaluate as of this date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("frequency")

	return cmd
}
