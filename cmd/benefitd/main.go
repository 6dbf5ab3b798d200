// Command benefitd serves the benefit tracker API and offers a few
// operational subcommands.
//
//	benefitd serve   [--config configs/config.yaml]
//	benefitd windows --frequency monthly --anchor 2021-06-15 --year 2024
//	benefitd remind  [--days 7]
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "benefitd",
		Short:         "Card benefit tracker",
		Long:          `benefitd tracks recurring card benefit credits: which window is open, what has been used, and what expires soon.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: search ./configs/config.yaml)")

	rootCmd.AddCommand(
		newServeCommand(),
		newWindowsCommand(),
		newRemindCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
