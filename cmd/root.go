package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wellstat",
	Short: "Explore what predicts low happiness in social media habits",
	Long: "Wellstat fits a logistic regression of low happiness on a social media and " +
		"wellbeing survey, then lets you inspect the fit, tune the decision threshold " +
		"and score new respondents from a terminal UI, the command line or HTTP.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("data", "", "Path to the survey CSV (overrides WELLSTAT_DATA and the config file)")
	flags.String("config", "", "Path to a YAML config file (overrides WELLSTAT_CONFIG)")
	flags.String("db", "", "Record history to this SQLite file (overrides WELLSTAT_DB)")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-file", "", "Write logs to this file instead of stderr")

	rootCmd.Flags().Bool("no-welcome", false, "Skip the welcome animation")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}
