package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/wellstat/internal/report"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the fitted model summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, logStderr)
		if err != nil {
			return err
		}
		defer e.Close()

		fmt.Fprint(cmd.OutOrStdout(), report.Summary(e.model.Summary()))
		return nil
	},
}
