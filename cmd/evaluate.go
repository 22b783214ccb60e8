package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/wellstat/internal/history"
	"github.com/abhisek/wellstat/internal/report"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Show the confusion matrix and rates at a threshold",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, logStderr)
		if err != nil {
			return err
		}
		defer e.Close()

		th := e.cfg.Threshold.Default
		if cmd.Flags().Changed("threshold") {
			th, _ = cmd.Flags().GetFloat64("threshold")
		}

		ev, err := e.scorer(history.SourceCLI).Evaluate(th)
		if err != nil {
			return fmt.Errorf("evaluate: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(ev)
		}
		fmt.Fprint(out, report.Evaluation(ev))
		return nil
	},
}

func init() {
	evaluateCmd.Flags().Float64("threshold", 0.5, "Decision threshold in [0, 1] (default from config)")
	evaluateCmd.Flags().Bool("json", false, "Print JSON instead of text")
}
