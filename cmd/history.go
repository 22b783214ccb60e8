package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/wellstat/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded evaluations and predictions",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent history entries, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, logStderr)
		if err != nil {
			return err
		}
		defer e.Close()

		repo := e.events()
		if repo == nil {
			return errHistoryDisabled
		}

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := history.Recent(cmd.Context(), repo, limit)
		if err != nil {
			return fmt.Errorf("query history: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}
		if len(entries) == 0 {
			fmt.Fprintln(out, "No history recorded yet.")
			return nil
		}
		for _, entry := range entries {
			fmt.Fprintln(out, entry)
		}
		return nil
	},
}

func init() {
	historyListCmd.Flags().Int("limit", 20, "Maximum number of entries (0 = all)")
	historyListCmd.Flags().Bool("json", false, "Print JSON instead of text")
	historyCmd.AddCommand(historyListCmd)
}
