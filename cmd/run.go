package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/wellstat/internal/app"
	"github.com/abhisek/wellstat/internal/history"
	"github.com/abhisek/wellstat/internal/screens/home"
)

// runApp trains the model, opens the store and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := setup(cmd, logQuiet)
	if err != nil {
		return err
	}
	defer e.Close()

	skip, _ := cmd.Flags().GetBool("no-welcome")
	return app.Run(app.Options{
		Deps: home.Deps{
			Model:     e.model,
			Scorer:    e.scorer(history.SourceTUI),
			Events:    e.events(),
			Threshold: e.cfg.Threshold,
			Logger:    e.logger,
		},
		SkipWelcome: skip,
	})
}
