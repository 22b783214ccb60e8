package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/wellstat/internal/history"
	"github.com/abhisek/wellstat/internal/model"
	"github.com/abhisek/wellstat/internal/report"
)

// caseFlags maps per-field flags to case fields, in form order.
var caseFlags = []struct {
	name  string
	usage string
}{
	{"age", "Age in years"},
	{"gender", "Gender (one of the survey levels)"},
	{"screen-time", "Daily screen time in hours"},
	{"sleep-quality", "Sleep quality, 1-10"},
	{"stress-level", "Stress level, 1-10"},
	{"days-offline", "Days without social media"},
	{"exercise", "Exercise sessions per week"},
	{"platform", "Primary platform (one of the survey levels)"},
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Score one respondent",
	Long: "Score one respondent given either a JSON case (--case file.json, or - for stdin) " +
		"or every per-field flag.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, logStderr)
		if err != nil {
			return err
		}
		defer e.Close()

		c, err := readCase(cmd, e.model.Design())
		if err != nil {
			return err
		}

		th := e.cfg.Threshold.Default
		if cmd.Flags().Changed("threshold") {
			th, _ = cmd.Flags().GetFloat64("threshold")
		}

		p, err := e.scorer(history.SourceCLI).Predict(c, th)
		if err != nil {
			return fmt.Errorf("predict: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"case": c, "prediction": p})
		}
		fmt.Fprint(out, report.Prediction(p))
		return nil
	},
}

// readCase decodes --case when given, otherwise assembles the case from
// the per-field flags, all of which are then required.
func readCase(cmd *cobra.Command, design *model.Design) (model.Case, error) {
	flags := cmd.Flags()
	if path, _ := flags.GetString("case"); path != "" {
		var (
			raw []byte
			err error
		)
		if path == "-" {
			raw, err = io.ReadAll(cmd.InOrStdin())
		} else {
			raw, err = os.ReadFile(path)
		}
		if err != nil {
			return model.Case{}, fmt.Errorf("read case: %w", err)
		}
		return design.DecodeCase(raw)
	}

	var missing []string
	for _, f := range caseFlags {
		if !flags.Changed(f.name) {
			missing = append(missing, "--"+f.name)
		}
	}
	if len(missing) > 0 {
		return model.Case{}, fmt.Errorf("%w: missing %s (or pass --case)", model.ErrInvalidCase, strings.Join(missing, ", "))
	}

	num := func(name string) float64 {
		v, _ := flags.GetFloat64(name)
		return v
	}
	str := func(name string) string {
		v, _ := flags.GetString(name)
		return v
	}
	return model.Case{
		Age:                    num("age"),
		Gender:                 str("gender"),
		DailyScreenTime:        num("screen-time"),
		SleepQuality:           num("sleep-quality"),
		StressLevel:            num("stress-level"),
		DaysWithoutSocialMedia: num("days-offline"),
		ExerciseFrequency:      num("exercise"),
		Platform:               str("platform"),
	}, nil
}

func init() {
	flags := predictCmd.Flags()
	flags.String("case", "", "JSON file holding the case, or - for stdin")
	for _, f := range caseFlags {
		if f.name == "gender" || f.name == "platform" {
			flags.String(f.name, "", f.usage)
		} else {
			flags.Float64(f.name, 0, f.usage)
		}
	}
	flags.Float64("threshold", 0.5, "Decision threshold in [0, 1] (default from config)")
	flags.Bool("json", false, "Print JSON instead of text")
}
