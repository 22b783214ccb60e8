// Package predict is the new-case form: every edit re-scores the case
// against the fitted model.
package predict

import (
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/wellstat/internal/config"
	"github.com/abhisek/wellstat/internal/model"
	"github.com/abhisek/wellstat/internal/screen"
	"github.com/abhisek/wellstat/internal/ui/components"
	"github.com/abhisek/wellstat/internal/ui/layout"
	"github.com/abhisek/wellstat/internal/ui/theme"
)

// Numeric inputs in form order.
const (
	inputAge = iota
	inputScreenTime
	inputSleep
	inputStress
	inputDaysOffline
	inputExercise
	numInputs
)

type fieldKind int

const (
	kindNumeric fieldKind = iota
	kindGender
	kindPlatform
	kindThreshold
)

type field struct {
	kind  fieldKind
	input int // index into inputs for kindNumeric
}

// form is the tab order.
var form = []field{
	{kindNumeric, inputAge},
	{kindGender, 0},
	{kindNumeric, inputScreenTime},
	{kindNumeric, inputSleep},
	{kindNumeric, inputStress},
	{kindNumeric, inputDaysOffline},
	{kindNumeric, inputExercise},
	{kindPlatform, 0},
	{kindThreshold, 0},
}

// PredictScreen scores one hypothetical respondent.
type PredictScreen struct {
	model  *model.Model
	scorer model.Scorer
	logger *zap.Logger

	inputs    [numInputs]components.TextInput
	gender    components.Choice
	platform  components.Choice
	threshold components.Slider
	focus     int

	prediction model.Prediction
	err        error
	saved      string
}

var _ screen.Screen = (*PredictScreen)(nil)
var _ screen.KeyHintProvider = (*PredictScreen)(nil)

// New creates the form seeded with the model's typical case. Live scoring
// runs on m; Enter records the prediction through scorer.
func New(m *model.Model, scorer model.Scorer, th config.ThresholdConfig, logger *zap.Logger) *PredictScreen {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := m.TypicalCase()
	design := m.Design()

	s := &PredictScreen{
		model:     m,
		scorer:    scorer,
		logger:    logger,
		gender:    components.NewChoice("Gender", design.Gender().Levels(), c.Gender),
		platform:  components.NewChoice("Platform", design.Platform().Levels(), c.Platform),
		threshold: components.NewSlider("Threshold", th.Default, th.Min, th.Max, th.Step),
	}
	s.threshold.Width = 24

	seed := [numInputs]struct {
		label string
		value float64
	}{
		inputAge:         {"Age", c.Age},
		inputScreenTime:  {"Daily screen time (hrs)", c.DailyScreenTime},
		inputSleep:       {"Sleep quality (1-10)", c.SleepQuality},
		inputStress:      {"Stress level (1-10)", c.StressLevel},
		inputDaysOffline: {"Days without social media", c.DaysWithoutSocialMedia},
		inputExercise:    {"Exercise per week", c.ExerciseFrequency},
	}
	for i, f := range seed {
		in := components.NewTextInput(f.label, "number", true, 8)
		in.SetValue(strconv.FormatFloat(f.value, 'f', -1, 64))
		s.inputs[i] = in
	}

	s.setFocus(0)
	s.recompute()
	return s
}

func (s *PredictScreen) Init() tea.Cmd {
	return s.setFocus(s.focus)
}

func (s *PredictScreen) Title() string {
	return "New Case"
}

func (s *PredictScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab/↑↓", Description: "Field"},
		{Key: "←→", Description: "Change"},
		{Key: "Enter", Description: "Record"},
		{Key: "Esc", Description: "Back"},
	}
}

// Prediction returns the latest result; Err reports why there is none.
func (s *PredictScreen) Prediction() model.Prediction { return s.prediction }

// Err returns the error of the latest recompute, if any.
func (s *PredictScreen) Err() error { return s.err }

// setFocus moves focus to form[i] and returns the input's blink command.
func (s *PredictScreen) setFocus(i int) tea.Cmd {
	for k := range s.inputs {
		s.inputs[k].Blur()
	}
	s.gender.Focused = false
	s.platform.Focused = false
	s.threshold.Focused = false

	s.focus = (i + len(form)) % len(form)
	f := form[s.focus]
	switch f.kind {
	case kindNumeric:
		return s.inputs[f.input].Focus()
	case kindGender:
		s.gender.Focused = true
	case kindPlatform:
		s.platform.Focused = true
	case kindThreshold:
		s.threshold.Focused = true
	}
	return nil
}

// currentCase reads the form, reporting the first unparsable number.
func (s *PredictScreen) currentCase() (model.Case, error) {
	var v [numInputs]float64
	for i := range s.inputs {
		f, err := s.inputs[i].FloatValue()
		if err != nil {
			return model.Case{}, fmt.Errorf("%w: %s is not a number", model.ErrInvalidCase, s.inputs[i].Label)
		}
		v[i] = f
	}
	return model.Case{
		Age:                    v[inputAge],
		Gender:                 s.gender.Value(),
		DailyScreenTime:        v[inputScreenTime],
		SleepQuality:           v[inputSleep],
		StressLevel:            v[inputStress],
		DaysWithoutSocialMedia: v[inputDaysOffline],
		ExerciseFrequency:      v[inputExercise],
		Platform:               s.platform.Value(),
	}, nil
}

func (s *PredictScreen) recompute() {
	s.saved = ""
	c, err := s.currentCase()
	if err != nil {
		s.err = err
		return
	}
	s.prediction, s.err = s.model.Predict(c, s.threshold.Value)
	if s.err != nil {
		s.logger.Debug("prediction rejected", zap.Error(s.err))
	}
}

func (s *PredictScreen) record() {
	c, err := s.currentCase()
	if err != nil {
		s.err = err
		return
	}
	p, err := s.scorer.Predict(c, s.threshold.Value)
	if err != nil {
		s.err = err
		return
	}
	s.prediction = p
	s.saved = "Recorded prediction"
}

func (s *PredictScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		// Cursor blink and similar messages belong to the focused input.
		if f := form[s.focus]; f.kind == kindNumeric {
			var cmd tea.Cmd
			s.inputs[f.input], cmd = s.inputs[f.input].Update(msg)
			return s, cmd
		}
		return s, nil
	}

	switch kmsg.String() {
	case "tab", "down":
		return s, s.setFocus(s.focus + 1)
	case "shift+tab", "up":
		return s, s.setFocus(s.focus - 1)
	case "enter":
		s.record()
		return s, nil
	}

	var (
		cmd     tea.Cmd
		changed bool
	)
	switch f := form[s.focus]; f.kind {
	case kindNumeric:
		before := s.inputs[f.input].Value()
		s.inputs[f.input], cmd = s.inputs[f.input].Update(msg)
		changed = s.inputs[f.input].Value() != before
	case kindGender:
		s.gender, changed = s.gender.Update(msg)
	case kindPlatform:
		s.platform, changed = s.platform.Update(msg)
	case kindThreshold:
		s.threshold, changed = s.threshold.Update(msg)
	}
	if changed {
		s.recompute()
	}
	return s, cmd
}

func (s *PredictScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	rows := make([]string, 0, len(form))
	for _, f := range form {
		switch f.kind {
		case kindNumeric:
			rows = append(rows, s.inputs[f.input].View())
		case kindGender:
			rows = append(rows, s.gender.View())
		case kindPlatform:
			rows = append(rows, s.platform.View())
		case kindThreshold:
			rows = append(rows, s.threshold.View())
		}
	}
	formCard := components.Card("Respondent", strings.Join(rows, "\n"), cw, true)

	var result string
	if s.err != nil {
		result = theme.ErrorText.Render(s.err.Error())
	} else {
		p := s.prediction
		bar := components.NewProgressBar("P(low)", p.Probability, true, cw-4)
		bar.Marker = p.Threshold
		result = strings.Join([]string{
			lipgloss.NewStyle().Foreground(theme.Text).Render("Probability of low happiness: ") +
				lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(fmt.Sprintf("%.3f", p.Probability)),
			bar.View(),
			"Predicted class: " + theme.Class(p.Class).Render(p.Label) +
				lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("  (threshold %.2f)", p.Threshold)),
		}, "\n")
	}
	if s.saved != "" {
		result += "\n" + lipgloss.NewStyle().Foreground(theme.Success).Render(s.saved)
	}
	resultCard := components.Card("Prediction", result, cw, false)

	content := formCard + "\n" + resultCard
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
