// Package performance shows in-sample classification quality of the fitted
// model at an adjustable decision threshold.
package performance

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/wellstat/internal/config"
	"github.com/abhisek/wellstat/internal/model"
	"github.com/abhisek/wellstat/internal/report"
	"github.com/abhisek/wellstat/internal/scoring"
	"github.com/abhisek/wellstat/internal/screen"
	"github.com/abhisek/wellstat/internal/ui/components"
	"github.com/abhisek/wellstat/internal/ui/layout"
	"github.com/abhisek/wellstat/internal/ui/theme"
)

// PerformanceScreen re-evaluates the model whenever the threshold moves.
type PerformanceScreen struct {
	model  *model.Model
	scorer model.Scorer
	logger *zap.Logger

	slider components.Slider
	eval   scoring.Evaluation
	err    error
	saved  string
}

var _ screen.Screen = (*PerformanceScreen)(nil)
var _ screen.KeyHintProvider = (*PerformanceScreen)(nil)

// New creates the screen. Live evaluation runs on m; Enter records the
// current evaluation through scorer.
func New(m *model.Model, scorer model.Scorer, th config.ThresholdConfig, logger *zap.Logger) *PerformanceScreen {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &PerformanceScreen{
		model:  m,
		scorer: scorer,
		logger: logger,
		slider: components.NewSlider("Threshold", th.Default, th.Min, th.Max, th.Step),
	}
	s.evaluate()
	return s
}

func (s *PerformanceScreen) evaluate() {
	s.eval, s.err = s.model.Evaluate(s.slider.Value)
	if s.err != nil {
		s.logger.Warn("evaluation failed", zap.Float64("threshold", s.slider.Value), zap.Error(s.err))
		return
	}
	s.logger.Debug("evaluated threshold",
		zap.Float64("threshold", s.eval.Threshold),
		zap.Int("tp", s.eval.Confusion.TP()),
		zap.Int("fp", s.eval.Confusion.FP()),
		zap.Int("fn", s.eval.Confusion.FN()),
		zap.Int("tn", s.eval.Confusion.TN()),
		zap.Float64("accuracy", s.eval.Accuracy),
	)
}

func (s *PerformanceScreen) Init() tea.Cmd {
	return nil
}

func (s *PerformanceScreen) Title() string {
	return "Performance"
}

func (s *PerformanceScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "←→", Description: "Threshold"},
		{Key: "Enter", Description: "Record"},
		{Key: "Esc", Description: "Back"},
	}
}

// Threshold returns the current slider position.
func (s *PerformanceScreen) Threshold() float64 { return s.slider.Value }

// Evaluation returns the evaluation shown on screen.
func (s *PerformanceScreen) Evaluation() scoring.Evaluation { return s.eval }

func (s *PerformanceScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	if kmsg.String() == "enter" {
		if _, err := s.scorer.Evaluate(s.slider.Value); err != nil {
			s.err = err
			return s, nil
		}
		s.saved = fmt.Sprintf("Recorded evaluation at threshold %.2f", s.slider.Value)
		return s, nil
	}

	var changed bool
	s.slider, changed = s.slider.Update(msg)
	if changed {
		s.saved = ""
		s.evaluate()
	}
	return s, nil
}

func (s *PerformanceScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	s.slider.Width = max(10, cw-50)

	var sections []string
	sections = append(sections, components.Card("", s.slider.View(), cw, true))

	if s.err != nil {
		sections = append(sections, theme.ErrorText.Render(s.err.Error()))
	} else {
		sections = append(sections,
			components.Card("Confusion matrix", theme.Mono.Render(strings.TrimRight(report.Confusion(s.eval.Confusion), "\n")), cw, false),
			components.Card("Metrics", theme.Mono.Render(strings.TrimRight(report.Metrics(s.eval), "\n")), cw, false),
		)
	}
	if s.saved != "" {
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Success).Render(s.saved))
	}

	content := strings.Join(sections, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
