package components

import (
	"fmt"
	"math"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/wellstat/internal/ui/theme"
)

// Slider selects a value from [Min, Max] in fixed steps.
type Slider struct {
	Label   string
	Value   float64
	Min     float64
	Max     float64
	Step    float64
	Width   int
	Focused bool
}

// NewSlider creates a slider with value snapped onto the step grid.
func NewSlider(label string, value, lo, hi, step float64) Slider {
	s := Slider{Label: label, Min: lo, Max: hi, Step: step, Width: 40, Focused: true}
	s.Value = s.snap(value)
	return s
}

// snap clamps v into range and rounds it to the nearest step from Min.
func (s Slider) snap(v float64) float64 {
	if s.Step > 0 {
		v = s.Min + math.Round((v-s.Min)/s.Step)*s.Step
	}
	v = math.Max(s.Min, math.Min(s.Max, v))
	// Drop float noise such as 0.30000000000000004.
	return math.Round(v*1e9) / 1e9
}

// Update moves the slider on left/right (h/l) and home/end. The second
// result reports whether the value changed.
func (s Slider) Update(msg tea.Msg) (Slider, bool) {
	if !s.Focused {
		return s, false
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, false
	}

	old := s.Value
	switch kmsg.String() {
	case "left", "h", "-":
		s.Value = s.snap(s.Value - s.Step)
	case "right", "l", "+", "=":
		s.Value = s.snap(s.Value + s.Step)
	case "home":
		s.Value = s.Min
	case "end":
		s.Value = s.Max
	}
	return s, s.Value != old
}

// View renders the label, the track with a knob, and the value.
func (s Slider) View() string {
	labelStyle := lipgloss.NewStyle().Foreground(theme.TextDim).Width(formLabelWidth)
	if s.Focused {
		labelStyle = labelStyle.Foreground(theme.Primary).Bold(true)
	}

	track := max(s.Width, 10)
	pos := 0
	if s.Max > s.Min {
		pos = int(math.Round((s.Value - s.Min) / (s.Max - s.Min) * float64(track-1)))
	}

	left := lipgloss.NewStyle().Foreground(theme.Secondary).Render(strings.Repeat("━", pos))
	knob := theme.SliderMarker.Render("●")
	right := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("━", track-1-pos))

	value := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(fmt.Sprintf(" %.2f", s.Value))
	bounds := lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("  [%.2f–%.2f]", s.Min, s.Max))
	return labelStyle.Render(s.Label) + left + knob + right + value + bounds
}
