package components

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/wellstat/internal/ui/theme"
)

// formLabelWidth aligns labels of form fields.
const formLabelWidth = 28

// Choice picks one option from a closed list by cycling left and right.
type Choice struct {
	Label    string
	Options  []string
	Selected int
	Focused  bool
}

// NewChoice creates a choice positioned on initial, or on the first option
// when initial is not listed.
func NewChoice(label string, options []string, initial string) Choice {
	c := Choice{Label: label, Options: options}
	for i, o := range options {
		if o == initial {
			c.Selected = i
			break
		}
	}
	return c
}

// Value returns the selected option, or "" for an empty list.
func (c Choice) Value() string {
	if len(c.Options) == 0 {
		return ""
	}
	return c.Options[c.Selected]
}

// Update cycles on left/right (h/l). The second result reports a change.
func (c Choice) Update(msg tea.Msg) (Choice, bool) {
	if !c.Focused || len(c.Options) < 2 {
		return c, false
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, false
	}

	switch kmsg.String() {
	case "left", "h":
		c.Selected = (c.Selected - 1 + len(c.Options)) % len(c.Options)
		return c, true
	case "right", "l", "space":
		c.Selected = (c.Selected + 1) % len(c.Options)
		return c, true
	}
	return c, false
}

// View renders the label and the selected option between arrows.
func (c Choice) View() string {
	labelStyle := lipgloss.NewStyle().Foreground(theme.TextDim).Width(formLabelWidth)
	valueStyle := lipgloss.NewStyle().Foreground(theme.Text)
	arrowStyle := lipgloss.NewStyle().Foreground(theme.Border)
	if c.Focused {
		labelStyle = labelStyle.Foreground(theme.Primary).Bold(true)
		valueStyle = valueStyle.Bold(true)
		arrowStyle = arrowStyle.Foreground(theme.Highlight)
	}
	return labelStyle.Render(c.Label) +
		arrowStyle.Render("◂ ") + valueStyle.Render(c.Value()) + arrowStyle.Render(" ▸")
}
