package components

import (
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/wellstat/internal/ui/theme"
)

// TextInput wraps bubbles/textinput for numeric form fields.
type TextInput struct {
	Model       textinput.Model
	Label       string
	DecimalOnly bool
	valid       bool
	checked     bool
}

// NewTextInput creates a new styled text input. The input starts blurred.
func NewTextInput(label, placeholder string, decimalOnly bool, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}

	return TextInput{
		Model:       ti,
		Label:       label,
		DecimalOnly: decimalOnly,
	}
}

// Focus focuses the input.
func (t *TextInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes focus.
func (t *TextInput) Blur() {
	t.Model.Blur()
}

// Focused reports whether the input has focus.
func (t TextInput) Focused() bool {
	return t.Model.Focused()
}

// SetValue replaces the current text.
func (t *TextInput) SetValue(v string) {
	t.Model.SetValue(v)
}

// Update handles messages. With DecimalOnly, single-character keys other
// than digits, '.' and '-' are dropped.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if t.DecimalOnly {
		if kmsg, ok := msg.(tea.KeyMsg); ok {
			key := kmsg.String()
			if len(key) == 1 && !strings.ContainsAny(key, "0123456789.-") {
				return t, nil
			}
		}
	}

	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the label and the input.
func (t TextInput) View() string {
	label := lipgloss.NewStyle().Foreground(theme.TextDim).Width(formLabelWidth).Render(t.Label)
	if t.Focused() {
		label = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Width(formLabelWidth).Render(t.Label)
	}
	view := label + t.Model.View()
	if t.checked && !t.valid {
		view += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
	}
	return view
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// FloatValue parses the input as a decimal number and remembers whether it
// was valid for the next View.
func (t *TextInput) FloatValue() (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(t.Model.Value()), 64)
	t.checked = true
	t.valid = err == nil
	return v, err
}
