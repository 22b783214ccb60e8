package summary

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/wellstat/internal/model"
	"github.com/abhisek/wellstat/internal/report"
	"github.com/abhisek/wellstat/internal/router"
	"github.com/abhisek/wellstat/internal/screen"
	"github.com/abhisek/wellstat/internal/ui/layout"
	"github.com/abhisek/wellstat/internal/ui/theme"
)

// SummaryScreen displays the fitted-model report, scrolled line by line.
type SummaryScreen struct {
	lines  []string
	offset int
	// visible is the last rendered body height; scrolling is clamped to it.
	visible int
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen for the given fit.
func New(sum model.Summary) *SummaryScreen {
	text := strings.TrimRight(report.Summary(sum), "\n")
	return &SummaryScreen{lines: strings.Split(text, "\n"), visible: 1}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Model Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "PgUp/PgDn", Description: "Page"},
		{Key: "Esc", Description: "Back"},
	}
}

// maxOffset is the largest offset that still fills the view.
func (s *SummaryScreen) maxOffset() int {
	return max(0, len(s.lines)-s.visible)
}

func (s *SummaryScreen) scroll(delta int) {
	s.offset = max(0, min(s.offset+delta, s.maxOffset()))
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "up", "k":
			s.scroll(-1)
		case "down", "j":
			s.scroll(1)
		case "pgup", "b":
			s.scroll(-s.visible)
		case "pgdown", "space", "f":
			s.scroll(s.visible)
		case "home", "g":
			s.offset = 0
		case "end", "G":
			s.offset = s.maxOffset()
		case "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	// One line each for the top and bottom scroll markers.
	s.visible = max(1, height-2)
	s.offset = min(s.offset, s.maxOffset())

	end := min(len(s.lines), s.offset+s.visible)
	body := strings.Join(s.lines[s.offset:end], "\n")

	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	top, bottom := "", ""
	if s.offset > 0 {
		top = dim.Render("▲ more")
	}
	if end < len(s.lines) {
		bottom = dim.Render("▼ more")
	}

	block := lipgloss.JoinVertical(lipgloss.Left, top, theme.Mono.Render(body), bottom)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, block)
}
