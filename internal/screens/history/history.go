package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/wellstat/internal/history"
	"github.com/abhisek/wellstat/internal/router"
	"github.com/abhisek/wellstat/internal/screen"
	"github.com/abhisek/wellstat/internal/store"
	"github.com/abhisek/wellstat/internal/ui/layout"
	"github.com/abhisek/wellstat/internal/ui/theme"
)

const (
	pageSize    = 50
	loadTimeout = 5 * time.Second
)

type historyLoadedMsg struct {
	Entries []history.Entry
	Err     error
}

// HistoryScreen lists recorded evaluations and predictions, newest first.
type HistoryScreen struct {
	eventRepo store.EventRepo
	entries   []history.Entry
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.eventRepo
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		entries, err := history.Recent(ctx, repo, pageSize)
		return historyLoadedMsg{Entries: entries, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "r", Description: "Reload"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.errMsg = ""
			s.entries = msg.Entries
		}
		s.loaded = true
		s.selected = min(s.selected, max(0, len(s.entries)-1))
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.entries)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		case "r":
			s.loaded = false
			s.expanded = make(map[int]bool)
			return s, s.Init()
		}
	}
	return s, nil
}

// detailLines renders the expanded view of an entry.
func detailLines(e history.Entry) []string {
	switch e.Kind {
	case history.KindEvaluation:
		ev := e.Evaluation
		return []string{
			fmt.Sprintf("TP: %d  FP: %d  FN: %d  TN: %d", ev.TP, ev.FP, ev.FN, ev.TN),
			"session " + ev.SessionID,
		}
	case history.KindPrediction:
		p := e.Prediction
		return []string{
			"case " + string(p.Case),
			"session " + p.SessionID,
		}
	}
	return nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.entries) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  Nothing recorded yet. Press Enter on the Performance or New Case screens.")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, e := range s.entries {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if e.Kind == history.KindPrediction {
			style = style.Foreground(theme.Secondary)
		}
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(prefix+e.String())))
		b.WriteString("\n")

		if s.expanded[i] {
			for _, d := range detailLines(e) {
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
					lipgloss.NewStyle().Foreground(theme.TextDim).Render("      "+d)))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}
