package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/wellstat/internal/router"
	"github.com/abhisek/wellstat/internal/screen"
	"github.com/abhisek/wellstat/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	phase1End    = 500 * time.Millisecond
	phase2End    = 1500 * time.Millisecond
	totalDur     = 3000 * time.Millisecond
)

// curveArt is a logistic curve drawn left to right, one column per tick
// once the first phase has passed.
var curveArt = []string{
	`                        ▁▂▃▄▅▆▇█████`,
	`                  ▁▂▃▅▇█████████████`,
	`            ▁▂▄▆███████████████████`,
	`   ▁▁▂▂▃▄▆█████████████████████████`,
}

const pulseGlyph = "●"

type tickMsg time.Time

// WelcomeScreen shows a short splash while the fitted model is presented,
// then hands over to the home screen.
type WelcomeScreen struct {
	tagline      string
	homeFactory  func() screen.Screen
	elapsed      time.Duration
	tickCount    int
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that shows tagline under the banner and moves
// to the screen produced by homeFactory on the first key press.
func New(tagline string, homeFactory func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{
		tagline:     tagline,
		homeFactory: homeFactory,
	}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.transitioned {
			return w, nil
		}
		if w.elapsed < totalDur {
			w.elapsed += tickInterval
		}
		w.tickCount++
		return w, tick()

	case tea.KeyPressMsg:
		// Any key skips the rest of the animation.
		return w, w.transition()
	}

	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	homeScreen := w.homeFactory()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: homeScreen}
	}
}

// curve returns the part of the curve revealed so far.
func (w *WelcomeScreen) curve() string {
	width := 0
	for _, l := range curveArt {
		width = max(width, len([]rune(l)))
	}
	shown := width
	if w.elapsed < phase2End {
		frac := float64(w.elapsed-min(w.elapsed, phase1End)) / float64(phase2End-phase1End)
		shown = int(frac * float64(width))
	}

	lines := make([]string, len(curveArt))
	for i, l := range curveArt {
		r := []rune(l)
		if shown < len(r) {
			r = r[:shown]
		}
		lines[i] = string(r)
	}
	return lipgloss.NewStyle().Foreground(theme.Secondary).Width(width).Render(strings.Join(lines, "\n"))
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	pulse := lipgloss.NewStyle().Foreground(theme.Accent)
	if w.tickCount%2 == 1 {
		pulse = pulse.Foreground(theme.Highlight)
	}
	sections = append(sections, w.curve()+" "+pulse.Render(pulseGlyph))

	if w.elapsed >= phase2End {
		sections = append(sections, "")
		sections = append(sections, RenderBanner(width))
		sections = append(sections, "")

		tagline := lipgloss.NewStyle().
			Foreground(theme.Text).
			Bold(true).
			Render(w.tagline)
		sections = append(sections, tagline)

		sections = append(sections, "")
		hint := lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Italic(true).
			Render("press any key to continue")
		sections = append(sections, hint)
	}

	content := strings.Join(sections, "\n")

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
