package app

import (
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/wellstat/internal/router"
	"github.com/abhisek/wellstat/internal/screen"
	"github.com/abhisek/wellstat/internal/screens/home"
	"github.com/abhisek/wellstat/internal/screens/welcome"
	"github.com/abhisek/wellstat/internal/ui/layout"
)

// Options holds the dependencies for the TUI.
type Options struct {
	home.Deps
	// SkipWelcome starts directly on the home screen.
	SkipWelcome bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	stats  []layout.HeaderStat
	width  int
	height int
}

// newAppModel creates a new AppModel starting on the welcome screen.
func newAppModel(opts Options) AppModel {
	sum := opts.Model.Summary()
	homeFactory := func() screen.Screen { return home.New(opts.Deps) }

	var initial screen.Screen
	if opts.SkipWelcome {
		initial = homeFactory()
	} else {
		tagline := fmt.Sprintf("Logistic model fitted on %d respondents", sum.Observations)
		initial = welcome.New(tagline, homeFactory)
	}

	stats := []layout.HeaderStat{
		{Label: "n", Value: fmt.Sprint(sum.Observations)},
		{Label: "AIC", Value: fmt.Sprintf("%.1f", sum.AIC)},
	}
	if opts.Events != nil {
		stats = append(stats, layout.HeaderStat{Label: "history", Value: "on"})
	}

	return AppModel{
		router: router.New(initial),
		stats:  stats,
	}
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	v.SetContent(m.render())
	return v
}

// render composes header, active screen and footer for the current size.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.stats, m.width)

	var footerHints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = p.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	content := m.router.View(m.width, layout.ContentHeight(header, footer, m.height))
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	if opts.Model == nil {
		return fmt.Errorf("run app: no model")
	}
	if opts.Scorer == nil {
		opts.Scorer = opts.Model
	}
	p := tea.NewProgram(newAppModel(opts))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run app: %w", err)
	}
	return nil
}
