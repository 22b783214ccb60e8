package home

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/wellstat/internal/config"
	"github.com/abhisek/wellstat/internal/model"
	"github.com/abhisek/wellstat/internal/router"
	"github.com/abhisek/wellstat/internal/screen"
	"github.com/abhisek/wellstat/internal/screens/history"
	"github.com/abhisek/wellstat/internal/screens/performance"
	"github.com/abhisek/wellstat/internal/screens/predict"
	"github.com/abhisek/wellstat/internal/screens/summary"
	"github.com/abhisek/wellstat/internal/store"
	"github.com/abhisek/wellstat/internal/ui/components"
	"github.com/abhisek/wellstat/internal/ui/layout"
)

// Deps are the shared services the home screen hands to the screens it opens.
type Deps struct {
	Model     *model.Model
	Scorer    model.Scorer
	Events    store.EventRepo // nil when history is disabled
	Threshold config.ThresholdConfig
	Logger    *zap.Logger
}

// Menu labels.
const (
	LabelSummary     = "MODEL SUMMARY"
	LabelPerformance = "PERFORMANCE"
	LabelNewCase     = "NEW CASE"
	LabelHistory     = "HISTORY"
	LabelQuit        = "QUIT"
)

// HomeScreen is the main menu with a strip of fit statistics.
type HomeScreen struct {
	menu    components.Menu
	summary model.Summary
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps Deps) *HomeScreen {
	if deps.Scorer == nil {
		deps.Scorer = deps.Model
	}
	push := func(factory func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: factory()}
			}
		}
	}

	items := []components.MenuItem{
		{Label: LabelSummary, Action: push(func() screen.Screen {
			return summary.New(deps.Model.Summary())
		})},
		{Label: LabelPerformance, Action: push(func() screen.Screen {
			return performance.New(deps.Model, deps.Scorer, deps.Threshold, deps.Logger)
		})},
		{Label: LabelNewCase, Action: push(func() screen.Screen {
			return predict.New(deps.Model, deps.Scorer, deps.Threshold, deps.Logger)
		})},
		{Label: LabelHistory, Disabled: deps.Events == nil, Action: push(func() screen.Screen {
			return history.New(deps.Events)
		})},
		{Label: LabelQuit, Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	return &HomeScreen{
		menu:    components.NewMenu(items),
		summary: deps.Model.Summary(),
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height excludes header, footer and frame; add them back.
	compact := layout.Compact(width, height+8)

	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, compact))
	sections = append(sections, renderStatsBar(h.summary, cw, compact))
	if compact {
		sections = append(sections, centered(h.menu.CompactView(), cw))
	} else {
		sections = append(sections, centered(h.menu.View(), cw))
	}

	content := strings.Join(sections, "\n\n")
	return components.Frame(content, width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
