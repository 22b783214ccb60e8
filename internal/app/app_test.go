package app

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/wellstat/internal/config"
	"github.com/abhisek/wellstat/internal/model/modeltest"
	"github.com/abhisek/wellstat/internal/screens/home"
)

func testOptions(t *testing.T, skipWelcome bool) Options {
	t.Helper()
	m := modeltest.Model(t, 200, 12)
	return Options{
		Deps:        home.Deps{Model: m, Scorer: m, Threshold: config.Default().Threshold},
		SkipWelcome: skipWelcome,
	}
}

// drive feeds msg to the model and then the message its command produces,
// mimicking one round of the program loop.
func drive(t *testing.T, m AppModel, msg tea.Msg) AppModel {
	t.Helper()
	updated, cmd := m.Update(msg)
	m = updated.(AppModel)
	if cmd != nil {
		if next := cmd(); next != nil {
			updated, _ = m.Update(next)
			m = updated.(AppModel)
		}
	}
	return m
}

func TestWelcomeHandsOverToHome(t *testing.T) {
	m := newAppModel(testOptions(t, false))
	assert.Equal(t, "", m.router.Active().Title())

	m = drive(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Equal(t, "Home", m.router.Active().Title())
	assert.Equal(t, 1, m.router.Depth())
}

func TestEscPopsBackToHome(t *testing.T) {
	m := newAppModel(testOptions(t, true))
	require.Equal(t, "Home", m.router.Active().Title())

	m = drive(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Equal(t, "Model Summary", m.router.Active().Title())

	m = drive(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Equal(t, "Home", m.router.Active().Title())

	// Esc on the root screen is a no-op.
	updated, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Nil(t, cmd)
	assert.Equal(t, "Home", updated.(AppModel).router.Active().Title())
}

func TestCtrlCQuits(t *testing.T) {
	m := newAppModel(testOptions(t, true))
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestViewRendersHeaderStats(t *testing.T) {
	m := newAppModel(testOptions(t, true))
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(AppModel)

	assert.Contains(t, m.render(), "Wellstat")
	assert.Contains(t, m.render(), "AIC")
}

func TestViewTooSmall(t *testing.T) {
	m := newAppModel(testOptions(t, true))
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	m = updated.(AppModel)

	view := m.render()
	assert.Contains(t, view, "Terminal too small")
	assert.Contains(t, view, "Need 80x24, have 40x10")
	assert.Empty(t, newAppModel(testOptions(t, true)).render(), "nothing to draw before the first size message")
}
