package predict

import (
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/wellstat/internal/config"
	"github.com/abhisek/wellstat/internal/model"
	"github.com/abhisek/wellstat/internal/model/modeltest"
)

type countingScorer struct {
	model.Scorer
	predictions []model.Case
}

func (c *countingScorer) Predict(cs model.Case, th float64) (model.Prediction, error) {
	c.predictions = append(c.predictions, cs)
	return c.Scorer.Predict(cs, th)
}

func newTestScreen(t *testing.T) (*PredictScreen, *model.Model, *countingScorer) {
	t.Helper()
	m := modeltest.Model(t, 300, 6)
	sc := &countingScorer{Scorer: m}
	return New(m, sc, config.Default().Threshold, nil), m, sc
}

func press(s *PredictScreen, code rune) {
	s.Update(tea.KeyPressMsg{Code: code})
}

func typeText(s *PredictScreen, text string) {
	for _, r := range text {
		s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func clearInput(s *PredictScreen) {
	for i := 0; i < 10; i++ {
		press(s, tea.KeyBackspace)
	}
}

func TestInitialPredictionMatchesModel(t *testing.T) {
	s, m, _ := newTestScreen(t)

	require.NoError(t, s.Err())
	want, err := m.Predict(m.TypicalCase(), 0.5)
	require.NoError(t, err)
	assert.Equal(t, want, s.Prediction())
	assert.Contains(t, s.View(100, 40), "Probability of low happiness")
}

func TestEditingAgeRescores(t *testing.T) {
	s, m, sc := newTestScreen(t)

	press(s, tea.KeyEnd)
	clearInput(s)
	typeText(s, "45")

	c := m.TypicalCase()
	c.Age = 45
	want, err := m.Predict(c, 0.5)
	require.NoError(t, err)
	assert.Equal(t, want, s.Prediction())
	assert.Empty(t, sc.predictions, "editing must not record")
}

func TestLettersAreIgnored(t *testing.T) {
	s, _, _ := newTestScreen(t)
	before := s.inputs[inputAge].Value()

	typeText(s, "abc")
	assert.Equal(t, before, s.inputs[inputAge].Value())
}

func TestEmptyNumberShowsError(t *testing.T) {
	s, _, _ := newTestScreen(t)

	press(s, tea.KeyEnd)
	clearInput(s)
	require.Error(t, s.Err())
	assert.True(t, errors.Is(s.Err(), model.ErrInvalidCase))
	assert.Contains(t, s.View(100, 40), "Age is not a number")
}

func TestCyclingPlatformRescores(t *testing.T) {
	s, m, _ := newTestScreen(t)

	// Age, Gender, four habits, Exercise, then Platform.
	for i := 0; i < 7; i++ {
		press(s, tea.KeyTab)
	}
	require.True(t, s.platform.Focused)
	press(s, tea.KeyRight)

	c := m.TypicalCase()
	c.Platform = s.platform.Value()
	assert.NotEqual(t, m.TypicalCase().Platform, c.Platform)
	want, err := m.Predict(c, 0.5)
	require.NoError(t, err)
	assert.Equal(t, want, s.Prediction())
}

func TestThresholdSliderReclassifies(t *testing.T) {
	s, _, _ := newTestScreen(t)

	press(s, tea.KeyUp) // wraps to the threshold slider
	require.True(t, s.threshold.Focused)
	press(s, tea.KeyHome)

	p := s.Prediction()
	assert.InDelta(t, 0.1, p.Threshold, 1e-9)
	if p.Probability >= 0.1 {
		assert.Equal(t, 1, p.Class)
	}
	press(s, tea.KeyEnd)
	assert.InDelta(t, 0.9, s.Prediction().Threshold, 1e-9)
}

func TestEnterRecords(t *testing.T) {
	s, m, sc := newTestScreen(t)

	press(s, tea.KeyEnter)
	require.Len(t, sc.predictions, 1)
	assert.Equal(t, m.TypicalCase(), sc.predictions[0])
	assert.Contains(t, s.View(100, 40), "Recorded prediction")
}
