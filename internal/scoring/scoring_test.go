package scoring

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyAll_Inclusive(t *testing.T) {
	assert.Equal(t, []int{1, 0, 1}, ClassifyAll([]float64{0.7, 0.3, 0.5}, 0.5))
}

func TestValidateThreshold(t *testing.T) {
	for _, ok := range []float64{0, 0.05, 0.5, 1} {
		assert.NoError(t, ValidateThreshold(ok), "threshold %v", ok)
	}
	for _, bad := range []float64{-0.01, 1.01, math.NaN(), math.Inf(1)} {
		err := ValidateThreshold(bad)
		assert.True(t, errors.Is(err, ErrInvalidThreshold), "threshold %v", bad)
	}
}

func TestEvaluate_Counts(t *testing.T) {
	probs := []float64{0.9, 0.8, 0.4, 0.2, 0.6, 0.1}
	labels := []int{1, 0, 1, 0, 1, 0}

	ev, err := Evaluate(probs, labels, 0.5)
	require.NoError(t, err)

	assert.Equal(t, 2, ev.Confusion.TP())
	assert.Equal(t, 1, ev.Confusion.FP())
	assert.Equal(t, 1, ev.Confusion.FN())
	assert.Equal(t, 2, ev.Confusion.TN())
	assert.Equal(t, 6, ev.N)
	assert.InDelta(t, 4.0/6, ev.Accuracy, 1e-12)
	assert.True(t, ev.Sensitivity.Valid)
	assert.InDelta(t, 2.0/3, ev.Sensitivity.Value, 1e-12)
	assert.InDelta(t, 2.0/3, ev.Specificity.Value, 1e-12)
	assert.Equal(t, "0.667", ev.Sensitivity.String())
}

func TestEvaluate_ExtremeThresholds(t *testing.T) {
	probs := []float64{0, 0.2, 0.5, 0.99, 1}
	labels := []int{0, 1, 0, 1, 1}

	all, err := Evaluate(probs, labels, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, all.Confusion.FN()+all.Confusion.TN(), "threshold 0 predicts everything positive")
	assert.Equal(t, 1.0, all.Sensitivity.Value)
	assert.Equal(t, 0.0, all.Specificity.Value)

	none, err := Evaluate(probs, labels, 1)
	require.NoError(t, err)
	// p == 1 still reaches the threshold.
	assert.Equal(t, 1, none.Confusion.TP())
	assert.Equal(t, 0, none.Confusion.FP())
}

func TestEvaluate_MonotoneInThreshold(t *testing.T) {
	probs := []float64{0.05, 0.15, 0.3, 0.45, 0.5, 0.62, 0.7, 0.81, 0.9, 0.97}
	labels := []int{0, 1, 0, 1, 1, 0, 1, 0, 1, 1}

	prevSens, prevSpec := 2.0, -1.0
	prevPositive := len(probs) + 1
	for th := 0.0; th <= 1.0; th += 0.05 {
		ev, err := Evaluate(probs, labels, th)
		require.NoError(t, err)
		assert.Equal(t, len(probs), ev.Confusion.Total())

		positive := ev.Confusion.TP() + ev.Confusion.FP()
		assert.LessOrEqual(t, positive, prevPositive, "predicted positives at threshold %.2f", th)
		prevPositive = positive

		assert.LessOrEqual(t, ev.Sensitivity.Value, prevSens)
		assert.GreaterOrEqual(t, ev.Specificity.Value, prevSpec)
		prevSens, prevSpec = ev.Sensitivity.Value, ev.Specificity.Value
	}
}

func TestEvaluate_UndefinedRates(t *testing.T) {
	ev, err := Evaluate([]float64{0.2, 0.8}, []int{0, 0}, 0.5)
	require.NoError(t, err)
	assert.False(t, ev.Sensitivity.Valid)
	assert.Equal(t, "N/A", ev.Sensitivity.String())
	assert.True(t, ev.Specificity.Valid)

	ev, err = Evaluate([]float64{0.2, 0.8}, []int{1, 1}, 0.5)
	require.NoError(t, err)
	assert.False(t, ev.Specificity.Valid)

	b, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"specificity":null`)
	assert.Contains(t, string(b), `"sensitivity":0.5`)
}

func TestEvaluate_Errors(t *testing.T) {
	_, err := Evaluate([]float64{0.1}, []int{0, 1}, 0.5)
	assert.True(t, errors.Is(err, ErrLengthMismatch))

	_, err = Evaluate([]float64{0.1}, []int{0}, 1.5)
	assert.True(t, errors.Is(err, ErrInvalidThreshold))

	_, err = Evaluate([]float64{0.1}, []int{2}, 0.5)
	assert.Error(t, err)
}

func TestRate_JSONRoundTrip(t *testing.T) {
	var r Rate
	require.NoError(t, json.Unmarshal([]byte("null"), &r))
	assert.False(t, r.Valid)
	require.NoError(t, json.Unmarshal([]byte("0.25"), &r))
	assert.Equal(t, Rate{Value: 0.25, Valid: true}, r)
}

func TestConfusionMatrix_JSON(t *testing.T) {
	cm := ConfusionMatrix{{4, 1}, {2, 3}}
	b, err := json.Marshal(cm)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tp":3,"fp":2,"fn":1,"tn":4}`, string(b))

	var back ConfusionMatrix
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, cm, back)
}
