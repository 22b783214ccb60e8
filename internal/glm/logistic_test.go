package glm

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSigmoid(t *testing.T) {
	assert.Equal(t, 0.5, Sigmoid(0))
	assert.InDelta(t, 1-Sigmoid(2), Sigmoid(-2), 1e-15)
	assert.InDelta(t, 0.7310585786, Sigmoid(1), 1e-9)
	assert.Equal(t, 1.0, Sigmoid(800))
	assert.Equal(t, 0.0, Sigmoid(-800))
	assert.False(t, math.IsNaN(Sigmoid(-800)))
}

func TestFitLogistic_InterceptOnly(t *testing.T) {
	y := []float64{1, 0, 0, 1, 1}
	x := mat.NewDense(5, 1, []float64{1, 1, 1, 1, 1})

	fit, err := FitLogistic(x, y, []string{"(Intercept)"}, DefaultOptions())
	require.NoError(t, err)
	require.True(t, fit.Converged)

	c := fit.Coefficients[0]
	assert.InDelta(t, math.Log(1.5), c.Estimate, 1e-6)
	assert.InDelta(t, math.Sqrt(1/(5*0.6*0.4)), c.StdErr, 1e-5)
	assert.InDelta(t, fit.NullDeviance, fit.ResidualDeviance, 1e-8)
	assert.InDelta(t, fit.ResidualDeviance+2, fit.AIC, 1e-12)
	assert.Equal(t, 4, fit.NullDF)
	assert.Equal(t, 4, fit.ResidualDF)

	p, err := fit.Probability([]float64{1})
	require.NoError(t, err)
	assert.InDelta(t, 0.6, p, 1e-6)
}

func syntheticData(n int, beta []float64, seed uint64) (*mat.Dense, []float64) {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	p := len(beta)
	x := mat.NewDense(n, p, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x.Set(i, 0, 1)
		eta := beta[0]
		for j := 1; j < p; j++ {
			v := rng.NormFloat64()
			x.Set(i, j, v)
			eta += beta[j] * v
		}
		if rng.Float64() < Sigmoid(eta) {
			y[i] = 1
		}
	}
	return x, y
}

func TestFitLogistic_RecoversCoefficients(t *testing.T) {
	truth := []float64{-0.5, 1.2, -0.8}
	x, y := syntheticData(5000, truth, 7)

	fit, err := FitLogistic(x, y, []string{"(Intercept)", "a", "b"}, DefaultOptions())
	require.NoError(t, err)
	require.True(t, fit.Converged)
	assert.LessOrEqual(t, fit.Iterations, 10)

	for j, want := range truth {
		c := fit.Coefficients[j]
		assert.InDelta(t, want, c.Estimate, 0.15, "coefficient %s", c.Name)
		assert.Greater(t, c.StdErr, 0.0)
		assert.InDelta(t, c.Estimate/c.StdErr, c.Z, 1e-12)
	}
	// Strong effects are significant.
	assert.Less(t, fit.Coefficients[1].P, 1e-6)
	assert.Less(t, fit.ResidualDeviance, fit.NullDeviance)
	assert.Equal(t, 4997, fit.ResidualDF)
}

func TestFitLogistic_Deterministic(t *testing.T) {
	x, y := syntheticData(500, []float64{0.3, -1}, 11)
	names := []string{"(Intercept)", "a"}

	first, err := FitLogistic(x, y, names, DefaultOptions())
	require.NoError(t, err)
	second, err := FitLogistic(x, y, names, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, first.Beta(), second.Beta())
	assert.Equal(t, first.ResidualDeviance, second.ResidualDeviance)
}

func TestFitLogistic_AliasedColumn(t *testing.T) {
	x, y := syntheticData(400, []float64{0.2, 0.9}, 3)
	n, _ := x.Dims()

	withZero := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		withZero.Set(i, 0, x.At(i, 0))
		withZero.Set(i, 1, x.At(i, 1))
	}

	base, err := FitLogistic(x, y, []string{"(Intercept)", "a"}, DefaultOptions())
	require.NoError(t, err)
	fit, err := FitLogistic(withZero, y, []string{"(Intercept)", "a", "unseen"}, DefaultOptions())
	require.NoError(t, err)

	assert.True(t, fit.Coefficients[2].Aliased)
	assert.True(t, math.IsNaN(fit.Coefficients[2].Estimate))
	assert.Equal(t, 0.0, fit.Beta()[2])
	assert.InDelta(t, base.Coefficients[1].Estimate, fit.Coefficients[1].Estimate, 1e-10)
	assert.Equal(t, base.ResidualDF, fit.ResidualDF)
}

func TestFitLogistic_LinearlyDependentColumn(t *testing.T) {
	x, y := syntheticData(400, []float64{0.2, 0.9, -0.4}, 13)
	n, _ := x.Dims()

	// c = 2a - b + 1 adds no information; the later column is aliased.
	withCombo := mat.NewDense(n, 4, nil)
	for i := 0; i < n; i++ {
		withCombo.Set(i, 0, x.At(i, 0))
		withCombo.Set(i, 1, x.At(i, 1))
		withCombo.Set(i, 2, x.At(i, 2))
		withCombo.Set(i, 3, 2*x.At(i, 1)-x.At(i, 2)+1)
	}

	base, err := FitLogistic(x, y, []string{"(Intercept)", "a", "b"}, DefaultOptions())
	require.NoError(t, err)
	fit, err := FitLogistic(withCombo, y, []string{"(Intercept)", "a", "b", "c"}, DefaultOptions())
	require.NoError(t, err)

	for j := 0; j < 3; j++ {
		assert.False(t, fit.Coefficients[j].Aliased)
		assert.InDelta(t, base.Coefficients[j].Estimate, fit.Coefficients[j].Estimate, 1e-8)
	}
	assert.True(t, fit.Coefficients[3].Aliased)
	assert.Equal(t, base.ResidualDF, fit.ResidualDF)
	assert.InDelta(t, base.AIC, fit.AIC, 1e-8)
}

func TestFitLogistic_Errors(t *testing.T) {
	names := []string{"(Intercept)"}
	ones := mat.NewDense(3, 1, []float64{1, 1, 1})

	tests := []struct {
		name  string
		x     *mat.Dense
		y     []float64
		names []string
		want  error
	}{
		{"single class", ones, []float64{1, 1, 1}, names, ErrSingleClass},
		{"response length", ones, []float64{1, 0}, names, ErrDimension},
		{"names length", ones, []float64{1, 0, 1}, []string{"a", "b"}, ErrDimension},
		{"all zero design", mat.NewDense(3, 1, nil), []float64{1, 0, 1}, names, ErrSingular},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FitLogistic(tt.x, tt.y, tt.names, DefaultOptions())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	_, err := FitLogistic(ones, []float64{1, 0, 2}, names, DefaultOptions())
	require.Error(t, err)
}

func TestFit_ProbabilityDimension(t *testing.T) {
	x, y := syntheticData(200, []float64{0, 1}, 5)
	fit, err := FitLogistic(x, y, []string{"(Intercept)", "a"}, DefaultOptions())
	require.NoError(t, err)

	_, err = fit.Probability([]float64{1})
	assert.True(t, errors.Is(err, ErrDimension))
}
