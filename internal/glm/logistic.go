// Package glm fits binomial logistic regression models by iteratively
// reweighted least squares.
package glm

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	// ErrNoData indicates the design matrix has no rows.
	ErrNoData = errors.New("no observations to fit")

	// ErrSingleClass indicates the response contains only one class.
	ErrSingleClass = errors.New("response has a single class")

	// ErrSingular indicates the weighted normal equations cannot be solved.
	ErrSingular = errors.New("singular design matrix")

	// ErrDimension indicates mismatched input sizes.
	ErrDimension = errors.New("dimension mismatch")
)

// muEpsilon bounds fitted means away from 0 and 1 during fitting so the
// working weights stay positive.
const muEpsilon = 2.220446e-16

// Options controls the IRLS solver.
type Options struct {
	// MaxIterations caps the number of Fisher scoring iterations.
	MaxIterations int
	// Tolerance is the relative deviance change that counts as converged.
	Tolerance float64
}

// DefaultOptions returns the conventional GLM control settings.
func DefaultOptions() Options {
	return Options{
		MaxIterations: 25,
		Tolerance:     1e-8,
	}
}

// Coefficient is one estimated term of the model.
type Coefficient struct {
	Name     string  `json:"name"`
	Estimate float64 `json:"estimate"`
	StdErr   float64 `json:"std_error"`
	Z        float64 `json:"z_value"`
	P        float64 `json:"p_value"`
	// Aliased terms have an all-zero design column and are not estimable.
	Aliased bool `json:"aliased,omitempty"`
}

// Fit is an immutable fitted logistic regression.
type Fit struct {
	Coefficients     []Coefficient `json:"coefficients"`
	NullDeviance     float64       `json:"null_deviance"`
	ResidualDeviance float64       `json:"residual_deviance"`
	AIC              float64       `json:"aic"`
	NullDF           int           `json:"null_df"`
	ResidualDF       int           `json:"residual_df"`
	Iterations       int           `json:"iterations"`
	Converged        bool          `json:"converged"`

	beta []float64
}

// Beta returns a copy of the coefficient vector in design order. Aliased
// terms are zero.
func (f *Fit) Beta() []float64 {
	out := make([]float64, len(f.beta))
	copy(out, f.beta)
	return out
}

// LinearPredictor returns β·x.
func (f *Fit) LinearPredictor(x []float64) (float64, error) {
	if len(x) != len(f.beta) {
		return 0, fmt.Errorf("%w: got %d features, want %d", ErrDimension, len(x), len(f.beta))
	}
	return floats.Dot(f.beta, x), nil
}

// Probability returns the fitted probability of the positive class for x.
func (f *Fit) Probability(x []float64) (float64, error) {
	eta, err := f.LinearPredictor(x)
	if err != nil {
		return 0, err
	}
	return Sigmoid(eta), nil
}

// Sigmoid is the inverse logit.
func Sigmoid(eta float64) float64 {
	if eta >= 0 {
		return 1 / (1 + math.Exp(-eta))
	}
	e := math.Exp(eta)
	return e / (1 + e)
}

// FitLogistic fits y ~ x by maximum likelihood. x must include an intercept
// column; names labels each column of x. y holds 0/1 responses.
func FitLogistic(x *mat.Dense, y []float64, names []string, opts Options) (*Fit, error) {
	if opts.MaxIterations <= 0 || opts.Tolerance <= 0 {
		opts = DefaultOptions()
	}

	n, p := x.Dims()
	if n == 0 {
		return nil, ErrNoData
	}
	if len(y) != n {
		return nil, fmt.Errorf("%w: %d responses for %d rows", ErrDimension, len(y), n)
	}
	if len(names) != p {
		return nil, fmt.Errorf("%w: %d names for %d columns", ErrDimension, len(names), p)
	}

	var positives int
	for i, v := range y {
		switch v {
		case 1:
			positives++
		case 0:
		default:
			return nil, fmt.Errorf("response %d is %v, want 0 or 1", i, v)
		}
	}
	if positives == 0 || positives == n {
		return nil, ErrSingleClass
	}

	active := activeColumns(x)
	if len(active) == 0 {
		return nil, ErrSingular
	}
	xr := selectColumns(x, active)
	q := len(active)

	mu := make([]float64, n)
	eta := make([]float64, n)
	for i, v := range y {
		mu[i] = (v + 0.5) / 2
		eta[i] = math.Log(mu[i] / (1 - mu[i]))
	}
	devOld := deviance(y, mu)

	var (
		beta      *mat.VecDense
		dev       float64
		converged bool
		iter      int
	)
	for iter = 1; iter <= opts.MaxIterations; iter++ {
		w := make([]float64, n)
		wz := make([]float64, n)
		for i := range y {
			w[i] = mu[i] * (1 - mu[i])
			z := eta[i] + (y[i]-mu[i])/w[i]
			wz[i] = w[i] * z
		}

		chol, err := factorize(xr, w)
		if err != nil {
			return nil, fmt.Errorf("iteration %d: %w", iter, err)
		}

		var rhs mat.VecDense
		rhs.MulVec(xr.T(), mat.NewVecDense(n, wz))

		beta = mat.NewVecDense(q, nil)
		if err := chol.SolveVecTo(beta, &rhs); err != nil {
			return nil, fmt.Errorf("iteration %d: %w: %v", iter, ErrSingular, err)
		}

		var etaVec mat.VecDense
		etaVec.MulVec(xr, beta)
		for i := range eta {
			eta[i] = etaVec.AtVec(i)
			mu[i] = clampMu(Sigmoid(eta[i]))
		}

		dev = deviance(y, mu)
		if math.Abs(dev-devOld)/(math.Abs(dev)+0.1) < opts.Tolerance {
			converged = true
			break
		}
		devOld = dev
	}
	if iter > opts.MaxIterations {
		iter = opts.MaxIterations
	}

	// Standard errors come from the inverse Fisher information at the
	// final estimates.
	w := make([]float64, n)
	for i := range mu {
		w[i] = mu[i] * (1 - mu[i])
	}
	chol, err := factorize(xr, w)
	if err != nil {
		return nil, fmt.Errorf("information matrix: %w", err)
	}
	var cov mat.SymDense
	if err := chol.InverseTo(&cov); err != nil {
		return nil, fmt.Errorf("invert information matrix: %w: %v", ErrSingular, err)
	}

	fit := &Fit{
		Coefficients:     make([]Coefficient, p),
		NullDeviance:     nullDeviance(y, positives),
		ResidualDeviance: dev,
		AIC:              dev + 2*float64(q),
		NullDF:           n - 1,
		ResidualDF:       n - q,
		Iterations:       iter,
		Converged:        converged,
		beta:             make([]float64, p),
	}

	for j, name := range names {
		fit.Coefficients[j] = Coefficient{
			Name:     name,
			Estimate: math.NaN(),
			StdErr:   math.NaN(),
			Z:        math.NaN(),
			P:        math.NaN(),
			Aliased:  true,
		}
	}
	for k, j := range active {
		est := beta.AtVec(k)
		se := math.Sqrt(cov.At(k, k))
		z := est / se
		fit.beta[j] = est
		fit.Coefficients[j] = Coefficient{
			Name:     names[j],
			Estimate: est,
			StdErr:   se,
			Z:        z,
			P:        2 * distuv.UnitNormal.Survival(math.Abs(z)),
		}
	}

	return fit, nil
}

// factorize builds XᵀWX and returns its Cholesky factorization.
func factorize(x *mat.Dense, w []float64) (*mat.Cholesky, error) {
	_, q := x.Dims()
	var xw mat.Dense
	xw.Apply(func(i, _ int, v float64) float64 {
		return v * math.Sqrt(w[i])
	}, x)

	info := mat.NewSymDense(q, nil)
	info.SymOuterK(1, xw.T())

	var chol mat.Cholesky
	if ok := chol.Factorize(info); !ok {
		return nil, ErrSingular
	}
	return &chol, nil
}

// aliasTolerance is the relative residual norm below which a column counts
// as a linear combination of the columns before it.
const aliasTolerance = 1e-7

// activeColumns returns, in design order, the columns that are linearly
// independent of the columns already accepted. A column whose residual
// after projection onto the accepted span is negligible is aliased, the
// way R reports "not defined because of singularities". All-zero columns
// are always aliased.
func activeColumns(x *mat.Dense) []int {
	_, p := x.Dims()
	var (
		active []int
		basis  []*mat.VecDense // orthonormal, spans the accepted columns
	)
	for j := 0; j < p; j++ {
		col := mat.VecDenseCopyOf(x.ColView(j))
		norm := mat.Norm(col, 2)
		if norm == 0 {
			continue
		}
		// Modified Gram-Schmidt, twice for numerical stability.
		for pass := 0; pass < 2; pass++ {
			for _, q := range basis {
				col.AddScaledVec(col, -mat.Dot(col, q), q)
			}
		}
		resid := mat.Norm(col, 2)
		if resid <= aliasTolerance*norm {
			continue
		}
		col.ScaleVec(1/resid, col)
		basis = append(basis, col)
		active = append(active, j)
	}
	return active
}

func selectColumns(x *mat.Dense, cols []int) *mat.Dense {
	n, _ := x.Dims()
	out := mat.NewDense(n, len(cols), nil)
	for k, j := range cols {
		for i := 0; i < n; i++ {
			out.Set(i, k, x.At(i, j))
		}
	}
	return out
}

func clampMu(mu float64) float64 {
	switch {
	case mu < muEpsilon:
		return muEpsilon
	case mu > 1-muEpsilon:
		return 1 - muEpsilon
	}
	return mu
}

// deviance is -2 times the Bernoulli log-likelihood.
func deviance(y, mu []float64) float64 {
	var ll float64
	for i, v := range y {
		if v == 1 {
			ll += math.Log(mu[i])
		} else {
			ll += math.Log(1 - mu[i])
		}
	}
	return -2 * ll
}

// nullDeviance is the deviance of the intercept-only model.
func nullDeviance(y []float64, positives int) float64 {
	ybar := float64(positives) / float64(len(y))
	mu := make([]float64, len(y))
	floats.AddConst(ybar, mu)
	return deviance(y, mu)
}
