// Package model binds the survey dataset to a fitted logistic regression of
// low_happiness and answers evaluation and single-case queries against it.
package model

import (
	"fmt"
	"maps"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/abhisek/wellstat/internal/dataset"
	"github.com/abhisek/wellstat/internal/glm"
	"github.com/abhisek/wellstat/internal/scoring"
)

// Class labels for the binary outcome.
const (
	LabelLow    = "Low happiness"
	LabelNotLow = "Not low happiness"
)

// ClassLabel names a predicted class.
func ClassLabel(class int) string {
	if class == 1 {
		return LabelLow
	}
	return LabelNotLow
}

// Scorer answers threshold evaluations and single-case predictions. *Model
// implements it; decorators add recording and metrics.
type Scorer interface {
	Evaluate(threshold float64) (scoring.Evaluation, error)
	Predict(c Case, threshold float64) (Prediction, error)
}

// Model is the immutable result of training: the encoding, the fit, and
// the in-sample probabilities cached for threshold evaluation. A Model is
// safe for concurrent use.
type Model struct {
	design  *Design
	fit     *glm.Fit
	probs   []float64
	labels  []int
	stats   dataset.Stats
	typical Case
}

// Prediction is the outcome of scoring one case.
type Prediction struct {
	Probability float64 `json:"probability"`
	Class       int     `json:"class"`
	Label       string  `json:"label"`
	Threshold   float64 `json:"threshold"`
}

// Train fits low_happiness against the eight predictors of every cleaned
// record and caches the fitted probabilities.
func Train(ds *dataset.Dataset, opts glm.Options) (*Model, error) {
	if len(ds.Records) == 0 {
		return nil, fmt.Errorf("train: %w", glm.ErrNoData)
	}

	design := NewDesign(ds.Gender, ds.Platform)
	n, p := len(ds.Records), design.Width()

	x := mat.NewDense(n, p, nil)
	y := make([]float64, n)
	labels := make([]int, n)
	for i, r := range ds.Records {
		row, err := design.Encode(CaseFromRecord(r))
		if err != nil {
			return nil, fmt.Errorf("encode record %d: %w", i, err)
		}
		x.SetRow(i, row)
		y[i] = float64(r.LowHappiness)
		labels[i] = r.LowHappiness
	}

	fit, err := glm.FitLogistic(x, y, design.Terms(), opts)
	if err != nil {
		return nil, fmt.Errorf("fit logistic regression: %w", err)
	}

	probs := make([]float64, n)
	for i := range probs {
		prob, err := fit.Probability(x.RawRowView(i))
		if err != nil {
			return nil, fmt.Errorf("score record %d: %w", i, err)
		}
		probs[i] = prob
	}

	return &Model{
		design:  design,
		fit:     fit,
		probs:   probs,
		labels:  labels,
		stats:   ds.Stats,
		typical: typicalCase(ds, design),
	}, nil
}

// typicalCase is the column means rounded to one decimal, with the most
// frequent level of each categorical field (the earlier level on ties).
func typicalCase(ds *dataset.Dataset, design *Design) Case {
	n := len(ds.Records)
	cols := make([][]float64, 6)
	for j := range cols {
		cols[j] = make([]float64, n)
	}
	genders := make([]int, design.gender.Len())
	platforms := make([]int, design.platform.Len())
	for i, r := range ds.Records {
		cols[0][i] = r.Age
		cols[1][i] = r.DailyScreenTime
		cols[2][i] = r.SleepQuality
		cols[3][i] = r.StressLevel
		cols[4][i] = r.DaysWithoutSocialMedia
		cols[5][i] = r.ExerciseFrequency
		if k, ok := design.gender.Index(r.Gender); ok {
			genders[k]++
		}
		if k, ok := design.platform.Index(r.Platform); ok {
			platforms[k]++
		}
	}
	mean := func(j int) float64 {
		return math.Round(stat.Mean(cols[j], nil)*10) / 10
	}
	return Case{
		Age:                    mean(0),
		Gender:                 modalLevel(design.gender, genders),
		DailyScreenTime:        mean(1),
		SleepQuality:           mean(2),
		StressLevel:            mean(3),
		DaysWithoutSocialMedia: mean(4),
		ExerciseFrequency:      mean(5),
		Platform:               modalLevel(design.platform, platforms),
	}
}

func modalLevel(dom dataset.Domain, counts []int) string {
	levels := dom.Levels()
	if len(levels) == 0 {
		return ""
	}
	best := 0
	for k, c := range counts {
		if c > counts[best] {
			best = k
		}
	}
	return levels[best]
}

// TypicalCase returns a representative respondent of the training data,
// used to seed interactive forms.
func (m *Model) TypicalCase() Case { return m.typical }

// Design returns the encoding scheme.
func (m *Model) Design() *Design { return m.design }

// Probabilities returns a copy of the cached training probabilities.
func (m *Model) Probabilities() []float64 {
	out := make([]float64, len(m.probs))
	copy(out, m.probs)
	return out
}

// Labels returns a copy of the training outcomes.
func (m *Model) Labels() []int {
	out := make([]int, len(m.labels))
	copy(out, m.labels)
	return out
}

// Evaluate scores the cached training probabilities at threshold.
func (m *Model) Evaluate(threshold float64) (scoring.Evaluation, error) {
	return scoring.Evaluate(m.probs, m.labels, threshold)
}

// Predict scores one case. Categorical values must belong to the domains
// fixed at load time.
func (m *Model) Predict(c Case, threshold float64) (Prediction, error) {
	if err := scoring.ValidateThreshold(threshold); err != nil {
		return Prediction{}, err
	}
	x, err := m.design.Encode(c)
	if err != nil {
		return Prediction{}, err
	}
	p, err := m.fit.Probability(x)
	if err != nil {
		return Prediction{}, err
	}
	class := scoring.Classify(p, threshold)
	return Prediction{
		Probability: p,
		Class:       class,
		Label:       ClassLabel(class),
		Threshold:   threshold,
	}, nil
}

// Summary is the display-only view of the fit.
type Summary struct {
	Formula          string              `json:"formula"`
	Coefficients     []glm.Coefficient   `json:"coefficients"`
	NullDeviance     float64             `json:"null_deviance"`
	ResidualDeviance float64             `json:"residual_deviance"`
	NullDF           int                 `json:"null_df"`
	ResidualDF       int                 `json:"residual_df"`
	AIC              float64             `json:"aic"`
	Iterations       int                 `json:"iterations"`
	Converged        bool                `json:"converged"`
	Observations     int                 `json:"observations"`
	Data             dataset.Stats       `json:"data"`
	Levels           map[string][]string `json:"levels"`
}

// Summary returns a copy of the fit statistics.
func (m *Model) Summary() Summary {
	coefs := make([]glm.Coefficient, len(m.fit.Coefficients))
	copy(coefs, m.fit.Coefficients)
	stats := m.stats
	stats.DroppedByField = maps.Clone(m.stats.DroppedByField)

	return Summary{
		Formula:          Formula(),
		Coefficients:     coefs,
		NullDeviance:     m.fit.NullDeviance,
		ResidualDeviance: m.fit.ResidualDeviance,
		NullDF:           m.fit.NullDF,
		ResidualDF:       m.fit.ResidualDF,
		AIC:              m.fit.AIC,
		Iterations:       m.fit.Iterations,
		Converged:        m.fit.Converged,
		Observations:     len(m.probs),
		Data:             stats,
		Levels: map[string][]string{
			dataset.FieldGender:   m.design.gender.Levels(),
			dataset.FieldPlatform: m.design.platform.Levels(),
		},
	}
}

// Formula renders the fitted formula in R notation.
func Formula() string {
	predictors := []string{
		dataset.FieldAge,
		dataset.FieldGender,
		dataset.FieldScreenTime,
		dataset.FieldSleepQuality,
		dataset.FieldStressLevel,
		dataset.FieldDaysOffline,
		dataset.FieldExerciseFreq,
		dataset.FieldPlatform,
	}
	return dataset.FieldLowHappiness + " ~ " + strings.Join(predictors, " + ")
}
