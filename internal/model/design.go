package model

import (
	"fmt"
	"math"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/abhisek/wellstat/internal/dataset"
)

// InterceptTerm names the intercept column.
const InterceptTerm = "(Intercept)"

// Case is one respondent to score. It carries every predictor; the outcome
// is not needed.
type Case struct {
	Age                    float64 `json:"age"`
	Gender                 string  `json:"gender"`
	DailyScreenTime        float64 `json:"daily_screen_time"`
	SleepQuality           float64 `json:"sleep_quality"`
	StressLevel            float64 `json:"stress_level"`
	DaysWithoutSocialMedia float64 `json:"days_without_social_media"`
	ExerciseFrequency      float64 `json:"exercise_frequency"`
	Platform               string  `json:"platform"`
}

// CaseFromRecord extracts the predictors of a cleaned record.
func CaseFromRecord(r dataset.Record) Case {
	return Case{
		Age:                    r.Age,
		Gender:                 r.Gender,
		DailyScreenTime:        r.DailyScreenTime,
		SleepQuality:           r.SleepQuality,
		StressLevel:            r.StressLevel,
		DaysWithoutSocialMedia: r.DaysWithoutSocialMedia,
		ExerciseFrequency:      r.ExerciseFrequency,
		Platform:               r.Platform,
	}
}

// Design is the encoding scheme shared by fitting and prediction: term
// order plus the categorical domains whose first level is absorbed into
// the intercept.
type Design struct {
	gender   dataset.Domain
	platform dataset.Domain
	terms    []string

	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
}

// NewDesign builds the design for the given domains. Term order is
// intercept, age, gender dummies, the five numeric habits, platform dummies.
func NewDesign(gender, platform dataset.Domain) *Design {
	terms := []string{InterceptTerm, dataset.FieldAge}
	terms = append(terms, dummyTerms(gender)...)
	terms = append(terms,
		dataset.FieldScreenTime,
		dataset.FieldSleepQuality,
		dataset.FieldStressLevel,
		dataset.FieldDaysOffline,
		dataset.FieldExerciseFreq,
	)
	terms = append(terms, dummyTerms(platform)...)

	return &Design{gender: gender, platform: platform, terms: terms}
}

func dummyTerms(d dataset.Domain) []string {
	levels := d.Levels()
	if len(levels) < 2 {
		return nil
	}
	out := make([]string, 0, len(levels)-1)
	for _, l := range levels[1:] {
		out = append(out, d.Field()+l)
	}
	return out
}

// Terms returns the column names in order.
func (d *Design) Terms() []string {
	out := make([]string, len(d.terms))
	copy(out, d.terms)
	return out
}

// Width is the number of design columns.
func (d *Design) Width() int { return len(d.terms) }

// Gender returns the gender domain.
func (d *Design) Gender() dataset.Domain { return d.gender }

// Platform returns the platform domain.
func (d *Design) Platform() dataset.Domain { return d.platform }

// Validate checks a case against the design without encoding it.
func (d *Design) Validate(c Case) error {
	numeric := []struct {
		field string
		v     float64
	}{
		{dataset.FieldAge, c.Age},
		{dataset.FieldScreenTime, c.DailyScreenTime},
		{dataset.FieldSleepQuality, c.SleepQuality},
		{dataset.FieldStressLevel, c.StressLevel},
		{dataset.FieldDaysOffline, c.DaysWithoutSocialMedia},
		{dataset.FieldExerciseFreq, c.ExerciseFrequency},
	}
	for _, n := range numeric {
		if math.IsNaN(n.v) || math.IsInf(n.v, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidCase, n.field)
		}
	}
	if !d.gender.Contains(c.Gender) {
		return &UnknownLevelError{Field: d.gender.Field(), Value: c.Gender, Levels: d.gender.Levels()}
	}
	if !d.platform.Contains(c.Platform) {
		return &UnknownLevelError{Field: d.platform.Field(), Value: c.Platform, Levels: d.platform.Levels()}
	}
	return nil
}

// Encode returns the feature vector of c in term order. Categorical values
// outside the design's domains are rejected.
func (d *Design) Encode(c Case) ([]float64, error) {
	if err := d.Validate(c); err != nil {
		return nil, err
	}

	x := make([]float64, 0, len(d.terms))
	x = append(x, 1, c.Age)
	x = appendDummies(x, d.gender, c.Gender)
	x = append(x,
		c.DailyScreenTime,
		c.SleepQuality,
		c.StressLevel,
		c.DaysWithoutSocialMedia,
		c.ExerciseFrequency,
	)
	x = appendDummies(x, d.platform, c.Platform)
	return x, nil
}

// appendDummies appends one indicator per non-reference level.
func appendDummies(x []float64, dom dataset.Domain, value string) []float64 {
	if dom.Len() < 2 {
		return x
	}
	idx, _ := dom.Index(value)
	for level := 1; level < dom.Len(); level++ {
		if level == idx {
			x = append(x, 1)
		} else {
			x = append(x, 0)
		}
	}
	return x
}
