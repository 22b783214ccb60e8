// Package scoring turns probabilities into class predictions and summarizes
// them against observed outcomes.
package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidThreshold indicates a threshold outside [0, 1].
	ErrInvalidThreshold = errors.New("threshold must be a number in [0, 1]")

	// ErrLengthMismatch indicates probabilities and labels of different length.
	ErrLengthMismatch = errors.New("probabilities and labels differ in length")
)

// ValidateThreshold rejects non-finite thresholds and those outside [0, 1].
func ValidateThreshold(t float64) error {
	if math.IsNaN(t) || t < 0 || t > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidThreshold, t)
	}
	return nil
}

// Classify returns 1 when p reaches the threshold.
func Classify(p, threshold float64) int {
	if p >= threshold {
		return 1
	}
	return 0
}

// ClassifyAll applies Classify to every probability.
func ClassifyAll(probs []float64, threshold float64) []int {
	out := make([]int, len(probs))
	for i, p := range probs {
		out[i] = Classify(p, threshold)
	}
	return out
}

// Rate is a ratio that may be undefined when its denominator is zero.
type Rate struct {
	Value float64
	Valid bool
}

func ratio(num, den int) Rate {
	if den == 0 {
		return Rate{}
	}
	return Rate{Value: float64(num) / float64(den), Valid: true}
}

// String renders the rate at three decimals, or N/A.
func (r Rate) String() string {
	if !r.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.3f", r.Value)
}

// MarshalJSON encodes an undefined rate as null.
func (r Rate) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

// UnmarshalJSON accepts a number or null.
func (r *Rate) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*r = Rate{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*r = Rate{Value: v, Valid: true}
	return nil
}

// ConfusionMatrix counts outcomes indexed [predicted][actual].
type ConfusionMatrix [2][2]int

// TP is predicted 1 and actual 1.
func (m ConfusionMatrix) TP() int { return m[1][1] }

// FP is predicted 1 and actual 0.
func (m ConfusionMatrix) FP() int { return m[1][0] }

// FN is predicted 0 and actual 1.
func (m ConfusionMatrix) FN() int { return m[0][1] }

// TN is predicted 0 and actual 0.
func (m ConfusionMatrix) TN() int { return m[0][0] }

// Total is the number of scored records.
func (m ConfusionMatrix) Total() int { return m[0][0] + m[0][1] + m[1][0] + m[1][1] }

type confusionJSON struct {
	TP int `json:"tp"`
	FP int `json:"fp"`
	FN int `json:"fn"`
	TN int `json:"tn"`
}

// MarshalJSON encodes the matrix as named cells.
func (m ConfusionMatrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(confusionJSON{TP: m.TP(), FP: m.FP(), FN: m.FN(), TN: m.TN()})
}

// UnmarshalJSON decodes the named-cell form.
func (m *ConfusionMatrix) UnmarshalJSON(b []byte) error {
	var c confusionJSON
	if err := json.Unmarshal(b, &c); err != nil {
		return err
	}
	*m = ConfusionMatrix{{c.TN, c.FN}, {c.FP, c.TP}}
	return nil
}

// Evaluation is the result of scoring a dataset at one threshold.
type Evaluation struct {
	Threshold   float64         `json:"threshold"`
	Confusion   ConfusionMatrix `json:"confusion"`
	N           int             `json:"n"`
	Accuracy    float64         `json:"accuracy"`
	Sensitivity Rate            `json:"sensitivity"`
	Specificity Rate            `json:"specificity"`
}

// Evaluate classifies every probability at threshold and compares against
// labels (0 or 1).
func Evaluate(probs []float64, labels []int, threshold float64) (Evaluation, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return Evaluation{}, err
	}
	if len(probs) != len(labels) {
		return Evaluation{}, fmt.Errorf("%w: %d probabilities, %d labels", ErrLengthMismatch, len(probs), len(labels))
	}

	var cm ConfusionMatrix
	for i, p := range probs {
		actual := labels[i]
		if actual != 0 && actual != 1 {
			return Evaluation{}, fmt.Errorf("label %d at row %d is not 0 or 1", actual, i)
		}
		cm[Classify(p, threshold)][actual]++
	}

	ev := Evaluation{
		Threshold:   threshold,
		Confusion:   cm,
		N:           cm.Total(),
		Sensitivity: ratio(cm.TP(), cm.TP()+cm.FN()),
		Specificity: ratio(cm.TN(), cm.TN()+cm.FP()),
	}
	if ev.N > 0 {
		ev.Accuracy = float64(cm.TP()+cm.TN()) / float64(ev.N)
	}
	return ev, nil
}
