// Package report renders model output as plain text for the terminal UI,
// the CLI, and the text form of the HTTP API.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/abhisek/wellstat/internal/glm"
	"github.com/abhisek/wellstat/internal/model"
	"github.com/abhisek/wellstat/internal/scoring"
)

const notAvailable = "N/A"

// Decimal formats v with three decimals.
func Decimal(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return notAvailable
	}
	return fmt.Sprintf("%.3f", v)
}

// PValue formats a p-value, collapsing anything below 0.001.
func PValue(p float64) string {
	switch {
	case math.IsNaN(p):
		return notAvailable
	case p < 0.001:
		return "<0.001"
	default:
		return fmt.Sprintf("%.3f", p)
	}
}

// Stars returns the conventional significance marker for p.
func Stars(p float64) string {
	switch {
	case math.IsNaN(p):
		return ""
	case p < 0.001:
		return "***"
	case p < 0.01:
		return "**"
	case p < 0.05:
		return "*"
	case p < 0.1:
		return "."
	default:
		return ""
	}
}

// Coefficients renders the coefficient table. Aliased terms show N/A.
func Coefficients(coefs []glm.Coefficient) string {
	nameWidth := len("Term")
	for _, c := range coefs {
		nameWidth = max(nameWidth, len(c.Name))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s %10s %10s %8s %8s\n", nameWidth, "Term", "Estimate", "Std.Error", "z", "Pr(>|z|)")
	for _, c := range coefs {
		if c.Aliased {
			fmt.Fprintf(&b, "%-*s %10s %10s %8s %8s\n", nameWidth, c.Name, notAvailable, notAvailable, notAvailable, notAvailable)
			continue
		}
		line := fmt.Sprintf("%-*s %10s %10s %8s %8s %s", nameWidth, c.Name,
			Decimal(c.Estimate), Decimal(c.StdErr), Decimal(c.Z), PValue(c.P), Stars(c.P))
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteByte('\n')
	}
	return b.String()
}

// Summary renders the full model summary.
func Summary(s model.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Logistic regression (binomial, logit link)\n")
	fmt.Fprintf(&b, "Formula: %s\n\n", s.Formula)
	b.WriteString(Coefficients(s.Coefficients))
	b.WriteString("---\n")
	b.WriteString("Signif. codes: 0 '***' 0.001 '**' 0.01 '*' 0.05 '.' 0.1 ' ' 1\n\n")

	fmt.Fprintf(&b, "    Null deviance: %s on %d degrees of freedom\n", Decimal(s.NullDeviance), s.NullDF)
	fmt.Fprintf(&b, "Residual deviance: %s on %d degrees of freedom\n", Decimal(s.ResidualDeviance), s.ResidualDF)
	fmt.Fprintf(&b, "AIC: %s\n\n", Decimal(s.AIC))

	converged := "converged"
	if !s.Converged {
		converged = "did not converge"
	}
	fmt.Fprintf(&b, "Fisher scoring iterations: %d (%s)\n", s.Iterations, converged)
	fmt.Fprintf(&b, "Observations: %d of %d rows (%d rows dropped for missing values)\n",
		s.Observations, s.Data.RawRows, s.Data.Dropped)
	if len(s.Data.DroppedByField) > 0 {
		fields := make([]string, 0, len(s.Data.DroppedByField))
		for f := range s.Data.DroppedByField {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		parts := make([]string, len(fields))
		for i, f := range fields {
			parts[i] = fmt.Sprintf("%s=%d", f, s.Data.DroppedByField[f])
		}
		fmt.Fprintf(&b, "Missing by field: %s\n", strings.Join(parts, ", "))
	}

	levelFields := make([]string, 0, len(s.Levels))
	for f := range s.Levels {
		levelFields = append(levelFields, f)
	}
	sort.Strings(levelFields)
	for _, f := range levelFields {
		levels := s.Levels[f]
		if len(levels) == 0 {
			continue
		}
		fmt.Fprintf(&b, "Levels of %s (reference %s): %s\n", f, levels[0], strings.Join(levels, ", "))
	}
	return b.String()
}

// Confusion renders the 2x2 table with predicted classes as rows and
// actual classes as columns.
func Confusion(cm scoring.ConfusionMatrix) string {
	rows := []string{"Predicted " + model.LabelNotLow, "Predicted " + model.LabelLow}
	cols := []string{"Actual not low", "Actual low"}
	rowWidth := max(len(rows[0]), len(rows[1]))
	colWidth := max(len(cols[0]), len(cols[1]))

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s  %*s  %*s\n", rowWidth, "", colWidth, cols[0], colWidth, cols[1])
	fmt.Fprintf(&b, "%-*s  %*d  %*d\n", rowWidth, rows[0], colWidth, cm.TN(), colWidth, cm.FN())
	fmt.Fprintf(&b, "%-*s  %*d  %*d\n", rowWidth, rows[1], colWidth, cm.FP(), colWidth, cm.TP())
	return b.String()
}

// Metrics renders accuracy, sensitivity, specificity and the raw counts.
func Metrics(ev scoring.Evaluation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Threshold:   %s\n", Decimal(ev.Threshold))
	fmt.Fprintf(&b, "Accuracy:    %s\n", Decimal(ev.Accuracy))
	fmt.Fprintf(&b, "Sensitivity: %s\n", ev.Sensitivity)
	fmt.Fprintf(&b, "Specificity: %s\n", ev.Specificity)
	fmt.Fprintf(&b, "TP: %d  FP: %d  FN: %d  TN: %d  (N = %d)\n",
		ev.Confusion.TP(), ev.Confusion.FP(), ev.Confusion.FN(), ev.Confusion.TN(), ev.N)
	return b.String()
}

// Evaluation renders the confusion table followed by the metrics.
func Evaluation(ev scoring.Evaluation) string {
	return Confusion(ev.Confusion) + "\n" + Metrics(ev)
}

// Prediction renders a single-case result.
func Prediction(p model.Prediction) string {
	return fmt.Sprintf("Probability of low happiness: %s\nPredicted class: %s (threshold %s)\n",
		Decimal(p.Probability), p.Label, Decimal(p.Threshold))
}
