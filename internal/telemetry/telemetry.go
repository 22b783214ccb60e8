// Package telemetry exposes Prometheus metrics for model fitting, scoring
// and the HTTP API.
package telemetry

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abhisek/wellstat/internal/dataset"
	"github.com/abhisek/wellstat/internal/model"
	"github.com/abhisek/wellstat/internal/scoring"
)

var (
	// evaluationsTotal counts threshold evaluations
	evaluationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wellstat_evaluations_total",
		Help: "Total threshold evaluations",
	})

	// predictionsTotal counts single-case predictions by predicted class
	predictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wellstat_predictions_total",
		Help: "Total single-case predictions by predicted class",
	}, []string{"class"})

	// rejectionsTotal counts refused evaluations and predictions by reason
	rejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wellstat_prediction_rejections_total",
		Help: "Total rejected scoring requests by reason",
	}, []string{"reason"})

	fitIterations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wellstat_fit_iterations",
		Help: "Fisher scoring iterations used by the startup fit",
	})

	// trainingRows reports the cleaning outcome by state (raw, retained, dropped)
	trainingRows = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "wellstat_training_rows",
		Help: "Survey rows by cleaning state",
	}, []string{"state"})

	// requestDuration tracks HTTP latency by route and status
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wellstat_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
	}, []string{"route", "status"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordFit publishes the startup fit and cleaning statistics.
func RecordFit(s model.Summary) {
	fitIterations.Set(float64(s.Iterations))
	RecordRows(s.Data)
}

// RecordRows publishes cleaning statistics.
func RecordRows(stats dataset.Stats) {
	trainingRows.WithLabelValues("raw").Set(float64(stats.RawRows))
	trainingRows.WithLabelValues("retained").Set(float64(stats.Retained))
	trainingRows.WithLabelValues("dropped").Set(float64(stats.Dropped))
}

// ObserveRequest records one HTTP request.
func ObserveRequest(route, status string, seconds float64) {
	requestDuration.WithLabelValues(route, status).Observe(seconds)
}

// RejectionReason classifies a scoring error for the rejection counter.
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, scoring.ErrInvalidThreshold):
		return "invalid_threshold"
	case errors.Is(err, model.ErrUnknownLevel):
		return "unknown_level"
	case errors.Is(err, model.ErrInvalidCase):
		return "invalid_case"
	default:
		return "other"
	}
}

// RecordRejection counts a refused request.
func RecordRejection(err error) {
	rejectionsTotal.WithLabelValues(RejectionReason(err)).Inc()
}

// instrumented counts calls to the wrapped scorer.
type instrumented struct {
	inner model.Scorer
}

// Instrument wraps s so every evaluation and prediction is counted.
func Instrument(s model.Scorer) model.Scorer {
	return &instrumented{inner: s}
}

func (i *instrumented) Evaluate(threshold float64) (scoring.Evaluation, error) {
	ev, err := i.inner.Evaluate(threshold)
	if err != nil {
		RecordRejection(err)
		return ev, err
	}
	evaluationsTotal.Inc()
	return ev, nil
}

func (i *instrumented) Predict(c model.Case, threshold float64) (model.Prediction, error) {
	p, err := i.inner.Predict(c, threshold)
	if err != nil {
		RecordRejection(err)
		return p, err
	}
	predictionsTotal.WithLabelValues(classLabel(p.Class)).Inc()
	return p, nil
}

func classLabel(class int) string {
	if class == 1 {
		return "low"
	}
	return "not_low"
}
