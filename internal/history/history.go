// Package history records evaluations and predictions to the event store
// and reads them back for display.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/wellstat/internal/model"
	"github.com/abhisek/wellstat/internal/scoring"
	"github.com/abhisek/wellstat/internal/store"
)

// Sources identify which surface produced an event.
const (
	SourceTUI  = "tui"
	SourceHTTP = "http"
	SourceCLI  = "cli"
)

const writeTimeout = 2 * time.Second

// NewSessionID returns an identifier for one process run.
func NewSessionID() string {
	return uuid.NewString()
}

// Recorder is a decorator that records every successful evaluation and
// prediction as an event. Failing to record never fails the call.
type Recorder struct {
	inner   model.Scorer
	repo    store.EventRepo
	session string
	source  string
	logger  *zap.Logger
}

var _ model.Scorer = (*Recorder)(nil)

// WithRecording wraps s with event recording.
func WithRecording(s model.Scorer, repo store.EventRepo, session, source string, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{inner: s, repo: repo, session: session, source: source, logger: logger}
}

func (r *Recorder) Evaluate(threshold float64) (scoring.Evaluation, error) {
	ev, err := r.inner.Evaluate(threshold)
	if err != nil {
		return ev, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	data := store.EvaluationEventData{
		SessionID:   r.session,
		Source:      r.source,
		Threshold:   ev.Threshold,
		TP:          ev.Confusion.TP(),
		FP:          ev.Confusion.FP(),
		FN:          ev.Confusion.FN(),
		TN:          ev.Confusion.TN(),
		Accuracy:    ev.Accuracy,
		Sensitivity: ratePtr(ev.Sensitivity),
		Specificity: ratePtr(ev.Specificity),
	}
	if logErr := r.repo.AppendEvaluation(ctx, data); logErr != nil {
		r.logger.Warn("failed to record evaluation event", zap.Error(logErr))
	}
	return ev, nil
}

func (r *Recorder) Predict(c model.Case, threshold float64) (model.Prediction, error) {
	p, err := r.inner.Predict(c, threshold)
	if err != nil {
		return p, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	caseJSON, err := json.Marshal(c)
	if err != nil {
		r.logger.Warn("failed to encode case for history", zap.Error(err))
		return p, nil
	}
	data := store.PredictionEventData{
		SessionID:   r.session,
		Source:      r.source,
		Threshold:   p.Threshold,
		Case:        caseJSON,
		Probability: p.Probability,
		Class:       p.Class,
	}
	if logErr := r.repo.AppendPrediction(ctx, data); logErr != nil {
		r.logger.Warn("failed to record prediction event", zap.Error(logErr))
	}
	return p, nil
}

func ratePtr(r scoring.Rate) *float64 {
	if !r.Valid {
		return nil
	}
	v := r.Value
	return &v
}

// Entry is one row of a merged history listing.
type Entry struct {
	Kind       string                 `json:"kind"`
	Evaluation *store.EvaluationEvent `json:"evaluation,omitempty"`
	Prediction *store.PredictionEvent `json:"prediction,omitempty"`
}

// Sequence returns the global order of the entry.
func (e Entry) Sequence() int64 {
	if e.Evaluation != nil {
		return e.Evaluation.Sequence
	}
	if e.Prediction != nil {
		return e.Prediction.Sequence
	}
	return 0
}

// String renders the entry on one line in local time.
func (e Entry) String() string {
	switch {
	case e.Evaluation != nil:
		ev := e.Evaluation
		return fmt.Sprintf("#%-4d %s  evaluate  t=%.2f  acc %s  sens %s  spec %s  [%s]",
			ev.Sequence, ev.Timestamp.Local().Format(timeLayout), ev.Threshold,
			scoring.Rate{Value: ev.Accuracy, Valid: true}, optRate(ev.Sensitivity), optRate(ev.Specificity), ev.Source)
	case e.Prediction != nil:
		p := e.Prediction
		return fmt.Sprintf("#%-4d %s  predict   t=%.2f  p=%.3f  %s  [%s]",
			p.Sequence, p.Timestamp.Local().Format(timeLayout), p.Threshold,
			p.Probability, model.ClassLabel(p.Class), p.Source)
	}
	return ""
}

const timeLayout = "Jan 02 15:04:05"

func optRate(v *float64) scoring.Rate {
	if v == nil {
		return scoring.Rate{}
	}
	return scoring.Rate{Value: *v, Valid: true}
}

// Entry kinds.
const (
	KindEvaluation = "evaluation"
	KindPrediction = "prediction"
)

// Recent merges the newest evaluations and predictions, newest first, and
// returns at most limit entries (0 = unlimited).
func Recent(ctx context.Context, repo store.EventRepo, limit int) ([]Entry, error) {
	opts := store.QueryOpts{Limit: limit}
	evals, err := repo.QueryEvaluations(ctx, opts)
	if err != nil {
		return nil, err
	}
	preds, err := repo.QueryPredictions(ctx, opts)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(evals)+len(preds))
	i, j := 0, 0
	for i < len(evals) || j < len(preds) {
		if limit > 0 && len(entries) == limit {
			break
		}
		switch {
		case j >= len(preds) || (i < len(evals) && evals[i].Sequence > preds[j].Sequence):
			entries = append(entries, Entry{Kind: KindEvaluation, Evaluation: &evals[i]})
			i++
		default:
			entries = append(entries, Entry{Kind: KindPrediction, Prediction: &preds[j]})
			j++
		}
	}
	return entries, nil
}
