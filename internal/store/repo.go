package store

import (
	"context"
	"encoding/json"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// EventMeta is common to every recorded event.
type EventMeta struct {
	Sequence  int64     `json:"sequence"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Threshold float64   `json:"threshold"`
}

// EvaluationEventData captures one threshold evaluation.
type EvaluationEventData struct {
	SessionID   string
	Source      string
	Threshold   float64
	TP, FP      int
	FN, TN      int
	Accuracy    float64
	Sensitivity *float64
	Specificity *float64
}

// EvaluationEvent is a stored evaluation.
type EvaluationEvent struct {
	EventMeta
	TP          int      `json:"tp"`
	FP          int      `json:"fp"`
	FN          int      `json:"fn"`
	TN          int      `json:"tn"`
	Accuracy    float64  `json:"accuracy"`
	Sensitivity *float64 `json:"sensitivity"`
	Specificity *float64 `json:"specificity"`
}

// PredictionEventData captures one single-case prediction.
type PredictionEventData struct {
	SessionID   string
	Source      string
	Threshold   float64
	Case        json.RawMessage
	Probability float64
	Class       int
}

// PredictionEvent is a stored prediction.
type PredictionEvent struct {
	EventMeta
	Case        json.RawMessage `json:"case"`
	Probability float64         `json:"probability"`
	Class       int             `json:"class"`
}

// EventRepo provides append and query access to history events.
type EventRepo interface {
	// AppendEvaluation records a threshold evaluation.
	AppendEvaluation(ctx context.Context, data EvaluationEventData) error

	// AppendPrediction records a single-case prediction.
	AppendPrediction(ctx context.Context, data PredictionEventData) error

	// QueryEvaluations returns evaluations, newest first.
	QueryEvaluations(ctx context.Context, opts QueryOpts) ([]EvaluationEvent, error)

	// QueryPredictions returns predictions, newest first.
	QueryPredictions(ctx context.Context, opts QueryOpts) ([]PredictionEvent, error)
}
