package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo on top of ent's SQL builder.
type eventRepo struct {
	drv *entsql.Driver
	seq *sequence
	now func() time.Time
}

var (
	metaColumns       = []string{"sequence", "session_id", "timestamp", "source", "threshold"}
	evaluationColumns = []string{"tp", "fp", "fn", "tn", "accuracy", "sensitivity", "specificity"}
	predictionColumns = []string{"case_json", "probability", "class"}
)

func (r *eventRepo) timestamp() int64 {
	if r.now != nil {
		return r.now().UnixMilli()
	}
	return time.Now().UnixMilli()
}

func (r *eventRepo) AppendEvaluation(ctx context.Context, data EvaluationEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(evaluationTable).
		Columns(slices.Concat(metaColumns, evaluationColumns)...).
		Values(seqNum, data.SessionID, r.timestamp(), data.Source, data.Threshold,
			data.TP, data.FP, data.FN, data.TN, data.Accuracy,
			nullFloat(data.Sensitivity), nullFloat(data.Specificity)).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save evaluation event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendPrediction(ctx context.Context, data PredictionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	caseJSON := string(data.Case)
	if caseJSON == "" {
		caseJSON = "{}"
	}
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(predictionTable).
		Columns(slices.Concat(metaColumns, predictionColumns)...).
		Values(seqNum, data.SessionID, r.timestamp(), data.Source, data.Threshold,
			caseJSON, data.Probability, data.Class).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save prediction event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryEvaluations(ctx context.Context, opts QueryOpts) ([]EvaluationEvent, error) {
	query, args := selectEvents(evaluationTable, evaluationColumns, opts)

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query evaluation events: %w", err)
	}
	defer rows.Close()

	var events []EvaluationEvent
	for rows.Next() {
		var (
			e          EvaluationEvent
			ts         int64
			sens, spec sql.NullFloat64
		)
		err := rows.Scan(&e.Sequence, &e.SessionID, &ts, &e.Source, &e.Threshold,
			&e.TP, &e.FP, &e.FN, &e.TN, &e.Accuracy, &sens, &spec)
		if err != nil {
			return nil, fmt.Errorf("scan evaluation event: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts).UTC()
		e.Sensitivity = floatPtr(sens)
		e.Specificity = floatPtr(spec)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluation events: %w", err)
	}
	return events, nil
}

func (r *eventRepo) QueryPredictions(ctx context.Context, opts QueryOpts) ([]PredictionEvent, error) {
	query, args := selectEvents(predictionTable, predictionColumns, opts)

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query prediction events: %w", err)
	}
	defer rows.Close()

	var events []PredictionEvent
	for rows.Next() {
		var (
			e        PredictionEvent
			ts       int64
			caseJSON string
		)
		err := rows.Scan(&e.Sequence, &e.SessionID, &ts, &e.Source, &e.Threshold,
			&caseJSON, &e.Probability, &e.Class)
		if err != nil {
			return nil, fmt.Errorf("scan prediction event: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts).UTC()
		e.Case = []byte(caseJSON)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prediction events: %w", err)
	}
	return events, nil
}

// selectEvents builds the newest-first query for table honoring opts.
func selectEvents(table string, columns []string, opts QueryOpts) (string, []any) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(slices.Concat(metaColumns, columns)...).
		From(entsql.Table(table)).
		OrderBy(entsql.Desc("sequence"))

	var preds []*entsql.Predicate
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", opts.To.UnixMilli()))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	return sel.Query()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
