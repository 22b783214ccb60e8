package history

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/wellstat/internal/model"
	"github.com/abhisek/wellstat/internal/model/modeltest"
	"github.com/abhisek/wellstat/internal/store"
)

func openRepo(t *testing.T) store.EventRepo {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s.EventRepo()
}

type failingRepo struct {
	store.EventRepo
}

func (failingRepo) AppendEvaluation(context.Context, store.EvaluationEventData) error {
	return errors.New("disk full")
}

func (failingRepo) AppendPrediction(context.Context, store.PredictionEventData) error {
	return errors.New("disk full")
}

func TestRecorder_RecordsEvents(t *testing.T) {
	repo := openRepo(t)
	m := modeltest.Model(t, 200, 6)
	rec := WithRecording(m, repo, "session-1", SourceCLI, nil)

	ev, err := rec.Evaluate(0.4)
	require.NoError(t, err)
	p, err := rec.Predict(modeltest.Case(), 0.5)
	require.NoError(t, err)

	evals, err := repo.QueryEvaluations(context.Background(), store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, evals, 1)
	assert.Equal(t, "session-1", evals[0].SessionID)
	assert.Equal(t, SourceCLI, evals[0].Source)
	assert.Equal(t, ev.Confusion.TP(), evals[0].TP)
	assert.Equal(t, 0.4, evals[0].Threshold)

	preds, err := repo.QueryPredictions(context.Background(), store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, preds, 1)
	assert.Equal(t, p.Probability, preds[0].Probability)

	var c model.Case
	require.NoError(t, json.Unmarshal(preds[0].Case, &c))
	assert.Equal(t, modeltest.Case(), c)
}

func TestRecorder_SkipsFailedCalls(t *testing.T) {
	repo := openRepo(t)
	rec := WithRecording(modeltest.Model(t, 200, 6), repo, "s", SourceTUI, nil)

	_, err := rec.Evaluate(-1)
	require.Error(t, err)
	bad := modeltest.Case()
	bad.Gender = "Unknown"
	_, err = rec.Predict(bad, 0.5)
	require.Error(t, err)

	entries, err := Recent(context.Background(), repo, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecorder_StoreFailureIsWarning(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	rec := WithRecording(modeltest.Model(t, 200, 6), failingRepo{}, "s", SourceHTTP, zap.New(core))

	_, err := rec.Evaluate(0.5)
	assert.NoError(t, err)
	_, err = rec.Predict(modeltest.Case(), 0.5)
	assert.NoError(t, err)

	assert.Equal(t, 2, logs.Len())
	assert.Equal(t, "failed to record evaluation event", logs.All()[0].Message)
}

func TestRecent_MergesNewestFirst(t *testing.T) {
	repo := openRepo(t)
	rec := WithRecording(modeltest.Model(t, 200, 6), repo, "s", SourceCLI, nil)

	_, err := rec.Evaluate(0.3)
	require.NoError(t, err)
	_, err = rec.Predict(modeltest.Case(), 0.5)
	require.NoError(t, err)
	_, err = rec.Evaluate(0.6)
	require.NoError(t, err)

	entries, err := Recent(context.Background(), repo, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{KindEvaluation, KindPrediction, KindEvaluation},
		[]string{entries[0].Kind, entries[1].Kind, entries[2].Kind})
	assert.Equal(t, int64(3), entries[0].Sequence())
	assert.Equal(t, 0.6, entries[0].Evaluation.Threshold)

	limited, err := Recent(context.Background(), repo, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, int64(2), limited[1].Sequence())
}

func TestNewSessionID(t *testing.T) {
	a, b := NewSessionID(), NewSessionID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestEntryString(t *testing.T) {
	sens := 0.75
	ev := Entry{Kind: KindEvaluation, Evaluation: &store.EvaluationEvent{
		EventMeta:   store.EventMeta{Sequence: 7, Threshold: 0.45, Source: SourceHTTP},
		Accuracy:    0.8,
		Sensitivity: &sens,
	}}
	line := ev.String()
	assert.Contains(t, line, "#7")
	assert.Contains(t, line, "evaluate  t=0.45  acc 0.800  sens 0.750  spec N/A  [http]")

	p := Entry{Kind: KindPrediction, Prediction: &store.PredictionEvent{
		EventMeta:   store.EventMeta{Sequence: 8, Threshold: 0.5, Source: SourceTUI},
		Probability: 0.7342,
		Class:       1,
	}}
	assert.Contains(t, p.String(), "predict   t=0.50  p=0.734  Low happiness  [tui]")

	assert.Equal(t, "", Entry{}.String())
}
