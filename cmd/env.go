package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/wellstat/internal/config"
	"github.com/abhisek/wellstat/internal/dataset"
	"github.com/abhisek/wellstat/internal/glm"
	"github.com/abhisek/wellstat/internal/history"
	"github.com/abhisek/wellstat/internal/logging"
	"github.com/abhisek/wellstat/internal/model"
	"github.com/abhisek/wellstat/internal/store"
	"github.com/abhisek/wellstat/internal/telemetry"
)

// errHistoryDisabled is returned by commands that need the event store.
var errHistoryDisabled = errors.New("history is disabled; pass --db or set WELLSTAT_DB")

// logMode selects where a command's logs may go.
type logMode int

const (
	logStderr logMode = iota
	// logQuiet never writes to the terminal; used by the TUI.
	logQuiet
)

// env is what every model-backed command needs: configuration, a logger,
// the trained model and, when enabled, the history store.
type env struct {
	cfg     *config.Config
	logger  *zap.Logger
	model   *model.Model
	store   *store.Store
	session string
}

// resolveConfig loads the config and applies the persistent flags on top:
// flag > environment > config file > defaults.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config: %w", err)
	}

	if v, _ := cmd.Flags().GetString("data"); v != "" {
		cfg.Data.Path = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.History.Enabled = true
		cfg.History.Path = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v, _ := cmd.Flags().GetString("log-file"); v != "" {
		cfg.Log.File = v
	}
	return cfg, cfg.Validate()
}

// resolveDBPath returns the history database path: the configured path
// (flag or WELLSTAT_DB end up there) or the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if p := cfg.History.Path; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// setup loads the data, trains the model and opens the history store.
func setup(cmd *cobra.Command, mode logMode) (*env, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}

	var logger *zap.Logger
	if mode == logQuiet {
		logger, err = logging.ForTUI(cfg.Log.Level, cfg.Log.File)
	} else {
		logger, err = logging.New(cfg.Log.Level, cfg.Log.File)
	}
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, logger: logger, session: history.NewSessionID()}
	if err := e.train(); err != nil {
		_ = logger.Sync()
		return nil, err
	}

	if cfg.History.Enabled {
		dbPath, err := resolveDBPath(cfg)
		if err != nil {
			_ = logger.Sync()
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			_ = logger.Sync()
			return nil, fmt.Errorf("open store: %w", err)
		}
		e.store = st
		logger.Info("history enabled", zap.String("path", dbPath), zap.String("session", e.session))
	}
	return e, nil
}

func (e *env) train() error {
	ds, err := dataset.Load(e.cfg.Data.Path)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	e.logger.Info("dataset loaded",
		zap.String("path", e.cfg.Data.Path),
		zap.Int("rows", ds.Stats.RawRows),
		zap.Int("retained", ds.Stats.Retained),
		zap.Int("dropped", ds.Stats.Dropped),
		zap.Any("dropped_by_field", ds.Stats.DroppedByField),
		zap.Strings("gender_levels", ds.Gender.Levels()),
		zap.Strings("platform_levels", ds.Platform.Levels()),
	)
	telemetry.RecordRows(ds.Stats)

	m, err := model.Train(ds, glm.Options{
		MaxIterations: e.cfg.Model.MaxIterations,
		Tolerance:     e.cfg.Model.Tolerance,
	})
	if err != nil {
		return fmt.Errorf("train model: %w", err)
	}

	sum := m.Summary()
	telemetry.RecordFit(sum)
	fields := []zap.Field{
		zap.Int("iterations", sum.Iterations),
		zap.Bool("converged", sum.Converged),
		zap.Float64("aic", sum.AIC),
	}
	if sum.Converged {
		e.logger.Info("model fitted", fields...)
	} else {
		e.logger.Warn("model did not converge; estimates may be unreliable", fields...)
	}

	e.model = m
	return nil
}

// events returns the history repository, or nil when history is disabled.
func (e *env) events() store.EventRepo {
	if e.store == nil {
		return nil
	}
	return e.store.EventRepo()
}

// scorer wraps the model with history recording (when enabled) and metrics.
func (e *env) scorer(source string) model.Scorer {
	var s model.Scorer = e.model
	if repo := e.events(); repo != nil {
		s = history.WithRecording(s, repo, e.session, source, e.logger)
	}
	return telemetry.Instrument(s)
}

func (e *env) Close() {
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.logger.Warn("failed to close store", zap.Error(err))
		}
	}
	_ = e.logger.Sync()
}
