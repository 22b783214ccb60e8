package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"WELLSTAT_DATA", "WELLSTAT_DB", "WELLSTAT_PORT", "WELLSTAT_CONFIG"} {
		t.Setenv(k, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.5, cfg.Threshold.Default)
	assert.Equal(t, 0.05, cfg.Threshold.Step)
	assert.False(t, cfg.History.Enabled)
}

func TestDecode_PartialOverridesDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(`
data:
  path: /srv/survey.csv
threshold:
  default: 0.35
history:
  enabled: true
`))
	require.NoError(t, err)
	assert.Equal(t, "/srv/survey.csv", cfg.Data.Path)
	assert.Equal(t, 0.35, cfg.Threshold.Default)
	assert.Equal(t, 0.1, cfg.Threshold.Min)
	assert.Equal(t, 25, cfg.Model.MaxIterations)
	assert.True(t, cfg.History.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode(strings.NewReader("threshold: [1, 2"))
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("treshold:\n  default: 0.4\n"))
	assert.Error(t, err, "unknown keys are rejected")

	cfg, err := Decode(strings.NewReader("   \n"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty data path", func(c *Config) { c.Data.Path = "" }},
		{"zero iterations", func(c *Config) { c.Model.MaxIterations = 0 }},
		{"zero tolerance", func(c *Config) { c.Model.Tolerance = 0 }},
		{"min above max", func(c *Config) { c.Threshold.Min, c.Threshold.Max = 0.8, 0.2 }},
		{"max of one", func(c *Config) { c.Threshold.Max = 1 }},
		{"zero step", func(c *Config) { c.Threshold.Step = 0 }},
		{"default outside bounds", func(c *Config) { c.Threshold.Default = 0.95 }},
		{"empty port", func(c *Config) { c.Server.Port = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestResolve_Precedence(t *testing.T) {
	clearEnv(t)

	// No file anywhere: defaults.
	cfg, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, DefaultDataPath, cfg.Data.Path)

	// Default location is picked up when present.
	defPath, err := DefaultPath()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(defPath), 0o755))
	require.NoError(t, os.WriteFile(defPath, []byte("server:\n  port: \"9000\"\n"), 0o644))
	cfg, err = Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Server.Port)

	// An explicit file wins over the default location.
	explicit := filepath.Join(t.TempDir(), "wellstat.yaml")
	require.NoError(t, os.WriteFile(explicit, []byte("data:\n  path: explicit.csv\n"), 0o644))
	cfg, err = Resolve(explicit)
	require.NoError(t, err)
	assert.Equal(t, "explicit.csv", cfg.Data.Path)
	assert.Equal(t, "8080", cfg.Server.Port)

	// Environment wins over files.
	t.Setenv("WELLSTAT_DATA", "env.csv")
	t.Setenv("WELLSTAT_DB", "/tmp/h.db")
	t.Setenv("WELLSTAT_PORT", "7070")
	cfg, err = Resolve(explicit)
	require.NoError(t, err)
	assert.Equal(t, "env.csv", cfg.Data.Path)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, "/tmp/h.db", cfg.History.Path)

	// A missing explicit file is an error.
	_, err = Resolve(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv_BadPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("WELLSTAT_PORT", "http")
	err := Default().ApplyEnv()
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}
