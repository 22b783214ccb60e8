// Package config loads wellstat settings from an optional YAML file and the
// environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultDataPath is used when neither flag, environment, nor config file
// names the survey file.
const DefaultDataPath = "data/Mental_Health_and_Social_Media_Balance_Dataset.csv"

// ErrInvalidConfig wraps validation failures.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds application configuration.
type Config struct {
	Data      DataConfig      `yaml:"data"`
	Model     ModelConfig     `yaml:"model"`
	Threshold ThresholdConfig `yaml:"threshold"`
	Server    ServerConfig    `yaml:"server"`
	History   HistoryConfig   `yaml:"history"`
	Log       LogConfig       `yaml:"log"`
}

type DataConfig struct {
	Path string `yaml:"path"`
}

// ModelConfig bounds the IRLS fit.
type ModelConfig struct {
	MaxIterations int     `yaml:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance"`
}

// ThresholdConfig bounds the interactive threshold controls.
type ThresholdConfig struct {
	Default float64 `yaml:"default"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Step    float64 `yaml:"step"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

// HistoryConfig controls the opt-in event store.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // empty = default XDG path
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Data:      DataConfig{Path: DefaultDataPath},
		Model:     ModelConfig{MaxIterations: 25, Tolerance: 1e-8},
		Threshold: ThresholdConfig{Default: 0.5, Min: 0.1, Max: 0.9, Step: 0.05},
		Server:    ServerConfig{Port: "8080"},
		Log:       LogConfig{Level: "info"},
	}
}

// Load reads the YAML file at path over the defaults. Keys absent from the
// file keep their default values; unknown keys are an error.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses YAML from r over the defaults.
func Decode(r io.Reader) (*Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if len(bytes.TrimSpace(raw)) == 0 {
		return cfg, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Resolve loads configuration from the explicit path if given, else from
// WELLSTAT_CONFIG, else from the default location when that file exists.
// Environment overrides are applied last.
func Resolve(explicit string) (*Config, error) {
	path := explicit
	if path == "" {
		path = os.Getenv("WELLSTAT_CONFIG")
	}

	var cfg *Config
	if path != "" {
		c, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = c
	} else {
		c, err := loadDefaultFile()
		if err != nil {
			return nil, err
		}
		cfg = c
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func loadDefaultFile() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// DefaultPath returns $XDG_CONFIG_HOME/wellstat/config.yaml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "wellstat", "config.yaml"), nil
}

// ApplyEnv overlays WELLSTAT_DATA, WELLSTAT_DB and WELLSTAT_PORT. Setting
// WELLSTAT_DB turns history on.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("WELLSTAT_DATA"); v != "" {
		c.Data.Path = v
	}
	if v := os.Getenv("WELLSTAT_DB"); v != "" {
		c.History.Enabled = true
		c.History.Path = v
	}
	if v := os.Getenv("WELLSTAT_PORT"); v != "" {
		if _, err := strconv.ParseUint(v, 10, 16); err != nil {
			return fmt.Errorf("%w: WELLSTAT_PORT %q is not a port number", ErrInvalidConfig, v)
		}
		c.Server.Port = v
	}
	return nil
}

// Validate checks ranges that the rest of the program relies on.
func (c *Config) Validate() error {
	if c.Data.Path == "" {
		return fmt.Errorf("%w: data.path is empty", ErrInvalidConfig)
	}
	if c.Model.MaxIterations < 1 {
		return fmt.Errorf("%w: model.max_iterations must be positive", ErrInvalidConfig)
	}
	if !(c.Model.Tolerance > 0) || math.IsInf(c.Model.Tolerance, 0) {
		return fmt.Errorf("%w: model.tolerance must be positive", ErrInvalidConfig)
	}

	t := c.Threshold
	if !(t.Min > 0 && t.Min < t.Max && t.Max < 1) {
		return fmt.Errorf("%w: threshold bounds must satisfy 0 < min < max < 1, got [%v, %v]", ErrInvalidConfig, t.Min, t.Max)
	}
	if !(t.Step > 0 && t.Step <= t.Max-t.Min) {
		return fmt.Errorf("%w: threshold.step %v must be in (0, max-min]", ErrInvalidConfig, t.Step)
	}
	if t.Default < t.Min || t.Default > t.Max {
		return fmt.Errorf("%w: threshold.default %v is outside [%v, %v]", ErrInvalidConfig, t.Default, t.Min, t.Max)
	}
	if c.Server.Port == "" {
		return fmt.Errorf("%w: server.port is empty", ErrInvalidConfig)
	}
	return nil
}
