// Package config resolves ledger settings from defaults, a YAML file, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roach88/blockaviate/internal/store"
)

// Backend names.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
)

// Environment variable names.
const (
	EnvBackend     = "BLOCKAVIATE_BACKEND"
	EnvPath        = "BLOCKAVIATE_PATH"
	EnvLogLevel    = "BLOCKAVIATE_LOG_LEVEL"
	EnvLogFormat   = "BLOCKAVIATE_LOG_FORMAT"
	EnvIngestEvery = "BLOCKAVIATE_INGEST_EVERY"
)

// DefaultPath is the ledger file used when nothing else is configured.
const DefaultPath = "curChain.json"

// Config holds resolved ledger settings.
type Config struct {
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	IngestEvery int    `yaml:"ingest_every"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Backend:     BackendFile,
		Path:        DefaultPath,
		LogLevel:    "info",
		LogFormat:   "text",
		IngestEvery: 10,
	}
}

// EnvSource looks up environment variables.
type EnvSource interface {
	Lookup(key string) (string, bool)
}

// EnvMap is an EnvSource backed by a map, for tests.
type EnvMap map[string]string

func (e EnvMap) Lookup(key string) (string, bool) {
	value, ok := e[key]
	return value, ok
}

type osEnv struct{}

func (osEnv) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// FromEnviron returns the process environment as an EnvSource.
func FromEnviron() EnvSource {
	return osEnv{}
}

// LoadDotEnv loads .env from the working directory into the process
// environment if it exists. Variables already set are not overridden.
func LoadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(".env")
}

// Load resolves settings from defaults, the YAML file at path (if non-empty)
// and env, then validates the result.
func Load(path string, env EnvSource) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if env != nil {
		if err := applyEnv(&cfg, env); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decodeYAML overlays data onto cfg. Unknown keys are an error.
func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config, env EnvSource) error {
	if raw, ok := env.Lookup(EnvBackend); ok && strings.TrimSpace(raw) != "" {
		cfg.Backend = strings.TrimSpace(raw)
	}
	if raw, ok := env.Lookup(EnvPath); ok && strings.TrimSpace(raw) != "" {
		cfg.Path = strings.TrimSpace(raw)
	}
	if raw, ok := env.Lookup(EnvLogLevel); ok && strings.TrimSpace(raw) != "" {
		cfg.LogLevel = strings.TrimSpace(raw)
	}
	if raw, ok := env.Lookup(EnvLogFormat); ok && strings.TrimSpace(raw) != "" {
		cfg.LogFormat = strings.TrimSpace(raw)
	}
	if raw, ok := env.Lookup(EnvIngestEvery); ok && strings.TrimSpace(raw) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvIngestEvery, err)
		}
		cfg.IngestEvery = n
	}
	return nil
}

// Validate checks that every setting has a usable value.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendSQLite, BackendBolt:
	default:
		return fmt.Errorf("invalid backend %q: must be one of %q, %q, %q", c.Backend, BackendFile, BackendSQLite, BackendBolt)
	}
	if strings.TrimSpace(c.Path) == "" {
		return errors.New("path is required")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", c.LogFormat)
	}
	if c.IngestEvery < 1 {
		return fmt.Errorf("invalid ingest_every %d: must be >= 1", c.IngestEvery)
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: must be debug, info, warn or error", raw)
	}
}

// NewLogger builds a logger writing to w in the configured format.
// verbose forces debug level.
func (c Config) NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level, _ := ParseLevel(c.LogLevel)
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if c.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// OpenBackend constructs the configured storage backend.
func (c Config) OpenBackend(ctx context.Context) (store.Backend, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch c.Backend {
	case BackendSQLite:
		return store.OpenSQLite(c.Path)
	case BackendBolt:
		return store.OpenBolt(c.Path)
	default:
		return store.NewFileLog(c.Path), nil
	}
}
