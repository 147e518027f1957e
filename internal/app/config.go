package app

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/gridbind/internal/ctxlog"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// RunConfigPaths lists run configuration files or directories, applied
	// in order.
	RunConfigPaths []string
	// ManifestsPath optionally points at HCL schema manifests the registered
	// units must match.
	ManifestsPath string

	LogFormat string
	LogLevel  string
	// WorkerCount configures the default executor when the run
	// configuration does not; zero keeps the executor default.
	WorkerCount int
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if _, err := ctxlog.ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LogFormat must be 'text' or 'json', got %q", cfg.LogFormat)
	}
	if cfg.WorkerCount < 0 {
		return nil, errors.New("WorkerCount cannot be negative")
	}
	return &cfg, nil
}
