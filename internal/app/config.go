package app

import (
	"errors"
	"fmt"

	"github.com/vk/godi/internal/report"
	"github.com/vk/godi/internal/tracing"
)

// DefaultRepositoryPath is where the .direp file is written.
const DefaultRepositoryPath = "./.direp"

// Config holds everything an App run needs.
type Config struct {
	Inputs    []string // files or directories; "." when empty
	Recursive bool
	Manifest  string // HCL load plan, replaces Inputs

	WriteDefinitions bool // <file>.didef next to each library
	WriteRepository  bool
	RepositoryPath   string
	Format           string

	PublishURL       string
	PublishNamespace string

	WatchDir        string
	WatchFilter     string
	HealthcheckPort int

	LogFormat string
	LogLevel  string
	Trace     string
}

// NewConfig validates cfg and fills defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Inputs) == 0 {
		cfg.Inputs = []string{"."}
	}
	if cfg.RepositoryPath == "" {
		cfg.RepositoryPath = DefaultRepositoryPath
	}
	if cfg.Format == "" {
		cfg.Format = string(report.FormatText)
	}
	if _, err := report.ParseFormat(cfg.Format); err != nil {
		return nil, err
	}

	switch cfg.LogFormat {
	case "", "text", "json":
	default:
		return nil, errors.New("invalid log-format: must be 'text' or 'json'")
	}
	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, errors.New("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}
	switch cfg.Trace {
	case "":
		cfg.Trace = tracing.ExporterNone
	case tracing.ExporterNone, tracing.ExporterStdout:
	default:
		return nil, fmt.Errorf("invalid trace exporter %q: must be 'none' or 'stdout'", cfg.Trace)
	}
	if cfg.HealthcheckPort < 0 {
		return nil, errors.New("healthcheck port cannot be negative")
	}

	return &cfg, nil
}
