// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package observability builds the structured logger and the Prometheus
// metrics a pipeline run reports through.
package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// NewLogger creates a zerolog logger from cfg. Unknown levels fall back to
// info and unknown outputs to stderr, so the report on stdout stays clean.
func NewLogger(cfg types.LoggingConfig) zerolog.Logger {
	var out io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stdout":
		out = os.Stdout
	default:
		out = os.Stderr
	}
	return newLogger(cfg, out)
}

func newLogger(cfg types.LoggingConfig, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	switch strings.ToLower(cfg.Format) {
	case "console", "pretty":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	return zerolog.New(out).With().Timestamp().Logger().Level(ParseLevel(cfg.Level))
}

// ParseLevel converts a level name to a zerolog.Level.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithQuery adds the run and query fields every stage log line carries.
func WithQuery(logger zerolog.Logger, runID, query string) zerolog.Logger {
	return logger.With().Str("run_id", runID).Str("query", query).Logger()
}

// WithPaper adds paper-scoped fields.
func WithPaper(logger zerolog.Logger, paperID string) zerolog.Logger {
	return logger.With().Str("paper_id", paperID).Logger()
}
