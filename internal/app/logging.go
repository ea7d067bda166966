// Package app composes the grid core into a running terminal application.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dshills/gridcore/internal/config"
)

// LoggerConfig configures the logger.
type LoggerConfig struct {
	// Level is the minimum level to output.
	Level slog.Level
	// Format is "text" or "json". Empty means text.
	Format string
	// Output is where logs are written. Defaults to os.Stderr.
	Output io.Writer
}

// DefaultLoggerConfig returns the default logger configuration.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:  slog.LevelInfo,
		Format: "text",
		Output: os.Stderr,
	}
}

// NewLogger creates a structured logger. The "error" attribute key is
// shortened to "err" in every format.
func NewLogger(cfg LoggerConfig) *slog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level: cfg.Level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		h = slog.NewTextHandler(cfg.Output, opts)
	}
	return slog.New(h)
}

// NopLogger returns a logger that discards everything.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WithComponent returns a logger tagging every record with component.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NopLogger()
	}
	return logger.With("component", component)
}

// OpenLogger builds the logger described by cfg. Logs go to cfg.File when
// set; otherwise to fallback, and are discarded when fallback is nil. The
// returned closer releases the log file and is never nil.
func OpenLogger(cfg config.LogConfig, fallback io.Writer) (*slog.Logger, io.Closer, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, nil, err
	}

	out := fallback
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		out, closer = f, f
	}
	if out == nil {
		out = io.Discard
	}

	return NewLogger(LoggerConfig{Level: level, Format: cfg.Format, Output: out}), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
