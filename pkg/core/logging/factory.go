// ============================================================================
// kontrakt - Contract Development Console
// ============================================================================
//
// Package:     logging
// Description: Factory functions for creating loggers
// Created:     2026-10-12
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// EnvLogLevel overrides the configured level when set
const EnvLogLevel = "KONTRAKT_LOG_LEVEL"

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Component name, added as the "component" field
	Name string

	// Log level (debug, info, warn, error, disabled)
	Level string

	// Output format: "text" (console writer) or "json"
	Format string

	// Destination, defaults to stderr so log lines never mix with REPL results
	Output io.Writer

	// NoColor disables ANSI colors in text format
	NoColor bool
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(name string) LoggerConfig {
	return LoggerConfig{
		Name:   name,
		Level:  "warn",
		Format: "text",
	}
}

// NewLogger creates a logger from cfg. EnvLogLevel takes precedence over cfg.Level.
func NewLogger(cfg LoggerConfig) *Logger {
	level, _ := ParseLevel(cfg.Level)
	if lvl, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		level = lvl
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Format != "json" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
			NoColor:    cfg.NoColor,
		}
	}

	zl := zerolog.New(output).
		Level(level.zerolog()).
		With().
		Timestamp().
		Str("component", cfg.Name).
		Logger()

	return &Logger{zl: zl, name: cfg.Name}
}

// New creates a logger with the default configuration
func New(name string) *Logger {
	return NewLogger(DefaultLoggerConfig(name))
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop(), name: "nop"}
}
