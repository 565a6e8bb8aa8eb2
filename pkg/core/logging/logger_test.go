package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LevelDisabled, "disabled"},
		{Level(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("Level.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		ok       bool
	}{
		{"debug", LevelDebug, true},
		{"TRACE", LevelDebug, true},
		{" info ", LevelInfo, true},
		{"warning", LevelWarn, true},
		{"error", LevelError, true},
		{"off", LevelDisabled, true},
		{"", LevelInfo, false},
		{"loud", LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, ok := ParseLevel(tt.input)
			if level != tt.expected || ok != tt.ok {
				t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, %v)", tt.input, level, ok, tt.expected, tt.ok)
			}
		})
	}
}

func newJSONLogger(buf *bytes.Buffer, level string) *Logger {
	return NewLogger(LoggerConfig{Name: "test", Level: level, Format: "json", Output: buf})
}

func TestLogger_JSONFields(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, "info")

	logger.Info("provisioned", "count", 2, "err", errors.New("boom"), 42, "ignored")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if entry["message"] != "provisioned" {
		t.Errorf("message = %v, want provisioned", entry["message"])
	}
	if entry["component"] != "test" {
		t.Errorf("component = %v, want test", entry["component"])
	}
	if entry["count"] != float64(2) {
		t.Errorf("count = %v, want 2", entry["count"])
	}
	if entry["err"] != "boom" {
		t.Errorf("err = %v, want boom", entry["err"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, "warn")

	logger.Debug("hidden")
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output below warn, got %q", buf.String())
	}

	logger.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn output, got %q", buf.String())
	}
}

func TestLogger_EnvOverride(t *testing.T) {
	t.Setenv(EnvLogLevel, "debug")
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, "error")

	logger.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("env level should win, got %q", buf.String())
	}
}

func TestLogger_With(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, "info").With("network", "development")

	logger.Info("ready")
	if !strings.Contains(buf.String(), `"network":"development"`) {
		t.Errorf("With field missing: %q", buf.String())
	}
	if logger.Name() != "test" {
		t.Errorf("Name() = %q, want test", logger.Name())
	}
}

func TestNop(t *testing.T) {
	logger := Nop()
	logger.Error("nothing happens", "k", "v")
	if logger.WithLevel(LevelDebug) == nil {
		t.Error("WithLevel should return a logger")
	}
}
