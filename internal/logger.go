package internal

import (
	"io"
	"log/slog"
)

// NewLogger builds the process logger. Development gets a human-readable text
// handler; every other environment emits JSON for log aggregation. An
// unrecognized level falls back to info rather than failing startup.
func NewLogger(w io.Writer, env string, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if env == "development" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
