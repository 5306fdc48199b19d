package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates a console slog.Logger with provided level string.
func New(level string) *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: levelFromString(level),
	})
	return slog.New(handler)
}

// NewWithFile behaves like New but additionally appends every record to the
// file at path, so long-running cycles keep a log that survives the terminal.
// On open failure it falls back to stdout only.
func NewWithFile(level, path string) (*slog.Logger, func() error) {
	if path == "" {
		return New(level), func() error { return nil }
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		logger := New(level)
		logger.Warn("cannot open log file, logging to stdout only", "path", path, "error", err)
		return logger, func() error { return nil }
	}

	handler := slog.NewTextHandler(io.MultiWriter(os.Stdout, f), &slog.HandlerOptions{
		Level: levelFromString(level),
	})
	return slog.New(handler), f.Close
}

func levelFromString(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "info":
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
