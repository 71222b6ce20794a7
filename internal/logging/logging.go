package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const componentKey = "component"

// New creates the process logger on stdout. format selects the handler:
// "json" for machine-readable output, anything else for console text.
func New(level, format string) *slog.Logger {
	return NewWithWriter(os.Stdout, level, format)
}

// NewWithWriter is New with an explicit sink.
func NewWithWriter(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelFromString(level)}

	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Component tags a child logger with the pipeline component it belongs to,
// so every adapter logs under a common attribute key.
func Component(logger *slog.Logger, name string) *slog.Logger {
	return logger.With(componentKey, name)
}

func levelFromString(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
