package vex

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with vex-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithName adds a map name field, useful when several maps share a handler.
func (l *Logger) WithName(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("map", name),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogAllocationFailure logs a refused allocation.
func (l *Logger) LogAllocationFailure(ctx context.Context, op string, used, limit int64, err error) {
	l.WarnContext(ctx, "allocation refused",
		"op", op,
		"used_bytes", used,
		"limit_bytes", limit,
		"error", err,
	)
}

// LogRelease logs the release of a map.
func (l *Logger) LogRelease(ctx context.Context, entries int, freed int64) {
	l.DebugContext(ctx, "map released",
		"entries", entries,
		"freed_bytes", freed,
	)
}

// LogSnapshot logs a snapshot write.
func (l *Logger) LogSnapshot(ctx context.Context, entries int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"entries_written", entries,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot written",
			"entries", entries,
		)
	}
}

// LogRestore logs a snapshot read.
func (l *Logger) LogRestore(ctx context.Context, entries int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "restore failed",
			"entries_restored", entries,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "restore completed",
			"entries", entries,
		)
	}
}
