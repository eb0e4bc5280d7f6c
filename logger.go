package ocrflow

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with recognition-specific helpers so log fields
// stay consistent across the codebase.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler. If handler is nil, a
// text handler to stderr at info level is used.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))}
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// LogTask logs one task outcome.
func (l *Logger) LogTask(ctx context.Context, name string, out Outcome) {
	if out.Success {
		l.DebugContext(ctx, "task completed",
			"task", name,
			"engine", out.EngineUsed,
			"duration", out.Duration,
		)
		return
	}
	l.WarnContext(ctx, "task failed",
		"task", name,
		"kind", out.ErrorKind.String(),
		"error", out.ErrorMessage,
		"duration", out.Duration,
	)
}

// LogBatch logs a completed batch.
func (l *Logger) LogBatch(ctx context.Context, requested, executed, failed int) {
	if failed > 0 {
		l.WarnContext(ctx, "batch completed with failures",
			"requested", requested,
			"executed", executed,
			"failed", failed,
		)
		return
	}
	l.InfoContext(ctx, "batch completed",
		"requested", requested,
		"executed", executed,
	)
}

// LogTruncation logs that a batch exceeded the configured maximum and was
// cut down.
func (l *Logger) LogTruncation(ctx context.Context, requested, kept int) {
	l.WarnContext(ctx, "batch truncated",
		"requested", requested,
		"kept", kept,
	)
}
