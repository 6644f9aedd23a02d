package slate

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with slate-specific helpers so facade operations
// log consistent field names.
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
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{Logger: slog.New(handler)}
}

// LogStore logs a memory-store upsert.
func (l *Logger) LogStore(ctx context.Context, key string, created bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "store failed", "key", key, "error", err)
		return
	}
	l.DebugContext(ctx, "store completed", "key", key, "created", created)
}

// LogRetrieve logs a point lookup.
func (l *Logger) LogRetrieve(ctx context.Context, key string, found bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "retrieve failed", "key", key, "error", err)
		return
	}
	l.DebugContext(ctx, "retrieve completed", "key", key, "found", found)
}

// LogDelete logs a delete.
func (l *Logger) LogDelete(ctx context.Context, key string, existed bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed", "key", key, "error", err)
		return
	}
	l.DebugContext(ctx, "delete completed", "key", key, "existed", existed)
}

// LogScan logs a prefix or predicate scan.
func (l *Logger) LogScan(ctx context.Context, prefix string, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "scan failed", "prefix", prefix, "error", err)
		return
	}
	l.DebugContext(ctx, "scan completed", "prefix", prefix, "results", results)
}

// LogEventStored logs an event append.
func (l *Logger) LogEventStored(ctx context.Context, id string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "event log failed", "id", id, "error", err)
		return
	}
	l.DebugContext(ctx, "event logged", "id", id)
}
