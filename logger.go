package eratosthenes

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with consistent field names for sieve operations.
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

// NewJSONLogger creates a Logger that outputs JSON-formatted logs at the
// given minimum level.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that outputs human-readable text logs at
// the given minimum level.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{Logger: slog.New(handler)}
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// WithBound adds the sieve bound to the logger.
func (l *Logger) WithBound(n uint64) *Logger {
	return &Logger{Logger: l.Logger.With("bound", n)}
}

// LogSieve logs one sieve run.
func (l *Logger) LogSieve(ctx context.Context, op string, n, primes uint64, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "sieve failed",
			"op", op,
			"bound", n,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "sieve completed",
		"op", op,
		"bound", n,
		"primes", primes,
		"elapsed", elapsed,
	)
}

// LogSnapshot logs a snapshot write or load.
func (l *Logger) LogSnapshot(ctx context.Context, op string, primes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"op", op,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "snapshot completed",
		"op", op,
		"primes", primes,
	)
}
