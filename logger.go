package dknn

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with classifier-specific fields.
// Field names are consistent across build, query and snapshot operations.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses a text handler to stderr at info level.
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

// NewJSONLogger creates a Logger that writes JSON to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that writes human-readable text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// WithLayer adds a layer field.
func (l *Logger) WithLayer(layer string) *Logger {
	return &Logger{Logger: l.Logger.With("layer", layer)}
}

// WithK adds a k (neighbor count) field.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{Logger: l.Logger.With("k", k)}
}

// WithCount adds a count field.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{Logger: l.Logger.With("count", count)}
}

// LogBuild logs the outcome of an index build phase.
func (l *Logger) LogBuild(ctx context.Context, layers, samples int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index build failed",
			"layers", layers,
			"samples", samples,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "index build completed",
		"layers", layers,
		"samples", samples,
		"elapsed", elapsed,
	)
}

// LogCalibrate logs the outcome of the calibration phase.
func (l *Logger) LogCalibrate(ctx context.Context, samples int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "calibration failed",
			"samples", samples,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "calibration completed",
		"samples", samples,
		"elapsed", elapsed,
	)
}

// LogClassify logs a classification batch.
func (l *Logger) LogClassify(ctx context.Context, batch, layers int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "classify failed",
			"batch", batch,
			"layers", layers,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "classify completed",
		"batch", batch,
		"layers", layers,
	)
}

// LogSnapshot logs a snapshot save or load.
func (l *Logger) LogSnapshot(ctx context.Context, op, target string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot "+op+" failed",
			"target", target,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "snapshot "+op+" completed",
		"target", target,
	)
}
