// Package observability provides structured logging for the pipeline.
package observability

import (
	"context"
	"log/slog"
	"os"
)

type runIDKey struct{}

// WithRunID attaches a pipeline run identifier to the context so every
// log line from that run can be correlated.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// InitLogger creates a structured JSON logger on stderr. With verbose
// set, debug records are included.
func InitLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := &runHandler{
		inner: slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}),
	}
	return slog.New(handler)
}

// runHandler wraps a slog.Handler to inject run_id from context.
type runHandler struct {
	inner slog.Handler
}

func (h *runHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *runHandler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := ctx.Value(runIDKey{}).(string); ok && id != "" {
		r.AddAttrs(slog.String("run_id", id))
	}
	return h.inner.Handle(ctx, r)
}

func (h *runHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &runHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *runHandler) WithGroup(name string) slog.Handler {
	return &runHandler{inner: h.inner.WithGroup(name)}
}
