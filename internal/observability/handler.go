package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

type attrsKey struct{}

// WithAttrs returns a context whose log records carry attrs in addition to
// those already attached. Later values for a key shadow earlier ones.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	prev, _ := ctx.Value(attrsKey{}).([]slog.Attr)
	merged := make([]slog.Attr, 0, len(prev)+len(attrs))
	for _, a := range prev {
		if !hasKey(attrs, a.Key) {
			merged = append(merged, a)
		}
	}
	merged = append(merged, attrs...)
	return context.WithValue(ctx, attrsKey{}, merged)
}

func hasKey(attrs []slog.Attr, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

// runContextHandler adds the attributes attached with WithAttrs and, when a
// span is active, trace_id and span_id.
type runContextHandler struct {
	handler slog.Handler
}

func newRunContextHandler(handler slog.Handler) *runContextHandler {
	return &runContextHandler{handler: handler}
}

func (h *runContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *runContextHandler) Handle(ctx context.Context, record slog.Record) error {
	if attrs, ok := ctx.Value(attrsKey{}).([]slog.Attr); ok {
		record.AddAttrs(attrs...)
	}

	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		record.AddAttrs(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}

	return h.handler.Handle(ctx, record)
}

func (h *runContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &runContextHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *runContextHandler) WithGroup(name string) slog.Handler {
	return &runContextHandler{handler: h.handler.WithGroup(name)}
}
