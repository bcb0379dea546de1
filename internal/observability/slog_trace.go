package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

const (
	logKeyTraceID = "trace_id"
	logKeySpanID  = "span_id"
	logKeySampled = "trace_sampled"
)

// TraceHandler stamps trace_id, span_id and trace_sampled on records
// logged with a context that carries a valid span.
type TraceHandler struct {
	next slog.Handler
}

func NewTraceHandler(next slog.Handler) *TraceHandler {
	return &TraceHandler{next: next}
}

func (h *TraceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *TraceHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs := spanAttrs(ctx); attrs != nil {
		r.AddAttrs(attrs...)
	}

	return h.next.Handle(ctx, r)
}

func (h *TraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewTraceHandler(h.next.WithAttrs(attrs))
}

func (h *TraceHandler) WithGroup(name string) slog.Handler {
	return NewTraceHandler(h.next.WithGroup(name))
}

func spanAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}

	sc := trace.SpanContextFromContext(ctx)

	if !sc.IsValid() {
		return nil
	}

	return []slog.Attr{
		slog.String(logKeyTraceID, sc.TraceID().String()),
		slog.String(logKeySpanID, sc.SpanID().String()),
		slog.Bool(logKeySampled, sc.IsSampled()),
	}
}
