package correlation

import (
	"context"
	"log/slog"
)

// Structured-logging keys mirrored from the bound correlation context.
const (
	LogKeyCorrelationID = "correlation_id"
	LogKeyTenantID      = "tenant_id"
	LogKeyUserID        = "user_id"
	LogKeyRequestID     = "request_id"
	LogKeySpanID        = "span_id"
	LogKeyTraceID       = "trace_id"
)

// LogHandler wraps an slog.Handler and tags every record logged with a ctx
// that carries a bound correlation context. Keys for absent optional fields
// are omitted entirely rather than written as empty strings.
type LogHandler struct {
	inner slog.Handler
}

// NewLogHandler wraps inner with correlation tagging.
func NewLogHandler(inner slog.Handler) *LogHandler {
	return &LogHandler{inner: inner}
}

func (h *LogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *LogHandler) Handle(ctx context.Context, r slog.Record) error {
	if c, ok := From(ctx); ok {
		r = r.Clone()
		r.AddAttrs(c.logAttrs()...)
	}
	return h.inner.Handle(ctx, r)
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *LogHandler) WithGroup(name string) slog.Handler {
	return &LogHandler{inner: h.inner.WithGroup(name)}
}

func (c Context) logAttrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, 6)
	add := func(key, value string) {
		if value != "" {
			attrs = append(attrs, slog.String(key, value))
		}
	}
	add(LogKeyCorrelationID, c.CorrelationID)
	add(LogKeyTenantID, c.TenantID)
	add(LogKeyUserID, c.UserID)
	add(LogKeyRequestID, c.RequestID)
	add(LogKeySpanID, c.SpanID)
	add(LogKeyTraceID, c.TraceID)
	return attrs
}
