// Package tracing tags spans with the correlation metadata bound to the
// current execution scope.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"rfq-platform/internal/correlation"
)

// Span attribute keys for correlation metadata.
const (
	AttrCorrelationID = "platform.correlation_id"
	AttrTenantID      = "platform.tenant_id"
	AttrUserID        = "platform.user_id"
	AttrRequestID     = "platform.request_id"
)

// StartSpan starts a span and tags it with the correlation context bound to
// ctx. When no context is bound the span is started untagged; attributes
// for absent optional fields are omitted.
func StartSpan(ctx context.Context, tracer trace.Tracer, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, name, opts...)
	if c, ok := correlation.From(ctx); ok {
		span.SetAttributes(correlationAttrs(c)...)
	}
	return ctx, span
}

func correlationAttrs(c correlation.Context) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 4)
	add := func(key, value string) {
		if value != "" {
			attrs = append(attrs, attribute.String(key, value))
		}
	}
	add(AttrCorrelationID, c.CorrelationID)
	add(AttrTenantID, c.TenantID)
	add(AttrUserID, c.UserID)
	add(AttrRequestID, c.RequestID)
	return attrs
}
