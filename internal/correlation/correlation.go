// Package correlation binds per-request correlation metadata to the current
// execution scope and bridges it into structured logging. The binding is a
// context.Context value, so isolation between concurrent requests and
// restoration after nested scopes fall out of context immutability.
package correlation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Context is the correlation metadata for one logical request. It is a plain
// value; distinct requests never share an instance. CorrelationID and
// TenantID are required, the rest are optional.
type Context struct {
	CorrelationID string
	TenantID      string
	UserID        string
	RequestID     string
	SpanID        string
	TraceID       string
}

// New creates a correlation context with the required fields set.
func New(correlationID, tenantID string) Context {
	return Context{CorrelationID: correlationID, TenantID: tenantID}
}

// NewID mints a fresh correlation id.
func NewID() string {
	return uuid.NewString()
}

// IsZero reports whether the context carries no identifying field at all.
func (c Context) IsZero() bool {
	return c == Context{}
}

// NilContextError reports an attempt to bind an empty correlation context.
// It signals a programming error at the call site, not a request problem.
type NilContextError struct {
	Op string
}

func (e *NilContextError) Error() string {
	return fmt.Sprintf("%s: refusing to bind empty correlation context", e.Op)
}

type contextKey struct{}

// With binds c as the current correlation context of ctx. Binding an empty
// context is rejected with a NilContextError; the original ctx is returned
// unchanged in that case.
func With(ctx context.Context, c Context) (context.Context, error) {
	if c.IsZero() {
		return ctx, &NilContextError{Op: "correlation.With"}
	}
	return context.WithValue(ctx, contextKey{}, c), nil
}

// From returns the correlation context bound to ctx, if any. It never
// panics; an unbound ctx reports ok=false.
func From(ctx context.Context) (Context, bool) {
	c, ok := ctx.Value(contextKey{}).(Context)
	return c, ok
}

// Clear returns a ctx with no correlation context bound, shadowing any
// binding made further up the chain.
func Clear(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, nil)
}

// Run binds c for the duration of fn and hands fn the bound context. The
// caller's ctx is untouched, so whatever was bound before the call is still
// bound after it returns, whether fn succeeds, fails, or panics.
func Run(ctx context.Context, c Context, fn func(context.Context) error) error {
	bound, err := With(ctx, c)
	if err != nil {
		return err
	}
	return fn(bound)
}
