package propagation

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"rfq-platform/internal/correlation"
	"rfq-platform/internal/domain"
)

// Inject attaches the bound authorization context to the outgoing gRPC
// metadata of ctx: the encoded payload plus plain correlation and tenant id
// headers. A ctx without a bound authorization context yields a
// MissingContextError and is returned unchanged.
func Inject(ctx context.Context) (context.Context, error) {
	ac, ok := domain.AuthorizationFromContext(ctx)
	if !ok {
		return ctx, domain.ErrMissingContext(HeaderAuthContext)
	}
	encoded, err := Encode(ac)
	if err != nil {
		return ctx, err
	}
	md := metadata.Pairs(
		HeaderAuthContext, encoded,
		HeaderCorrelationID, ac.CorrelationID,
		HeaderTenantID, ac.Tenant.TenantID,
	)
	if existing, ok := metadata.FromOutgoingContext(ctx); ok {
		md = metadata.Join(existing, md)
	}
	return metadata.NewOutgoingContext(ctx, md), nil
}

// Extract reads the propagated authorization context from the incoming gRPC
// metadata of ctx and returns a derived ctx carrying both the rebuilt
// authorization context and a correlation context. The absence of the
// header is reported as a MissingContextError.
func Extract(ctx context.Context) (context.Context, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx, domain.ErrMissingContext(HeaderAuthContext)
	}
	values := md.Get(HeaderAuthContext)
	if len(values) == 0 {
		return ctx, domain.ErrMissingContext(HeaderAuthContext)
	}
	p, err := Decode(values[0])
	if err != nil {
		return ctx, err
	}

	ac := p.AuthorizationContext()
	ac.Entitlements = domain.DefaultEntitlements()
	ctx = domain.WithAuthorization(ctx, ac)

	cc := correlation.Context{
		CorrelationID: p.CorrelationID,
		TenantID:      p.TenantID,
		UserID:        p.UserID,
	}
	if cc.CorrelationID == "" {
		cc.CorrelationID = correlation.NewID()
	}
	bound, err := correlation.With(ctx, cc)
	if err != nil {
		return ctx, err
	}
	return bound, nil
}

// UnaryClientInterceptor injects the bound authorization context into every
// outgoing unary call. Calls issued without a bound context pass through
// unmodified so unauthenticated RPCs (health probes and the like) still work.
func UnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		out, err := Inject(ctx)
		if err != nil {
			var missing *domain.MissingContextError
			if !errors.As(err, &missing) {
				return err
			}
			out = ctx
		}
		return invoker(out, method, req, reply, cc, opts...)
	}
}

// UnaryServerInterceptor extracts the propagated authorization context for
// every incoming unary call, rejecting calls without one as Unauthenticated.
func UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		in, err := Extract(ctx)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		return handler(in, req)
	}
}
