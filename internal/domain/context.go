package domain

import "context"

type authorizationKey struct{}

// WithAuthorization stores the caller's authorization context in ctx.
func WithAuthorization(ctx context.Context, ac *AuthorizationContext) context.Context {
	return context.WithValue(ctx, authorizationKey{}, ac)
}

// AuthorizationFromContext extracts the authorization context from ctx.
func AuthorizationFromContext(ctx context.Context) (*AuthorizationContext, bool) {
	ac, ok := ctx.Value(authorizationKey{}).(*AuthorizationContext)
	if !ok || ac == nil {
		return nil, false
	}
	return ac, true
}
