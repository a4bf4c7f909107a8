package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"rfq-platform/internal/correlation"
	"rfq-platform/internal/domain"
	"rfq-platform/internal/propagation"
)

// Authorization establishes the request's authorization and correlation
// contexts. It tries the propagated x-auth-context header first (service to
// service calls), then a bearer token whose claims were validated upstream.
// Requests carrying neither are rejected with 401.
func Authorization(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			correlationID := r.Header.Get(propagation.HeaderCorrelationID)

			var ac *domain.AuthorizationContext

			if encoded := r.Header.Get(propagation.HeaderAuthContext); encoded != "" {
				p, err := propagation.Decode(encoded)
				if err != nil {
					logger.WarnContext(ctx, "rejecting request with malformed auth context header", "error", err)
					writeUnauthorized(w, "malformed "+propagation.HeaderAuthContext+" header")
					return
				}
				ac = p.AuthorizationContext()
				ac.Entitlements = domain.DefaultEntitlements()
				if ac.CorrelationID != "" {
					correlationID = ac.CorrelationID
				}
			} else if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				token := strings.TrimPrefix(auth, "Bearer ")
				claims, err := ClaimsFromToken(token)
				if err != nil {
					logger.WarnContext(ctx, "rejecting request with undecodable bearer token", "error", err)
					writeUnauthorized(w, "undecodable bearer token")
					return
				}
				if correlationID == "" {
					correlationID = correlation.NewID()
				}
				ac, err = claims.AuthorizationContext(token, correlationID)
				if err != nil {
					logger.WarnContext(ctx, "rejecting request with incomplete claims", "error", err)
					writeUnauthorized(w, "incomplete identity claims: "+err.Error())
					return
				}
			} else {
				writeUnauthorized(w, "provide an "+propagation.HeaderAuthContext+" header or a Bearer token")
				return
			}

			if err := ac.Validate(); err != nil {
				logger.WarnContext(ctx, "rejecting structurally invalid authorization context", "error", err)
				writeUnauthorized(w, err.Error())
				return
			}

			if correlationID == "" {
				correlationID = correlation.NewID()
			}
			ac.CorrelationID = correlationID

			ctx = domain.WithAuthorization(ctx, ac)
			cc := correlation.Context{
				CorrelationID: correlationID,
				TenantID:      ac.Tenant.TenantID,
				UserID:        ac.Identity.UserID,
				RequestID:     RequestIDFromContext(ctx),
			}
			ctx, err := correlation.With(ctx, cc)
			if err != nil {
				// Unreachable while correlationID is always non-empty.
				logger.ErrorContext(ctx, "failed to bind correlation context", "error", err)
				writeUnauthorized(w, "internal correlation failure")
				return
			}

			w.Header().Set(propagation.HeaderCorrelationID, correlationID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"code":    http.StatusUnauthorized,
		"message": "unauthorized: " + message,
	})
}
