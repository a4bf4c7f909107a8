package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfq-platform/internal/correlation"
	"rfq-platform/internal/domain"
	"rfq-platform/internal/propagation"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("upstream-secret"))
	require.NoError(t, err)
	return token
}

// capture records the contexts the inner handler observed.
type capture struct {
	called bool
	auth   *domain.AuthorizationContext
	corr   correlation.Context
	corrOK bool
}

func (c *capture) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.called = true
		c.auth, _ = domain.AuthorizationFromContext(r.Context())
		c.corr, c.corrOK = correlation.From(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthorizationFromPropagatedHeader(t *testing.T) {
	ac := &domain.AuthorizationContext{
		Identity:      domain.Identity{UserID: "u1"},
		Tenant:        domain.Tenant{TenantID: "t1"},
		Roles:         []domain.Role{domain.RoleSales},
		Entitlements:  domain.DefaultEntitlements(),
		CorrelationID: "corr-1",
	}
	encoded, err := propagation.Encode(ac)
	require.NoError(t, err)

	var sink capture
	srv := Authorization(testLogger())(sink.handler())

	req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
	req.Header.Set(propagation.HeaderAuthContext, encoded)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, sink.called)
	assert.Equal(t, "u1", sink.auth.Identity.UserID)
	assert.Equal(t, "t1", sink.auth.Tenant.TenantID)
	assert.NotNil(t, sink.auth.Entitlements)
	require.True(t, sink.corrOK)
	assert.Equal(t, "corr-1", sink.corr.CorrelationID)
	assert.Equal(t, "corr-1", rec.Header().Get(propagation.HeaderCorrelationID))
}

func TestAuthorizationFromBearerToken(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{
		"sub":         "u2",
		"email":       "u2@example.com",
		"name":        "User Two",
		"tenant_id":   "t2",
		"tenant_tier": "enterprise",
		"roles":       []any{"ADMIN", "unknown_role"},
	})

	var sink capture
	srv := Authorization(testLogger())(sink.handler())

	req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u2", sink.auth.Identity.UserID)
	assert.Equal(t, domain.TierEnterprise, sink.auth.Tenant.Tier)
	assert.Equal(t, []domain.Role{domain.RoleAdmin}, sink.auth.Roles, "unknown role names are dropped")
	require.True(t, sink.corrOK)
	assert.NotEmpty(t, sink.corr.CorrelationID, "a correlation id is minted when none arrives")
	assert.Equal(t, "t2", sink.corr.TenantID)
}

func TestAuthorizationReusesInboundCorrelationID(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{
		"sub": "u2", "tenant_id": "t2", "roles": []any{"TRADER"},
	})

	var sink capture
	srv := Authorization(testLogger())(sink.handler())

	req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(propagation.HeaderCorrelationID, "corr-inbound")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "corr-inbound", sink.corr.CorrelationID)
	assert.Equal(t, "corr-inbound", sink.auth.CorrelationID)
}

func TestAuthorizationRejectsAnonymousRequests(t *testing.T) {
	var sink capture
	srv := Authorization(testLogger())(sink.handler())

	req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, sink.called)
	assert.Contains(t, rec.Body.String(), "unauthorized")
}

func TestAuthorizationRejectsMalformedHeader(t *testing.T) {
	var sink capture
	srv := Authorization(testLogger())(sink.handler())

	req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
	req.Header.Set(propagation.HeaderAuthContext, "!!!garbage!!!")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, sink.called)
}

func TestAuthorizationRejectsIncompleteClaims(t *testing.T) {
	// No tenant_id and no roles: the validator must refuse the context.
	token := signedToken(t, jwt.MapClaims{"sub": "u3"})

	var sink capture
	srv := Authorization(testLogger())(sink.handler())

	req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, sink.called)
	assert.Contains(t, rec.Body.String(), "tenantId")
	assert.Contains(t, rec.Body.String(), "role")
}

func TestRequestIDMintedAndEchoed(t *testing.T) {
	var got string
	srv := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, got)
	assert.Equal(t, got, rec.Header().Get(HeaderRequestID))
}

func TestRequestIDReusesInboundHeader(t *testing.T) {
	var got string
	srv := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	srv.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "req-42", got)
}

func TestRequestIDFromContextUnset(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))
}
