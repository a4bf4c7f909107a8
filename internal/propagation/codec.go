// Package propagation encodes the cross-process subset of an authorization
// context for transmission as RPC metadata, and decodes it on the receiving
// side. Entitlements and the upstream token deliberately stay behind: the
// header carries only what the callee needs to re-establish identity,
// tenancy, roles, and correlation.
package propagation

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"rfq-platform/internal/domain"
)

// Metadata header names. The encoded payload travels in HeaderAuthContext;
// correlation and tenant ids are duplicated as plain headers so transports
// and observability tooling can read them without decoding the payload.
const (
	HeaderAuthContext   = "x-auth-context"
	HeaderCorrelationID = "x-correlation-id"
	HeaderTenantID      = "x-tenant-id"
)

// Payload is the self-describing subset of an authorization context that
// crosses process boundaries.
type Payload struct {
	UserID        string   `json:"user_id"`
	TenantID      string   `json:"tenant_id"`
	Roles         []string `json:"roles"`
	CorrelationID string   `json:"correlation_id,omitempty"`
}

// Encode serializes the cross-process subset of ac as a header-safe string:
// JSON first, then unpadded base64url so the value survives ASCII-only
// metadata transports byte for byte.
func Encode(ac *domain.AuthorizationContext) (string, error) {
	if ac == nil {
		return "", fmt.Errorf("encode auth context: nil context")
	}
	roles := make([]string, len(ac.Roles))
	for i, r := range ac.Roles {
		roles[i] = string(r)
	}
	p := Payload{
		UserID:        ac.Identity.UserID,
		TenantID:      ac.Tenant.TenantID,
		Roles:         roles,
		CorrelationID: ac.CorrelationID,
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode auth context: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode reverses Encode. An empty value means the header was absent and
// yields a MissingContextError so callers can treat the request as
// unauthenticated; a malformed value is reported as a plain decode error.
func Decode(value string) (*Payload, error) {
	if strings.TrimSpace(value) == "" {
		return nil, domain.ErrMissingContext(HeaderAuthContext)
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode auth context header: %w", err)
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode auth context payload: %w", err)
	}
	return &p, nil
}

// ParsedRoles resolves the carried role names, dropping any the local
// deployment does not recognize so newer peers do not break older ones.
func (p *Payload) ParsedRoles() []domain.Role {
	roles := make([]domain.Role, 0, len(p.Roles))
	for _, name := range p.Roles {
		if r, ok := domain.ParseRole(name); ok {
			roles = append(roles, r)
		}
	}
	return roles
}

// AuthorizationContext rebuilds a partial authorization context from the
// carried subset. Entitlements are not transmitted; the callee attaches its
// own (typically domain.DefaultEntitlements or a tenant-specific lookup)
// before validating.
func (p *Payload) AuthorizationContext() *domain.AuthorizationContext {
	return &domain.AuthorizationContext{
		Identity:      domain.Identity{UserID: p.UserID},
		Tenant:        domain.Tenant{TenantID: p.TenantID},
		Roles:         p.ParsedRoles(),
		CorrelationID: p.CorrelationID,
	}
}
