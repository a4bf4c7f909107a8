package middleware

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"rfq-platform/internal/domain"
)

// Claims holds the identity claims extracted from an upstream-validated
// bearer token. Signature and expiry checks happen at the edge gateway
// before the token ever reaches a platform service, so the token is decoded
// here without re-verification.
type Claims struct {
	Subject     string
	Email       string
	Username    string
	DisplayName string
	TenantID    string
	TenantName  string
	TenantTier  string
	Roles       []string
}

// ClaimsFromToken decodes the claim set of a bearer token that upstream
// infrastructure already validated.
func ClaimsFromToken(tokenString string) (*Claims, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("parse bearer token: %w", err)
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("parse bearer token: unexpected claims type %T", token.Claims)
	}

	str := func(key string) string {
		v, _ := mc[key].(string)
		return v
	}
	c := &Claims{
		Subject:     str("sub"),
		Email:       str("email"),
		Username:    str("preferred_username"),
		DisplayName: str("name"),
		TenantID:    str("tenant_id"),
		TenantName:  str("tenant_name"),
		TenantTier:  str("tenant_tier"),
	}
	if raw, ok := mc["roles"].([]any); ok {
		for _, v := range raw {
			if name, ok := v.(string); ok {
				c.Roles = append(c.Roles, name)
			}
		}
	}
	return c, nil
}

// AuthorizationContext builds and validates an authorization context from
// the claims. Role names the platform does not recognize are dropped;
// entitlements default to unrestricted until a tenant-specific lookup
// replaces them.
func (c *Claims) AuthorizationContext(token, correlationID string) (*domain.AuthorizationContext, error) {
	roles := make([]domain.Role, 0, len(c.Roles))
	for _, name := range c.Roles {
		if r, ok := domain.ParseRole(name); ok {
			roles = append(roles, r)
		}
	}
	tier, ok := domain.ParseTenantTier(c.TenantTier)
	if !ok {
		tier = domain.TierStandard
	}
	ac := &domain.AuthorizationContext{
		Identity: domain.Identity{
			UserID:      c.Subject,
			Email:       c.Email,
			Username:    c.Username,
			DisplayName: c.DisplayName,
		},
		Tenant: domain.Tenant{
			TenantID:   c.TenantID,
			TenantName: c.TenantName,
			Tier:       tier,
		},
		Roles:         roles,
		Entitlements:  domain.DefaultEntitlements(),
		Token:         token,
		CorrelationID: correlationID,
	}
	if err := ac.Validate(); err != nil {
		return nil, err
	}
	return ac, nil
}
