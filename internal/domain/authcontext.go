package domain

import "strings"

// AuthorizationContext aggregates everything the platform knows about a
// caller: who they are, which tenant they act for, what roles and
// entitlements they hold, and which logical request this is part of. It is
// constructed once at the service boundary, read-only for the lifetime of
// the request, and never persisted.
type AuthorizationContext struct {
	Identity      Identity
	Tenant        Tenant
	Roles         []Role
	Entitlements  *Entitlements // nil means absent, which Validate rejects
	Token         string        // opaque upstream token, never serialized outbound
	CorrelationID string
}

// Validate checks the structural invariants and reports every violation
// found in one pass, so callers and tests get complete diagnostics. Returns
// nil when the context is well-formed.
func (c *AuthorizationContext) Validate() error {
	var violations []string
	if strings.TrimSpace(c.Identity.UserID) == "" {
		violations = append(violations, "identity user id must not be blank")
	}
	if strings.TrimSpace(c.Tenant.TenantID) == "" {
		violations = append(violations, "tenantId must not be blank")
	}
	if len(c.Roles) == 0 {
		violations = append(violations, "at least one role is required")
	}
	if c.Entitlements == nil {
		violations = append(violations, "entitlements must be present")
	}
	if len(violations) > 0 {
		return ErrStructural(violations)
	}
	return nil
}

// HasRole reports whether the caller holds the required role, directly or
// through the role hierarchy.
func (c *AuthorizationContext) HasRole(required Role) bool {
	return HasRole(c.Roles, required)
}

// HasAnyRole reports whether the caller holds at least one required role.
func (c *AuthorizationContext) HasAnyRole(required ...Role) bool {
	return HasAnyRole(c.Roles, required...)
}

// HasAllRoles reports whether the caller holds every required role.
func (c *AuthorizationContext) HasAllRoles(required ...Role) bool {
	return HasAllRoles(c.Roles, required...)
}

// EnforceTenant guards tenant-scoped data access. It must be called before
// the access occurs; on mismatch it returns a TenantMismatchError carrying
// both tenant ids and the caller must abort, never narrow results.
func EnforceTenant(c *AuthorizationContext, resourceTenantID string) error {
	if c.Tenant.TenantID != resourceTenantID {
		return ErrTenantMismatch(c.Tenant.TenantID, resourceTenantID)
	}
	return nil
}
