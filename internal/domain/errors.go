// Package domain defines the authorization model shared by every service on
// the trading platform: identities, tenants, roles, entitlements, and the
// per-request authorization context built from upstream-validated claims.
package domain

import (
	"fmt"
	"strings"
)

// StructuralError reports every structural invariant an authorization
// context violates, not just the first one found.
type StructuralError struct {
	Violations []string
}

func (e *StructuralError) Error() string {
	return "invalid authorization context: " + strings.Join(e.Violations, "; ")
}

// TenantMismatchError indicates an attempt to touch a resource owned by a
// different tenant. Both tenant ids are carried for the audit trail.
type TenantMismatchError struct {
	ContextTenantID  string
	ResourceTenantID string
}

func (e *TenantMismatchError) Error() string {
	return fmt.Sprintf("tenant isolation violation: context tenant %q cannot access resource owned by tenant %q",
		e.ContextTenantID, e.ResourceTenantID)
}

// MissingContextError indicates that an expected propagation header was
// absent from an inbound call.
type MissingContextError struct {
	Header string
}

func (e *MissingContextError) Error() string {
	return fmt.Sprintf("propagated authorization context missing: header %q not present", e.Header)
}

// ErrStructural creates a StructuralError from the collected violations.
func ErrStructural(violations []string) *StructuralError {
	return &StructuralError{Violations: violations}
}

// ErrTenantMismatch creates a TenantMismatchError carrying both tenant ids.
func ErrTenantMismatch(contextTenantID, resourceTenantID string) *TenantMismatchError {
	return &TenantMismatchError{ContextTenantID: contextTenantID, ResourceTenantID: resourceTenantID}
}

// ErrMissingContext creates a MissingContextError for the named header.
func ErrMissingContext(header string) *MissingContextError {
	return &MissingContextError{Header: header}
}
