package domain

import "strings"

// TenantTier is the commercial tier of a tenant organization.
type TenantTier string

const (
	TierStandard   TenantTier = "STANDARD"
	TierPremium    TenantTier = "PREMIUM"
	TierEnterprise TenantTier = "ENTERPRISE"
)

// ParseTenantTier resolves the canonical string form of a tier. Unknown
// names report ok=false rather than failing, so claims from newer or older
// deployments degrade gracefully.
func ParseTenantTier(name string) (TenantTier, bool) {
	switch TenantTier(strings.ToUpper(strings.TrimSpace(name))) {
	case TierStandard:
		return TierStandard, true
	case TierPremium:
		return TierPremium, true
	case TierEnterprise:
		return TierEnterprise, true
	}
	return "", false
}

// Tenant represents the organization that owns a request. Immutable.
type Tenant struct {
	TenantID   string
	TenantName string // optional display name
	Tier       TenantTier
}
