package domain

import "strings"

// Role is one of the closed set of platform roles.
type Role string

const (
	RoleTrader   Role = "TRADER"
	RoleSales    Role = "SALES"
	RoleRisk     Role = "RISK"
	RoleAnalyst  Role = "ANALYST"
	RoleAdmin    Role = "ADMIN"
	RolePlatform Role = "PLATFORM"
)

// roleImplies is the hand-authored role hierarchy, pre-expanded to a flat
// set per role. The table is authoritative: ADMIN deliberately does not
// imply PLATFORM, and PLATFORM implies nothing but itself. If a deeper
// hierarchy is ever introduced, the expansion here must be updated by hand;
// no transitive closure is computed at runtime.
var roleImplies = map[Role][]Role{
	RoleAdmin: {RoleTrader, RoleSales, RoleRisk, RoleAnalyst},
	RoleSales: {RoleTrader},
}

// ParseRole resolves the canonical string form of a role. Unknown names
// report ok=false so role lists from other deployments can be filtered
// without failing the whole request.
func ParseRole(name string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(name))) {
	case RoleTrader:
		return RoleTrader, true
	case RoleSales:
		return RoleSales, true
	case RoleRisk:
		return RoleRisk, true
	case RoleAnalyst:
		return RoleAnalyst, true
	case RoleAdmin:
		return RoleAdmin, true
	case RolePlatform:
		return RolePlatform, true
	}
	return "", false
}

// Implies reports whether holding r grants required, either directly or via
// the hierarchy table.
func (r Role) Implies(required Role) bool {
	if r == required {
		return true
	}
	for _, implied := range roleImplies[r] {
		if implied == required {
			return true
		}
	}
	return false
}

// HasRole reports whether any held role equals or implies required.
func HasRole(held []Role, required Role) bool {
	for _, r := range held {
		if r.Implies(required) {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether at least one of the required roles is held.
func HasAnyRole(held []Role, required ...Role) bool {
	for _, req := range required {
		if HasRole(held, req) {
			return true
		}
	}
	return false
}

// HasAllRoles reports whether every required role is held.
func HasAllRoles(held []Role, required ...Role) bool {
	for _, req := range required {
		if !HasRole(held, req) {
			return false
		}
	}
	return true
}
