package walletauth

import "strings"

// Role is a canonical application role.
type Role string

const (
	// RoleBuyer can browse events and purchase or resell tickets.
	RoleBuyer Role = "buyer"
	// RoleSeller can create events and manage ticket inventory.
	RoleSeller Role = "seller"
	// RoleAdmin has marketplace-wide privileges.
	RoleAdmin Role = "admin"

	// RoleLegacyCustomer is the label older hosted sessions still carry in
	// their metadata. It is accepted as input everywhere a role is read and
	// always normalizes to RoleBuyer; it is never a canonical value.
	RoleLegacyCustomer Role = "customer"
)

// IsValid checks if the role is one of the canonical roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole normalizes a raw role claim into a canonical role. It trims
// whitespace, lowercases, and rewrites the legacy "customer" label to
// RoleBuyer. The second return value is false when the claim is absent or
// not part of the canonical vocabulary.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if role == RoleLegacyCustomer {
		role = RoleBuyer
	}
	return role, role.IsValid()
}

// CanonicalRole reconciles the two independently sourced role claims into
// the single role used for access decisions: the profile-level claim wins
// when it parses, the session metadata claim is the fallback, and RoleBuyer
// is the default. Pure and total: for any pair of inputs the result is one
// of RoleBuyer, RoleSeller, RoleAdmin.
func CanonicalRole(profileRole, metadataRole string) Role {
	if role, ok := ParseRole(profileRole); ok {
		return role
	}
	if role, ok := ParseRole(metadataRole); ok {
		return role
	}
	return RoleBuyer
}

// CompatibleRoles reports whether a user holding role a satisfies a view
// that requires role b. Equal roles always match, and the buyer/customer
// synonym pair matches in both directions. Every other pairing is
// incompatible.
func CompatibleRoles(a, b Role) bool {
	if a == b {
		return true
	}

	na, aok := ParseRole(string(a))
	nb, bok := ParseRole(string(b))
	if !aok || !bok {
		return false
	}

	return na == nb
}

// AllRoles returns the canonical roles.
func AllRoles() []Role {
	return []Role{RoleBuyer, RoleSeller, RoleAdmin}
}
