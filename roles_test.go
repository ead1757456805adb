package walletauth_test

import (
	"testing"

	walletauth "github.com/gatepass/go-wallet-auth"
	"github.com/stretchr/testify/assert"
)

func TestCanonicalRoleProfileWins(t *testing.T) {
	tests := []struct {
		name         string
		profileRole  string
		metadataRole string
		expected     walletauth.Role
	}{
		{"profile beats metadata", "seller", "customer", walletauth.RoleSeller},
		{"metadata fallback", "", "seller", walletauth.RoleSeller},
		{"legacy customer normalizes", "", "customer", walletauth.RoleBuyer},
		{"default when both absent", "", "", walletauth.RoleBuyer},
		{"admin profile", "admin", "buyer", walletauth.RoleAdmin},
		{"unknown profile falls through", "superuser", "seller", walletauth.RoleSeller},
		{"unknown everywhere defaults", "superuser", "wizard", walletauth.RoleBuyer},
		{"whitespace and casing", "  Seller ", "", walletauth.RoleSeller},
		{"legacy customer in profile", "customer", "", walletauth.RoleBuyer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, walletauth.CanonicalRole(tt.profileRole, tt.metadataRole))
		})
	}
}

func TestCanonicalRoleIsTotal(t *testing.T) {
	inputs := []string{"", "buyer", "seller", "admin", "customer", "garbage", "ADMIN", " x "}

	for _, profile := range inputs {
		for _, metadata := range inputs {
			role := walletauth.CanonicalRole(profile, metadata)
			assert.True(t, role.IsValid(), "canonical role %q for (%q, %q) outside closed set", role, profile, metadata)
		}
	}
}

func TestCompatibleRolesReflexive(t *testing.T) {
	for _, role := range []walletauth.Role{
		walletauth.RoleBuyer,
		walletauth.RoleSeller,
		walletauth.RoleAdmin,
		walletauth.RoleLegacyCustomer,
		walletauth.Role("unknown"),
	} {
		assert.True(t, walletauth.CompatibleRoles(role, role), "role %q should match itself", role)
	}
}

func TestCompatibleRolesBuyerCustomerSynonyms(t *testing.T) {
	assert.True(t, walletauth.CompatibleRoles(walletauth.RoleBuyer, walletauth.RoleLegacyCustomer))
	assert.True(t, walletauth.CompatibleRoles(walletauth.RoleLegacyCustomer, walletauth.RoleBuyer))
}

func TestCompatibleRolesRejectsEverythingElse(t *testing.T) {
	assert.False(t, walletauth.CompatibleRoles(walletauth.RoleSeller, walletauth.RoleBuyer))
	assert.False(t, walletauth.CompatibleRoles(walletauth.RoleBuyer, walletauth.RoleSeller))
	assert.False(t, walletauth.CompatibleRoles(walletauth.RoleSeller, walletauth.RoleAdmin))
	assert.False(t, walletauth.CompatibleRoles(walletauth.RoleAdmin, walletauth.RoleLegacyCustomer))
	assert.False(t, walletauth.CompatibleRoles(walletauth.RoleSeller, walletauth.RoleLegacyCustomer))
}

func TestParseRole(t *testing.T) {
	role, ok := walletauth.ParseRole("Customer")
	assert.True(t, ok)
	assert.Equal(t, walletauth.RoleBuyer, role)

	_, ok = walletauth.ParseRole("owner")
	assert.False(t, ok)

	_, ok = walletauth.ParseRole("")
	assert.False(t, ok)
}
