package walletauth_test

import (
	"testing"

	walletauth "github.com/gatepass/go-wallet-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sellerIdentity() *walletauth.IdentityAccount {
	return &walletauth.IdentityAccount{
		DisplayName:   "Stage Left",
		ProfileRole:   "seller",
		WalletAddress: "0x8ba1f109551bd432803012645ac136ddd64dba72",
	}
}

func buyerIdentity() *walletauth.IdentityAccount {
	return &walletauth.IdentityAccount{
		DisplayName:  "Alice",
		MetadataRole: "customer",
	}
}

func TestGuardStartsChecking(t *testing.T) {
	guard := walletauth.NewRouteGuard(&stubSource{}, walletauth.Settings{})
	assert.Equal(t, walletauth.GuardChecking, guard.State())
}

func TestGuardUnauthenticatedSellerViewRedirectsToSellerEntry(t *testing.T) {
	nav := &navRecorder{}
	guard := walletauth.NewRouteGuard(&stubSource{}, walletauth.Settings{},
		walletauth.WithGuardNavigator(nav),
	)

	state := guard.Evaluate(walletauth.RoleSeller)

	assert.Equal(t, walletauth.GuardRedirecting, state)
	assert.Equal(t, "/seller/login", nav.last())
}

func TestGuardUnauthenticatedBuyerViewRedirectsToGeneralEntry(t *testing.T) {
	nav := &navRecorder{}
	guard := walletauth.NewRouteGuard(&stubSource{}, walletauth.Settings{},
		walletauth.WithGuardNavigator(nav),
	)

	state := guard.Evaluate(walletauth.RoleBuyer)

	assert.Equal(t, walletauth.GuardRedirecting, state)
	assert.Equal(t, "/login", nav.last())
}

func TestGuardAdmitsCompatibleRole(t *testing.T) {
	nav := &navRecorder{}
	notes := &noteRecorder{}
	guard := walletauth.NewRouteGuard(&stubSource{ident: buyerIdentity()}, walletauth.Settings{},
		walletauth.WithGuardNavigator(nav),
		walletauth.WithGuardNotifier(notes),
	)

	// metadata "customer" canonicalizes to buyer and matches the
	// buyer-required view
	state := guard.Evaluate(walletauth.RoleBuyer)

	assert.Equal(t, walletauth.GuardAdmitted, state)
	assert.Zero(t, nav.count())
	assert.Zero(t, notes.count())
}

func TestGuardIncompatibleRoleSellerGoesToDashboard(t *testing.T) {
	nav := &navRecorder{}
	notes := &noteRecorder{}
	guard := walletauth.NewRouteGuard(&stubSource{ident: sellerIdentity()}, walletauth.Settings{},
		walletauth.WithGuardNavigator(nav),
		walletauth.WithGuardNotifier(notes),
	)

	state := guard.Evaluate(walletauth.RoleAdmin)

	assert.Equal(t, walletauth.GuardRedirecting, state)
	assert.Equal(t, "/seller/dashboard", nav.last())
	assert.Equal(t, 1, notes.count())
}

func TestGuardIncompatibleRoleBuyerGoesToGeneralEntry(t *testing.T) {
	nav := &navRecorder{}
	guard := walletauth.NewRouteGuard(&stubSource{ident: buyerIdentity()}, walletauth.Settings{},
		walletauth.WithGuardNavigator(nav),
	)

	guard.Evaluate(walletauth.RoleSeller)

	assert.Equal(t, "/login", nav.last())
}

func TestGuardRedirectOverrideWins(t *testing.T) {
	nav := &navRecorder{}
	guard := walletauth.NewRouteGuard(&stubSource{ident: sellerIdentity()}, walletauth.Settings{},
		walletauth.WithGuardNavigator(nav),
		walletauth.WithRedirectOverride("/upgrade"),
	)

	guard.Evaluate(walletauth.RoleAdmin)

	assert.Equal(t, "/upgrade", nav.last())
}

func TestGuardEvaluateIsIdempotent(t *testing.T) {
	nav := &navRecorder{}
	notes := &noteRecorder{}
	guard := walletauth.NewRouteGuard(&stubSource{ident: buyerIdentity()}, walletauth.Settings{},
		walletauth.WithGuardNavigator(nav),
		walletauth.WithGuardNotifier(notes),
	)

	for i := 0; i < 5; i++ {
		guard.Evaluate(walletauth.RoleSeller)
	}

	assert.Equal(t, 1, nav.count())
	assert.Equal(t, 1, notes.count())
}

func TestGuardReevaluatesWhenDependenciesChange(t *testing.T) {
	nav := &navRecorder{}
	source := &stubSource{}
	guard := walletauth.NewRouteGuard(source, walletauth.Settings{},
		walletauth.WithGuardNavigator(nav),
	)

	require.Equal(t, walletauth.GuardRedirecting, guard.Evaluate(walletauth.RoleSeller))
	require.Equal(t, 1, nav.count())

	// signing in flips the dependency triple; the guard must re-run
	source.ident = sellerIdentity()
	assert.Equal(t, walletauth.GuardAdmitted, guard.Evaluate(walletauth.RoleSeller))
	assert.Equal(t, 1, nav.count())
}

func TestHasAccessHasNoSideEffects(t *testing.T) {
	nav := &navRecorder{}
	notes := &noteRecorder{}
	guard := walletauth.NewRouteGuard(&stubSource{ident: buyerIdentity()}, walletauth.Settings{},
		walletauth.WithGuardNavigator(nav),
		walletauth.WithGuardNotifier(notes),
	)

	decision := guard.HasAccess(walletauth.RoleSeller)

	assert.False(t, decision.HasAccess)
	assert.True(t, decision.IsAuthenticated)
	assert.Equal(t, walletauth.RoleBuyer, decision.Role)
	assert.Zero(t, nav.count())
	assert.Zero(t, notes.count())
}

func TestHasAccessUnauthenticated(t *testing.T) {
	decision := walletauth.HasAccess(&stubSource{}, walletauth.RoleBuyer)

	assert.False(t, decision.HasAccess)
	assert.False(t, decision.IsAuthenticated)
}

func TestHasAccessBuyerCustomerSynonyms(t *testing.T) {
	decision := walletauth.HasAccess(&stubSource{ident: buyerIdentity()}, walletauth.RoleLegacyCustomer)

	assert.True(t, decision.HasAccess)
	assert.Equal(t, walletauth.RoleBuyer, decision.Role)
}
