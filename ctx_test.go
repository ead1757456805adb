package walletauth_test

import (
	"context"
	"testing"

	walletauth "github.com/gatepass/go-wallet-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityContextRoundTrip(t *testing.T) {
	ident := sellerIdentity()

	ctx := walletauth.WithIdentityContext(context.Background(), ident)

	got, ok := walletauth.IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, ident, got)
}

func TestIdentityFromEmptyContext(t *testing.T) {
	_, ok := walletauth.IdentityFromContext(context.Background())
	assert.False(t, ok)
}

func TestWalletContextRoundTrip(t *testing.T) {
	info := &walletauth.WalletInfo{Address: walletAddr, ChainID: 1}

	ctx := walletauth.WithWalletContext(context.Background(), info)

	got, ok := walletauth.WalletFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, info, got)
}

func TestCanAccess(t *testing.T) {
	ctx := walletauth.WithIdentityContext(context.Background(), sellerIdentity())

	assert.True(t, walletauth.CanAccess(ctx, walletauth.RoleSeller))
	assert.False(t, walletauth.CanAccess(ctx, walletauth.RoleAdmin))
	assert.False(t, walletauth.CanAccess(context.Background(), walletauth.RoleBuyer))
}

func TestCanAccessRoleSynonyms(t *testing.T) {
	ctx := walletauth.WithIdentityContext(context.Background(), buyerIdentity())

	assert.True(t, walletauth.CanAccess(ctx, walletauth.RoleBuyer))
	assert.True(t, walletauth.CanAccess(ctx, walletauth.RoleLegacyCustomer))
}
