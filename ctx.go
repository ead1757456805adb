package walletauth

import (
	"context"

	"github.com/goliatone/go-router"
)

var identityCtxKey = &contextKey{"identity"}
var walletCtxKey = &contextKey{"wallet"}

type contextKey struct {
	name string
}

// WithIdentityContext sets the IdentityAccount in the given context
func WithIdentityContext(ctx context.Context, ident *IdentityAccount) context.Context {
	return context.WithValue(ctx, identityCtxKey, ident)
}

// IdentityFromContext finds the identity from the context.
func IdentityFromContext(ctx context.Context) (*IdentityAccount, bool) {
	raw, ok := ctx.Value(identityCtxKey).(*IdentityAccount)
	return raw, ok
}

// WithWalletContext sets the WalletInfo in the given context
func WithWalletContext(ctx context.Context, info *WalletInfo) context.Context {
	return context.WithValue(ctx, walletCtxKey, info)
}

// WalletFromContext finds the wallet snapshot from the context.
func WalletFromContext(ctx context.Context) (*WalletInfo, bool) {
	raw, ok := ctx.Value(walletCtxKey).(*WalletInfo)
	return raw, ok
}

// IdentityFromRouter extracts the identity stashed in router locals by the
// access guard middleware.
func IdentityFromRouter(ctx router.Context, key string) (*IdentityAccount, bool) {
	if key == "" {
		key = identityLocalsKey
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}
	ident, ok := raw.(*IdentityAccount)
	return ident, ok
}

// CanAccess is a convenience check for handlers that hold a plain context.
func CanAccess(ctx context.Context, required Role) bool {
	ident, ok := IdentityFromContext(ctx)
	if !ok || ident == nil {
		return false
	}
	return CompatibleRoles(CanonicalRole(ident.ProfileRole, ident.MetadataRole), required)
}
