package walletauth

import (
	stderrors "errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ErrUnableToDecodeSession is returned when a hosted session token cannot be decoded
var ErrUnableToDecodeSession = stderrors.New("unable to decode session")

// ErrUnableToMapClaims is returned when claims cannot be read from a session token
var ErrUnableToMapClaims = stderrors.New("unable to map claims")

const (
	textCodeNoProviderFound         = "NO_PROVIDER_FOUND"
	textCodeUserRejected            = "USER_REJECTED"
	textCodeProviderError           = "PROVIDER_ERROR"
	textCodeProviderTimeout         = "PROVIDER_TIMEOUT"
	textCodeWalletNotRegistered     = "WALLET_NOT_REGISTERED"
	textCodeWalletAlreadyRegistered = "WALLET_ALREADY_REGISTERED"
	textCodeWalletAddressMismatch   = "WALLET_ADDRESS_MISMATCH"
	textCodeDisplayNameRequired     = "DISPLAY_NAME_REQUIRED"
	textCodeAccountNotActive        = "ACCOUNT_NOT_ACTIVE"
	textCodeAuthBackendError        = "AUTH_BACKEND_ERROR"
)

// ErrNoProviderFound is returned when no injected wallet provider is available.
var ErrNoProviderFound = goerrors.New("no wallet provider found", goerrors.CategoryNotFound).
	WithTextCode(textCodeNoProviderFound).
	WithCode(goerrors.CodeNotFound)

// ErrUserRejected is returned when the user declines the provider permission prompt.
var ErrUserRejected = goerrors.New("wallet connection rejected by user", goerrors.CategoryAuth).
	WithTextCode(textCodeUserRejected).
	WithCode(goerrors.CodeUnauthorized)

// ErrProviderTimeout is returned when a provider query exceeds the connector's
// bounded timeout. The last known balance is kept, not cleared.
var ErrProviderTimeout = goerrors.New("wallet provider request timed out", goerrors.CategoryOperation).
	WithTextCode(textCodeProviderTimeout).
	WithCode(goerrors.CodeInternal)

// ErrWalletNotRegistered is returned when a wallet address has no linked
// account. Callers are expected to offer registration.
var ErrWalletNotRegistered = goerrors.New("wallet address is not linked to an account", goerrors.CategoryNotFound).
	WithTextCode(textCodeWalletNotRegistered).
	WithCode(goerrors.CodeNotFound)

// ErrWalletAlreadyRegistered is returned on sign-up when the wallet address is
// already linked to an account. Callers are expected to offer sign-in.
var ErrWalletAlreadyRegistered = goerrors.New("wallet address is already linked to an account", goerrors.CategoryConflict).
	WithTextCode(textCodeWalletAlreadyRegistered).
	WithCode(goerrors.CodeConflict)

// ErrWalletAddressMismatch is returned when an open hosted session expects a
// different wallet address than the one being signed in.
var ErrWalletAddressMismatch = goerrors.New("wallet address does not match the active session", goerrors.CategoryAuth).
	WithTextCode(textCodeWalletAddressMismatch).
	WithCode(goerrors.CodeUnauthorized)

// ErrDisplayNameRequired is returned on sign-up when the display name is empty
// after trimming. No account is created.
var ErrDisplayNameRequired = goerrors.New("display name is required", goerrors.CategoryValidation).
	WithTextCode(textCodeDisplayNameRequired).
	WithCode(goerrors.CodeBadRequest)

// ErrAccountNotActive is returned on sign-in when the linked account's
// lifecycle status blocks authentication.
var ErrAccountNotActive = goerrors.New("account is not active", goerrors.CategoryAuth).
	WithTextCode(textCodeAccountNotActive).
	WithCode(goerrors.CodeUnauthorized)

// detachSentinel returns a per-call copy of a sentinel that can carry
// request metadata. The sentinel stays in the wrap chain for errors.Is
// matching and is itself never mutated.
func detachSentinel(sentinel *goerrors.Error) *goerrors.Error {
	clone := sentinel.Clone()
	if clone == nil {
		return sentinel
	}
	clone.Source = sentinel
	return clone
}

// WrapProviderError wraps an unclassified wallet provider failure.
func WrapProviderError(err error, msg string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryOperation, msg).
		WithTextCode(textCodeProviderError).
		WithCode(goerrors.CodeInternal)
}

// WrapBackendError wraps a hosted data service failure surfaced during
// sign-in or sign-up.
func WrapBackendError(err error, msg string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, msg).
		WithTextCode(textCodeAuthBackendError).
		WithCode(goerrors.CodeInternal)
}

// IsUserRejectedError detects the provider's permission-denied responses,
// including raw EIP-1193 code 4001 messages.
func IsUserRejectedError(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, ErrUserRejected) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "user rejected") ||
		strings.Contains(msg, "user denied")
}
