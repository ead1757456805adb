package walletauth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// SessionTokenOptions controls how MintSessionToken issues hosted session tokens.
type SessionTokenOptions struct {
	// TTL sets the token expiration window. Zero defaults to one hour.
	TTL time.Duration
	// Issuer sets the issuer claim if provided.
	Issuer string
	// IssuedAt overrides the issuance time. Zero uses time.Now().
	IssuedAt time.Time
}

// MintSessionToken signs an HS256 token carrying the hosted session claims.
// The hosted data service is the normal issuer; this mint exists for local
// deployments and test rigs that stand in for it.
func MintSessionToken(secret []byte, session *HostedSession, opts SessionTokenOptions) (string, time.Time, error) {
	if len(secret) == 0 {
		return "", time.Time{}, goerrors.New("signing secret is required", goerrors.CategoryBadInput)
	}
	if session == nil {
		return "", time.Time{}, goerrors.New("session is required", goerrors.CategoryBadInput)
	}

	ttl := opts.TTL
	if ttl == 0 {
		ttl = time.Hour
	}
	if ttl < 0 {
		return "", time.Time{}, goerrors.New("token TTL must be non-negative", goerrors.CategoryBadInput)
	}

	issuedAt := opts.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}
	expiresAt := issuedAt.Add(ttl)

	claims := jwt.MapClaims{
		"iat": jwt.NewNumericDate(issuedAt),
		"exp": jwt.NewNumericDate(expiresAt),
	}

	if opts.Issuer != "" {
		claims["iss"] = opts.Issuer
	}
	if session.Subject != "" {
		claims["sub"] = session.Subject
	}
	if session.Email != "" {
		claims["email"] = session.Email
	}
	if session.WalletAddress != "" {
		claims["wallet_address"] = NormalizeAddress(session.WalletAddress)
	}
	if len(session.Metadata) > 0 {
		claims["user_metadata"] = session.Metadata
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}
