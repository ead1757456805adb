package walletauth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HostedSession is the decoded state of a hosted data service session token.
// It carries the session-level role claim (the metadata side of role
// reconciliation) and the wallet address the session was established with,
// which guards against silently switching identity under an open session.
type HostedSession struct {
	Subject       string         `json:"subject,omitempty"`
	Email         string         `json:"email,omitempty"`
	WalletAddress string         `json:"wallet_address,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	IssuedAt      *time.Time     `json:"issued_at,omitempty"`
	ExpiresAt     *time.Time     `json:"expires_at,omitempty"`
}

// MetadataRole returns the raw role claim found in the session metadata,
// legacy vocabulary included. Empty when the session carries none.
func (s *HostedSession) MetadataRole() string {
	if s == nil || s.Metadata == nil {
		return ""
	}

	if role, ok := s.Metadata["role"].(string); ok {
		return role
	}

	return ""
}

// ExpectsWallet reports whether the session is pinned to a wallet address.
func (s *HostedSession) ExpectsWallet() bool {
	return s != nil && s.WalletAddress != ""
}

// sessionFromClaims maps the hosted service's token claims onto a
// HostedSession. The service stores profile extras under "user_metadata".
func sessionFromClaims(claims jwt.MapClaims) (*HostedSession, error) {
	if claims == nil {
		return nil, ErrUnableToMapClaims
	}

	session := &HostedSession{}

	if sub, err := claims.GetSubject(); err == nil {
		session.Subject = sub
	}

	if email, ok := claims["email"].(string); ok {
		session.Email = email
	}

	if address, ok := claims["wallet_address"].(string); ok {
		session.WalletAddress = NormalizeAddress(address)
	}

	if meta, ok := claims["user_metadata"].(map[string]any); ok {
		session.Metadata = meta
	}

	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		session.IssuedAt = &iat.Time
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		session.ExpiresAt = &exp.Time
	}

	return session, nil
}
