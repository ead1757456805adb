package walletauth

import (
	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

// SessionValidator decodes and verifies hosted session tokens without tying
// callers to a specific signing setup.
type SessionValidator interface {
	Validate(token string) (*HostedSession, error)
}

// SessionValidatorFunc adapts a function into a SessionValidator.
type SessionValidatorFunc func(token string) (*HostedSession, error)

// Validate satisfies the SessionValidator interface.
func (f SessionValidatorFunc) Validate(token string) (*HostedSession, error) {
	if f == nil {
		return nil, ErrUnableToDecodeSession
	}
	return f(token)
}

// HMACSessionValidator verifies tokens signed with the hosted service's
// shared secret.
type HMACSessionValidator struct {
	secret []byte
}

// NewHMACSessionValidator returns a validator for HS256 session tokens.
func NewHMACSessionValidator(secret []byte) *HMACSessionValidator {
	return &HMACSessionValidator{secret: secret}
}

// Validate satisfies the SessionValidator interface.
func (v *HMACSessionValidator) Validate(raw string) (*HostedSession, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}

	return sessionFromClaims(claims)
}

// JWKSSessionValidator verifies tokens against the hosted service's JWK Set
// endpoint, refreshing keys in the background.
type JWKSSessionValidator struct {
	jwks *keyfunc.JWKS
}

// NewJWKSSessionValidator fetches the JWK Set and returns a validator.
func NewJWKSSessionValidator(jwksURL string) (*JWKSSessionValidator, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
	if err != nil {
		return nil, err
	}

	return &JWKSSessionValidator{jwks: jwks}, nil
}

// Validate satisfies the SessionValidator interface.
func (v *JWKSSessionValidator) Validate(raw string) (*HostedSession, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, v.jwks.Keyfunc)
	if err != nil {
		return nil, err
	}

	return sessionFromClaims(claims)
}

var (
	_ SessionValidator = (*HMACSessionValidator)(nil)
	_ SessionValidator = (*JWKSSessionValidator)(nil)
)
