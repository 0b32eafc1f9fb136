package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Default token TTL constants. Short-lived access tokens limit the damage a
// leaked bearer token can do; refresh tokens live longer for convenience but
// are stateful and revocable.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Token type discriminators embedded in the "type" claim. A refresh token
// must never be accepted where an access token is expected, and vice versa.
const (
	TokenTypeAccess  = "ACCESS"
	TokenTypeRefresh = "REFRESH"
)

// Claims is the closed claim set we embed in signed tokens. Keeping this a
// typed struct (rather than a map) means "claim absent" is a compile-time
// concern, not a runtime surprise.
type Claims struct {
	jwt.RegisteredClaims

	// Role is carried on access tokens only, so resource servers can
	// authorize without a user lookup.
	Role string `json:"role,omitempty"`

	// TokenType discriminates ACCESS from REFRESH tokens.
	TokenType string `json:"type,omitempty"`
}

// NewAccessClaims builds the claim set for a short-lived access token.
// The subject is the user's email and the jti is a fresh UUID.
func NewAccessClaims(email, role string, ttl time.Duration, issuer string, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Role:      role,
		TokenType: TokenTypeAccess,
	}
}

// NewRefreshClaims builds the claim set for a long-lived refresh token.
// Refresh tokens carry the minimum: no role claim.
func NewRefreshClaims(email string, ttl time.Duration, issuer string, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		TokenType: TokenTypeRefresh,
	}
}

// NewJTI returns a unique identifier for the "jti" claim. The jti is the
// blacklist key, so it has to be unique per issued token.
func NewJTI() string {
	return uuid.NewString()
}

// ValidateIssuer checks if the issuer matches the expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateTokenType ensures the "type" claim matches what the caller expects.
func (c *Claims) ValidateTokenType(expected string) error {
	if c.TokenType != expected {
		return ErrTokenType
	}
	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp).
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}

	return nil
}

// RequireRole returns the role claim, or an error if it is absent. Absence
// means a token of the wrong type was handed in; callers must treat that as
// a hard failure, never default the role.
func (c *Claims) RequireRole() (string, error) {
	if c.Role == "" {
		return "", ErrMissingRole
	}
	return c.Role, nil
}

// Expiry returns the exp claim as a time.Time, or the zero time if unset.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
