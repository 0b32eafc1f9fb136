package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrTokenType   = errors.New("jwtx: unexpected token type")
	ErrMissingRole = errors.New("jwtx: role claim absent")
	ErrWeakSecret  = errors.New("jwtx: signing secret too short")
)

// MinSecretBytes is the minimum secret length accepted for HS256. HMAC-SHA256
// with a short key undermines every other control in the system.
const MinSecretBytes = 32

// Verifier validates a token string and gives back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// HS256Signer signs tokens with a symmetric HMAC-SHA256 key. One process-wide
// secret, constructed explicitly at startup and injected where needed.
type HS256Signer struct {
	secret []byte
}

// NewSignerHS256 creates an HS256 signer from the shared secret.
func NewSignerHS256(secret []byte) (*HS256Signer, error) {
	if len(secret) < MinSecretBytes {
		return nil, ErrWeakSecret
	}
	return &HS256Signer{secret: secret}, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign turns the claims into a compact signed token string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// HS256Verifier validates tokens signed with the shared HMAC secret.
// Verification is pure: signature and time checks only, no store access.
type HS256Verifier struct {
	secret []byte
	issuer string
}

// NewVerifierHS256 creates a verifier for the given secret and expected issuer.
func NewVerifierHS256(secret []byte, issuer string) (*HS256Verifier, error) {
	if len(secret) < MinSecretBytes {
		return nil, ErrWeakSecret
	}
	return &HS256Verifier{secret: secret, issuer: issuer}, nil
}

// Verify parses and validates the token string and returns its typed claims.
func (v *HS256Verifier) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrInvalidSig
		default:
			return Claims{}, ErrMalformed
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrMalformed
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiry(); err != nil {
		return Claims{}, err
	}

	return *claims, nil
}
