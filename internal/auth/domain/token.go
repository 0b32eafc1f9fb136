package domain

import "time"

// TokenPair is what login and refresh return: a short-lived access token and
// the refresh token that can mint its successor. Both are signed JWTs.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"` // typically "Bearer"
	ExpiresIn    int64  `json:"expires_in"`           // seconds until access token expiry
}

// RefreshToken models the stored refresh token record in the DB. The raw JWT
// is never persisted; TokenHash is its deterministic fingerprint.
type RefreshToken struct {
	ID         string
	UserID     string
	TokenHash  string // base64url SHA-256 of the raw token
	ExpiresAt  time.Time
	Revoked    bool
	ReplacedBy string // fingerprint of the successor token, set on rotation
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Active reports whether the token can still be exchanged at time now.
func (t RefreshToken) Active(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}
