package domain

import "time"

// RevokedToken is a blacklist entry for an access token that was invalidated
// before its natural expiry (logout, role change, password reset). Entries
// are keyed by the token's jti and become prunable once ExpiresAt passes.
type RevokedToken struct {
	JTI       string
	Subject   string // email of the token's owner, kept for audit
	Reason    string
	ExpiresAt time.Time
	RevokedAt time.Time
}

// Revocation reasons recorded alongside blacklist entries.
const (
	RevokeReasonLogout        = "logout"
	RevokeReasonRoleChange    = "role change - session invalidated"
	RevokeReasonPasswordReset = "password reset"
)
