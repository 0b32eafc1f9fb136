package domain

import "time"

// RecoveryTokenTTL is how long a password recovery link stays valid.
const RecoveryTokenTTL = 15 * time.Minute

// RecoveryToken is a single-use password reset credential. The raw secret is
// only ever sent to the user's mailbox; TokenHash is its fingerprint.
type RecoveryToken struct {
	ID        string
	UserID    string
	TokenHash string // base64url SHA-256 of the raw secret
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// Usable reports whether the token can still redeem a password reset at now.
func (t RecoveryToken) Usable(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}
