package store

import (
	"context"
	"errors"

	"github.com/quollify/gatekey/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. Sub-repositories keep concerns tidy and testable,
// and make it obvious when code is about to nest a transaction inside
// another transaction.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens
	RevokedTokens() RevokedTokens
	RecoveryTokens() RecoveryTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login and recovery.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// ExistsByEmail reports whether an account already holds the email.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// UpdateRole sets the role and bumps updated_at.
	UpdateRole(ctx context.Context, userID string, role domain.Role) error
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the token by its fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// MarkRotated revokes a still-active token and records its successor's
	// fingerprint in one guarded update. It returns ErrNotFound when the
	// token was already revoked or does not exist, which is how concurrent
	// rotations of the same token are serialized: exactly one caller wins.
	MarkRotated(ctx context.Context, hash string, replacedByHash string) error

	// RevokeRefreshToken flips revoked=1 regardless of prior state.
	RevokeRefreshToken(ctx context.Context, hash string) error

	// RevokeAllUserRefreshTokens bulk revocation for a user (breach response,
	// password reset, role change). Returns the number of tokens revoked.
	RevokeAllUserRefreshTokens(ctx context.Context, userID string) (int64, error)

	// DeleteExpiredRefreshTokens is housekeeping.
	DeleteExpiredRefreshTokens(ctx context.Context) error
}

type RevokedTokens interface {
	// CreateRevokedToken adds a jti to the blacklist. Re-blacklisting an
	// already-present jti is a no-op, not an error.
	CreateRevokedToken(ctx context.Context, t domain.RevokedToken) error

	// IsTokenRevoked reports whether the jti is blacklisted.
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)

	// GetRevokedToken returns the full blacklist entry, subject and reason
	// included, for audit.
	GetRevokedToken(ctx context.Context, jti string) (domain.RevokedToken, error)

	// DeleteExpiredRevokedTokens prunes entries whose tokens have expired on
	// their own and no longer need blacklisting.
	DeleteExpiredRevokedTokens(ctx context.Context) error
}

type RecoveryTokens interface {
	// CreateRecoveryToken stores a new recovery token record.
	CreateRecoveryToken(ctx context.Context, t domain.RecoveryToken) error

	// GetRecoveryTokenByHash returns the token by its fingerprint.
	GetRecoveryTokenByHash(ctx context.Context, hash string) (domain.RecoveryToken, error)

	// MarkRecoveryTokenUsed consumes the token so it cannot be redeemed again.
	MarkRecoveryTokenUsed(ctx context.Context, id string) error

	// DeleteExpiredRecoveryTokens is housekeeping.
	DeleteExpiredRecoveryTokens(ctx context.Context) error
}
