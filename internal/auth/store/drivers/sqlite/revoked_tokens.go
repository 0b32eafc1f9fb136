package sqlite

import (
	"context"

	"github.com/quollify/gatekey/internal/auth/domain"
)

type revokedTokensRepo struct {
	db dbtx
}

// CreateRevokedToken blacklists a jti. The insert is idempotent so logout,
// role change and breach handling can all blacklist the same token without
// coordinating.
func (r *revokedTokensRepo) CreateRevokedToken(ctx context.Context, t domain.RevokedToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO revoked_tokens (jti, subject, reason, expires_at, revoked_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (jti) DO NOTHING`,
		t.JTI, t.Subject, t.Reason, t.ExpiresAt, t.RevokedAt)
	return err
}

func (r *revokedTokensRepo) GetRevokedToken(ctx context.Context, jti string) (domain.RevokedToken, error) {
	var t domain.RevokedToken
	err := r.db.QueryRowContext(ctx,
		`SELECT jti, subject, reason, expires_at, revoked_at FROM revoked_tokens WHERE jti = ?`,
		jti).Scan(&t.JTI, &t.Subject, &t.Reason, &t.ExpiresAt, &t.RevokedAt)
	if err != nil {
		return domain.RevokedToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *revokedTokensRepo) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM revoked_tokens WHERE jti = ?`, jti).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *revokedTokensRepo) DeleteExpiredRevokedTokens(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at < CURRENT_TIMESTAMP`)
	return err
}
