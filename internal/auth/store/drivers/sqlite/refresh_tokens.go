package sqlite

import (
	"context"
	"database/sql"

	"github.com/quollify/gatekey/internal/auth/domain"
	"github.com/quollify/gatekey/internal/auth/store"
)

type refreshTokensRepo struct {
	db dbtx
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, revoked, replaced_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.TokenHash, t.ExpiresAt, t.Revoked, t.ReplacedBy, t.CreatedAt, t.UpdatedAt)
	if err != nil && isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(
	ctx context.Context,
	hash string,
) (domain.RefreshToken, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, expires_at, revoked, replaced_by, created_at, updated_at
		 FROM refresh_tokens WHERE token_hash = ?`, hash)

	var t domain.RefreshToken
	err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt,
		&t.Revoked, &t.ReplacedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return t, nil
}

// MarkRotated only succeeds on a token that is still active. Concurrent
// rotations of the same token race on this UPDATE and exactly one wins; the
// losers get ErrNotFound and take the reuse path.
func (r *refreshTokensRepo) MarkRotated(ctx context.Context, hash string, replacedByHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens
		 SET revoked = 1, replaced_by = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE token_hash = ? AND revoked = 0`,
		replacedByHash, hash)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, hash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1, updated_at = CURRENT_TIMESTAMP WHERE token_hash = ?`,
		hash)
	return err
}

func (r *refreshTokensRepo) RevokeAllUserRefreshTokens(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens
		 SET revoked = 1, updated_at = CURRENT_TIMESTAMP
		 WHERE user_id = ? AND revoked = 0`,
		userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < CURRENT_TIMESTAMP`)
	return err
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
