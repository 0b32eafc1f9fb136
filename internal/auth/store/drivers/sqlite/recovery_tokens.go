package sqlite

import (
	"context"

	"github.com/quollify/gatekey/internal/auth/domain"
	"github.com/quollify/gatekey/internal/auth/store"
)

type recoveryTokensRepo struct {
	db dbtx
}

func (r *recoveryTokensRepo) CreateRecoveryToken(ctx context.Context, t domain.RecoveryToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO recovery_tokens (id, user_id, token_hash, expires_at, used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.TokenHash, t.ExpiresAt, t.Used, t.CreatedAt)
	if err != nil && isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *recoveryTokensRepo) GetRecoveryTokenByHash(
	ctx context.Context,
	hash string,
) (domain.RecoveryToken, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, expires_at, used, created_at
		 FROM recovery_tokens WHERE token_hash = ?`, hash)

	var t domain.RecoveryToken
	err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if err != nil {
		return domain.RecoveryToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *recoveryTokensRepo) MarkRecoveryTokenUsed(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recovery_tokens SET used = 1 WHERE id = ? AND used = 0`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *recoveryTokensRepo) DeleteExpiredRecoveryTokens(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM recovery_tokens WHERE expires_at < CURRENT_TIMESTAMP`)
	return err
}
