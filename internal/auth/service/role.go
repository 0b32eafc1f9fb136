package service

import (
	"context"
	"errors"
	"time"

	"github.com/quollify/gatekey/internal/auth/domain"
	"github.com/quollify/gatekey/internal/auth/store"
	"github.com/quollify/gatekey/pkg/jwtx"
	"github.com/quollify/gatekey/pkg/slogx"
)

// RoleService toggles a user between ADMIN and CLIENT. Changing privileges
// invalidates every session the user holds: stale claims in a still-valid
// access token would otherwise keep the old role alive until expiry.
type RoleService struct {
	Store    store.Store
	Revoked  store.RevokedTokens // may be cache-wrapped
	Verifier jwtx.Verifier
}

// ChangeRole flips the role of the user identified by email. currentToken is
// the user's live access token; its jti is blacklisted so the old role dies
// immediately rather than at token expiry.
func (s *RoleService) ChangeRole(ctx context.Context, email, currentToken string) (domain.User, error) {
	l := slogx.FromContext(ctx)
	email = normalizeEmail(email)

	claims, err := s.Verifier.Verify(currentToken)
	if err != nil {
		return domain.User{}, ErrInvalidToken
	}
	if err := claims.ValidateTokenType(jwtx.TokenTypeAccess); err != nil {
		return domain.User{}, ErrInvalidToken
	}

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}

	newRole := u.Role.Toggle()

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdateRole(ctx, u.ID, newRole); err != nil {
			return err
		}
		_, err := tx.RefreshTokens().RevokeAllUserRefreshTokens(ctx, u.ID)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}

	entry := domain.RevokedToken{
		JTI:       claims.ID,
		Subject:   claims.Subject,
		Reason:    domain.RevokeReasonRoleChange,
		ExpiresAt: claims.Expiry(),
		RevokedAt: time.Now().UTC(),
	}
	if err := s.Revoked.CreateRevokedToken(ctx, entry); err != nil {
		return domain.User{}, err
	}

	u.Role = newRole
	l.Info("role changed, sessions invalidated", "user_id", u.ID, "role", string(newRole))
	return u, nil
}
