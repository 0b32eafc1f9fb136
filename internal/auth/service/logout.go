package service

import (
	"context"
	"errors"
	"time"

	"github.com/quollify/gatekey/internal/auth/domain"
	"github.com/quollify/gatekey/internal/auth/store"
	"github.com/quollify/gatekey/pkg/cryptox"
	"github.com/quollify/gatekey/pkg/jwtx"
	"github.com/quollify/gatekey/pkg/slogx"
)

// LogoutService terminates a session on both fronts: the access token's jti
// goes on the blacklist so its remaining lifetime is useless, and the refresh
// token row is revoked so it cannot mint successors.
type LogoutService struct {
	Store    store.Store
	Revoked  store.RevokedTokens // may be cache-wrapped
	Verifier jwtx.Verifier
}

// Logout invalidates the presented access token and, when one is supplied,
// the refresh token. A refresh token that is missing or already revoked does
// not fail the logout; the end state the caller asked for already holds.
func (s *LogoutService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	l := slogx.FromContext(ctx)

	claims, err := s.Verifier.Verify(accessToken)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			// Expired access tokens reject themselves, but a live refresh
			// token may still exist. Fall through to revoke it.
			return s.revokeRefresh(ctx, refreshToken)
		}
		return ErrInvalidToken
	}
	if err := claims.ValidateTokenType(jwtx.TokenTypeAccess); err != nil {
		return ErrInvalidToken
	}

	entry := domain.RevokedToken{
		JTI:       claims.ID,
		Subject:   claims.Subject,
		Reason:    domain.RevokeReasonLogout,
		ExpiresAt: claims.Expiry(),
		RevokedAt: time.Now().UTC(),
	}
	if err := s.Revoked.CreateRevokedToken(ctx, entry); err != nil {
		return err
	}

	if err := s.revokeRefresh(ctx, refreshToken); err != nil {
		return err
	}

	l.Info("user logged out", "email", claims.Subject)
	return nil
}

func (s *LogoutService) revokeRefresh(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	fp := cryptox.FingerprintToken(refreshToken)
	return s.Store.RefreshTokens().RevokeRefreshToken(ctx, fp)
}
