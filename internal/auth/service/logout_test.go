package service_test

import (
	"context"
	"testing"

	"github.com/quollify/gatekey/internal/auth/domain"
	"github.com/quollify/gatekey/internal/auth/service"
	"github.com/quollify/gatekey/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestLogout(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "eve@example.com")

	t.Run("kills both tokens", func(t *testing.T) {
		pair := e.login(t, "eve@example.com")

		require.NoError(t, e.logout.Logout(ctx, pair.AccessToken, pair.RefreshToken))

		// Access token is blacklisted for its remaining lifetime.
		ok, err := e.tokens.IsAccessTokenValid(ctx, pair.AccessToken)
		require.NoError(t, err)
		require.False(t, ok)

		// The blacklist entry records who owned the token and why it died.
		claims, err := e.verifier.Verify(pair.AccessToken)
		require.NoError(t, err)
		entry, err := e.store.RevokedTokens().GetRevokedToken(ctx, claims.ID)
		require.NoError(t, err)
		require.Equal(t, "eve@example.com", entry.Subject)
		require.Equal(t, domain.RevokeReasonLogout, entry.Reason)

		// Refresh token row is revoked, so replaying it is a breach.
		rec, err := e.store.RefreshTokens().GetRefreshTokenByHash(ctx,
			cryptox.FingerprintToken(pair.RefreshToken))
		require.NoError(t, err)
		require.True(t, rec.Revoked)
	})

	t.Run("missing refresh token is tolerated", func(t *testing.T) {
		pair := e.login(t, "eve@example.com")
		require.NoError(t, e.logout.Logout(ctx, pair.AccessToken, ""))

		ok, err := e.tokens.IsAccessTokenValid(ctx, pair.AccessToken)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("double logout is idempotent", func(t *testing.T) {
		pair := e.login(t, "eve@example.com")
		require.NoError(t, e.logout.Logout(ctx, pair.AccessToken, pair.RefreshToken))
		require.NoError(t, e.logout.Logout(ctx, pair.AccessToken, pair.RefreshToken))
	})

	t.Run("garbage access token rejected", func(t *testing.T) {
		err := e.logout.Logout(ctx, "garbage", "")
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("refresh token in the access slot rejected", func(t *testing.T) {
		pair := e.login(t, "eve@example.com")
		err := e.logout.Logout(ctx, pair.RefreshToken, "")
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})
}
