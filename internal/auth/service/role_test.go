package service_test

import (
	"context"
	"testing"

	"github.com/quollify/gatekey/internal/auth/domain"
	"github.com/quollify/gatekey/internal/auth/service"
	"github.com/quollify/gatekey/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestChangeRole(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "frank@example.com")
	pair := e.login(t, "frank@example.com")

	t.Run("toggles role and invalidates sessions", func(t *testing.T) {
		changed, err := e.roles.ChangeRole(ctx, "frank@example.com", pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, changed.Role)

		stored, err := e.store.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, stored.Role)

		// The current access token carries the stale role and is dead now.
		ok, err := e.tokens.IsAccessTokenValid(ctx, pair.AccessToken)
		require.NoError(t, err)
		require.False(t, ok)

		// The blacklist entry names the affected account.
		claims, err := e.verifier.Verify(pair.AccessToken)
		require.NoError(t, err)
		entry, err := e.store.RevokedTokens().GetRevokedToken(ctx, claims.ID)
		require.NoError(t, err)
		require.Equal(t, "frank@example.com", entry.Subject)
		require.Equal(t, domain.RevokeReasonRoleChange, entry.Reason)

		// Every refresh session is revoked too.
		rec, err := e.store.RefreshTokens().GetRefreshTokenByHash(ctx,
			cryptox.FingerprintToken(pair.RefreshToken))
		require.NoError(t, err)
		require.True(t, rec.Revoked)
	})

	t.Run("next login carries the new role", func(t *testing.T) {
		fresh := e.login(t, "frank@example.com")
		claims, err := e.verifier.Verify(fresh.AccessToken)
		require.NoError(t, err)
		require.Equal(t, string(domain.RoleAdmin), claims.Role)
	})

	t.Run("unknown user", func(t *testing.T) {
		fresh := e.login(t, "frank@example.com")
		_, err := e.roles.ChangeRole(ctx, "nobody@example.com", fresh.AccessToken)
		require.ErrorIs(t, err, service.ErrUserNotFound)
	})

	t.Run("invalid current token", func(t *testing.T) {
		_, err := e.roles.ChangeRole(ctx, "frank@example.com", "garbage")
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("refresh token in the access slot rejected", func(t *testing.T) {
		fresh := e.login(t, "frank@example.com")
		_, err := e.roles.ChangeRole(ctx, "frank@example.com", fresh.RefreshToken)
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})
}
