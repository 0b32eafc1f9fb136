package service_test

import (
	"context"
	"testing"

	"github.com/quollify/gatekey/internal/auth/domain"
	"github.com/quollify/gatekey/internal/auth/service"
	"github.com/quollify/gatekey/pkg/cryptox"
	"github.com/quollify/gatekey/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	t.Run("defaults to enabled client", func(t *testing.T) {
		u := e.register(t, "new@example.com")
		require.Equal(t, domain.RoleClient, u.Role)
		require.True(t, u.Enabled)
		require.NotEmpty(t, u.ID)

		// Raw password never stored.
		require.NotContains(t, u.PasswordHash, testPassword)
		require.NoError(t, cryptox.VerifyPassword(testPassword, u.PasswordHash))
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, err := e.auth.Register(ctx, "Other", "User", "new@example.com", "another password")
		require.ErrorIs(t, err, service.ErrEmailAlreadyExists)
	})

	t.Run("email is case-insensitive", func(t *testing.T) {
		_, err := e.auth.Register(ctx, "Other", "User", "NEW@example.com", "another password")
		require.ErrorIs(t, err, service.ErrEmailAlreadyExists)
	})
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "alice@example.com")

	t.Run("issues a valid token pair", func(t *testing.T) {
		pair := e.login(t, "alice@example.com")
		require.Equal(t, "Bearer", pair.TokenType)
		require.Positive(t, pair.ExpiresIn)

		access, err := e.verifier.Verify(pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", access.Subject)
		require.Equal(t, string(domain.RoleClient), access.Role)
		require.Equal(t, jwtx.TokenTypeAccess, access.TokenType)
		require.NotEmpty(t, access.ID)

		refresh, err := e.verifier.Verify(pair.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, jwtx.TokenTypeRefresh, refresh.TokenType)
		require.Empty(t, refresh.Role)

		// The refresh token is persisted by fingerprint, never raw.
		rec, err := e.store.RefreshTokens().GetRefreshTokenByHash(ctx,
			cryptox.FingerprintToken(pair.RefreshToken))
		require.NoError(t, err)
		require.NotEqual(t, pair.RefreshToken, rec.TokenHash)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := e.auth.Login(ctx, "nobody@example.com", testPassword)
		require.ErrorIs(t, err, service.ErrUserNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := e.auth.Login(ctx, "alice@example.com", "wrong password")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
	})
}
