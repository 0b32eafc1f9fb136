package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/quollify/gatekey/internal/auth/domain"
	"github.com/quollify/gatekey/internal/auth/service"
	"github.com/quollify/gatekey/internal/auth/store"
	"github.com/quollify/gatekey/pkg/cryptox"
	"github.com/quollify/gatekey/pkg/idx"
	"github.com/quollify/gatekey/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestRefreshRotation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "bob@example.com")
	pair := e.login(t, "bob@example.com")

	next, err := e.tokens.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)
	require.NotEqual(t, pair.AccessToken, next.AccessToken)

	// The old record is revoked and points at its successor.
	old, err := e.store.RefreshTokens().GetRefreshTokenByHash(ctx,
		cryptox.FingerprintToken(pair.RefreshToken))
	require.NoError(t, err)
	require.True(t, old.Revoked)
	require.Equal(t, cryptox.FingerprintToken(next.RefreshToken), old.ReplacedBy)

	// The successor is live.
	fresh, err := e.store.RefreshTokens().GetRefreshTokenByHash(ctx,
		cryptox.FingerprintToken(next.RefreshToken))
	require.NoError(t, err)
	require.False(t, fresh.Revoked)
}

func TestRefreshReuseIsABreach(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "victim@example.com")

	pair := e.login(t, "victim@example.com")
	next, err := e.tokens.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	// Attacker replays the consumed token.
	_, err = e.tokens.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrSecurityBreach)

	// The mass revocation committed: even the legitimate successor is dead.
	rec, err := e.store.RefreshTokens().GetRefreshTokenByHash(ctx,
		cryptox.FingerprintToken(next.RefreshToken))
	require.NoError(t, err)
	require.True(t, rec.Revoked)

	_, err = e.tokens.Refresh(ctx, next.RefreshToken)
	require.ErrorIs(t, err, service.ErrSecurityBreach)

	// The user can start over with a clean login.
	again := e.login(t, "victim@example.com")
	_, err = e.tokens.Refresh(ctx, again.RefreshToken)
	require.NoError(t, err)
	_ = u
}

func TestRefreshRejectsBadTokens(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "carl@example.com")
	pair := e.login(t, "carl@example.com")

	t.Run("garbage", func(t *testing.T) {
		_, err := e.tokens.Refresh(ctx, "not.a.jwt")
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := e.tokens.Refresh(ctx, pair.AccessToken)
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("valid signature but unknown to the store", func(t *testing.T) {
		signer, err := jwtx.NewSignerHS256(testSecret)
		require.NoError(t, err)
		stray, err := signer.Sign(jwtx.NewRefreshClaims("carl@example.com", time.Minute, testIssuer, time.Now()))
		require.NoError(t, err)

		_, err = e.tokens.Refresh(ctx, stray)
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("cryptographically expired reads as invalid", func(t *testing.T) {
		signer, err := jwtx.NewSignerHS256(testSecret)
		require.NoError(t, err)
		expired, err := signer.Sign(jwtx.NewRefreshClaims("carl@example.com",
			time.Minute, testIssuer, time.Now().Add(-time.Hour)))
		require.NoError(t, err)

		_, err = e.tokens.Refresh(ctx, expired)
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("stored record expiry is TokenExpired", func(t *testing.T) {
		u, err := e.store.Users().GetUserByEmail(ctx, "carl@example.com")
		require.NoError(t, err)

		// Valid JWT whose stored record already lapsed.
		signer, err := jwtx.NewSignerHS256(testSecret)
		require.NoError(t, err)
		stale, err := signer.Sign(jwtx.NewRefreshClaims("carl@example.com", time.Hour, testIssuer, time.Now()))
		require.NoError(t, err)

		now := time.Now().UTC()
		require.NoError(t, e.store.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
			ID:        idx.New().String(),
			UserID:    u.ID,
			TokenHash: cryptox.FingerprintToken(stale),
			ExpiresAt: now.Add(-time.Minute),
			CreatedAt: now.Add(-time.Hour),
			UpdatedAt: now.Add(-time.Hour),
		}))

		_, err = e.tokens.Refresh(ctx, stale)
		require.ErrorIs(t, err, service.ErrTokenExpired)
	})

	t.Run("vanished owner is UserNotFound", func(t *testing.T) {
		pair := e.login(t, "carl@example.com")

		orphaned := *e.tokens
		orphaned.Store = ghostUserStore{e.store}

		_, err := orphaned.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, service.ErrUserNotFound)
	})
}

// ghostUserStore serves token records normally but reports every user as
// missing, mimicking an account deleted out from under its sessions.
type ghostUserStore struct {
	store.Store
}

func (g ghostUserStore) Users() store.Users { return ghostUsers{g.Store.Users()} }

type ghostUsers struct {
	store.Users
}

func (ghostUsers) GetUserByID(context.Context, string) (domain.User, error) {
	return domain.User{}, store.ErrNotFound
}

func TestIsAccessTokenValid(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "dora@example.com")
	pair := e.login(t, "dora@example.com")

	t.Run("live token is valid", func(t *testing.T) {
		ok, err := e.tokens.IsAccessTokenValid(ctx, pair.AccessToken)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		ok, err := e.tokens.IsAccessTokenValid(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("tampered token", func(t *testing.T) {
		ok, err := e.tokens.IsAccessTokenValid(ctx, pair.AccessToken+"x")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("blacklisted jti", func(t *testing.T) {
		claims, err := e.verifier.Verify(pair.AccessToken)
		require.NoError(t, err)

		require.NoError(t, e.store.RevokedTokens().CreateRevokedToken(ctx, domain.RevokedToken{
			JTI:       claims.ID,
			Reason:    domain.RevokeReasonLogout,
			ExpiresAt: claims.Expiry(),
			RevokedAt: time.Now().UTC(),
		}))

		ok, err := e.tokens.IsAccessTokenValid(ctx, pair.AccessToken)
		require.NoError(t, err)
		require.False(t, ok)
	})
}
