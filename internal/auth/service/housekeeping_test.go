package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/quollify/gatekey/internal/auth/domain"
	"github.com/quollify/gatekey/internal/auth/service"
	"github.com/quollify/gatekey/internal/auth/store"
	"github.com/quollify/gatekey/pkg/idx"
	"github.com/quollify/gatekey/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingCleanup(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "janitor@example.com")

	past := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, e.store.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID: idx.New().String(), UserID: u.ID, TokenHash: "stale-refresh",
		ExpiresAt: past, CreatedAt: past, UpdatedAt: past,
	}))
	require.NoError(t, e.store.RevokedTokens().CreateRevokedToken(ctx, domain.RevokedToken{
		JTI: "stale-jti", ExpiresAt: past, RevokedAt: past,
	}))
	require.NoError(t, e.store.RecoveryTokens().CreateRecoveryToken(ctx, domain.RecoveryToken{
		ID: idx.New().String(), UserID: u.ID, TokenHash: "stale-recovery",
		ExpiresAt: past, CreatedAt: past,
	}))

	hk := service.NewHousekeepingService(e.store, slogx.New(slogx.Config{Service: "test"}), time.Hour)
	hk.Cleanup()

	_, err := e.store.RefreshTokens().GetRefreshTokenByHash(ctx, "stale-refresh")
	require.ErrorIs(t, err, store.ErrNotFound)

	revoked, err := e.store.RevokedTokens().IsTokenRevoked(ctx, "stale-jti")
	require.NoError(t, err)
	require.False(t, revoked)

	_, err = e.store.RecoveryTokens().GetRecoveryTokenByHash(ctx, "stale-recovery")
	require.ErrorIs(t, err, store.ErrNotFound)
}
