package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quollify/gatekey/internal/auth/domain"
	"github.com/quollify/gatekey/internal/auth/store/cache"
	"github.com/quollify/gatekey/internal/auth/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

type fakeKV struct {
	data map[string]string
	err  error

	setCalls    int
	existsCalls int
}

func newFakeKV() *fakeKV { return &fakeKV{data: map[string]string{}} }

func (f *fakeKV) SetNX(_ context.Context, key, value string, _ time.Duration) error {
	f.setCalls++
	if f.err != nil {
		return f.err
	}
	if _, ok := f.data[key]; !ok {
		f.data[key] = value
	}
	return nil
}

func (f *fakeKV) Exists(_ context.Context, key string) (bool, error) {
	f.existsCalls++
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.data[key]
	return ok, nil
}

func newBackingStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestRevokedTokensCache(t *testing.T) {
	ctx := context.Background()

	entry := domain.RevokedToken{
		JTI:       "jti-cached",
		Reason:    domain.RevokeReasonLogout,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
		RevokedAt: time.Now().UTC(),
	}

	t.Run("write populates cache and db", func(t *testing.T) {
		st := newBackingStore(t)
		kv := newFakeKV()
		c := cache.NewRevokedTokens(st.RevokedTokens(), kv)

		require.NoError(t, c.CreateRevokedToken(ctx, entry))

		// Cache hit: no DB round trip needed.
		revoked, err := c.IsTokenRevoked(ctx, entry.JTI)
		require.NoError(t, err)
		require.True(t, revoked)

		// DB holds it too.
		revoked, err = st.RevokedTokens().IsTokenRevoked(ctx, entry.JTI)
		require.NoError(t, err)
		require.True(t, revoked)
	})

	t.Run("cold cache backfills from db", func(t *testing.T) {
		st := newBackingStore(t)
		require.NoError(t, st.RevokedTokens().CreateRevokedToken(ctx, entry))

		kv := newFakeKV()
		c := cache.NewRevokedTokens(st.RevokedTokens(), kv)

		revoked, err := c.IsTokenRevoked(ctx, entry.JTI)
		require.NoError(t, err)
		require.True(t, revoked)
		require.Equal(t, 1, kv.setCalls)

		// Second lookup is served by the cache.
		_, err = c.IsTokenRevoked(ctx, entry.JTI)
		require.NoError(t, err)
		require.Equal(t, 1, kv.setCalls)
	})

	t.Run("cache outage degrades to db", func(t *testing.T) {
		st := newBackingStore(t)
		require.NoError(t, st.RevokedTokens().CreateRevokedToken(ctx, entry))

		kv := newFakeKV()
		kv.err = errors.New("connection refused")
		c := cache.NewRevokedTokens(st.RevokedTokens(), kv)

		revoked, err := c.IsTokenRevoked(ctx, entry.JTI)
		require.NoError(t, err)
		require.True(t, revoked)
	})

	t.Run("unknown jti is not revoked", func(t *testing.T) {
		st := newBackingStore(t)
		kv := newFakeKV()
		c := cache.NewRevokedTokens(st.RevokedTokens(), kv)

		revoked, err := c.IsTokenRevoked(ctx, "jti-unknown")
		require.NoError(t, err)
		require.False(t, revoked)
		require.Zero(t, kv.setCalls)
	})
}
