package cache

import (
	"context"
	"time"

	"github.com/quollify/gatekey/internal/auth/domain"
	"github.com/quollify/gatekey/internal/auth/store"
	"github.com/quollify/gatekey/pkg/slogx"
)

// KV is the minimal key/value surface the blacklist cache needs. The redis
// adapter implements it in production; tests use an in-memory fake.
type KV interface {
	// SetNX writes key with a ttl if absent. Existing keys are left alone.
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) error

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)
}

const keyPrefix = "gatekey:revoked:"

// RevokedTokens layers a KV cache over the persistent blacklist so the hot
// path of access-token validation rarely touches the database. The database
// stays authoritative: cache failures degrade to DB lookups, never to
// accepting a revoked token.
type RevokedTokens struct {
	inner store.RevokedTokens
	kv    KV
}

func NewRevokedTokens(inner store.RevokedTokens, kv KV) *RevokedTokens {
	return &RevokedTokens{inner: inner, kv: kv}
}

func (c *RevokedTokens) CreateRevokedToken(ctx context.Context, t domain.RevokedToken) error {
	if err := c.inner.CreateRevokedToken(ctx, t); err != nil {
		return err
	}

	ttl := time.Until(t.ExpiresAt)
	if ttl <= 0 {
		return nil // token already expired on its own, nothing to cache
	}

	if err := c.kv.SetNX(ctx, keyPrefix+t.JTI, t.Reason, ttl); err != nil {
		slogx.FromContext(ctx).Warn("blacklist cache write failed", "error", err)
	}
	return nil
}

func (c *RevokedTokens) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	hit, err := c.kv.Exists(ctx, keyPrefix+jti)
	if err != nil {
		slogx.FromContext(ctx).Warn("blacklist cache read failed", "error", err)
	} else if hit {
		return true, nil
	}

	revoked, err := c.inner.IsTokenRevoked(ctx, jti)
	if err != nil {
		return false, err
	}

	if revoked {
		// Backfill so the next lookup for this jti is a cache hit. TTL is
		// bounded by the access-token lifetime, so a flat hour is plenty.
		if err := c.kv.SetNX(ctx, keyPrefix+jti, "", time.Hour); err != nil {
			slogx.FromContext(ctx).Warn("blacklist cache backfill failed", "error", err)
		}
	}
	return revoked, nil
}

// GetRevokedToken is an audit read; it goes straight to the database since
// the cache only tracks presence.
func (c *RevokedTokens) GetRevokedToken(ctx context.Context, jti string) (domain.RevokedToken, error) {
	return c.inner.GetRevokedToken(ctx, jti)
}

func (c *RevokedTokens) DeleteExpiredRevokedTokens(ctx context.Context) error {
	// Cache entries expire on their own via TTL.
	return c.inner.DeleteExpiredRevokedTokens(ctx)
}
