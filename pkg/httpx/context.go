package httpx

import (
	"context"

	"github.com/quollify/gatekey/pkg/jwtx"
)

type ctxKey int

const (
	claimsKey ctxKey = iota
	emailKey
	roleKey
)

// WithClaims stores verified access-token claims on the context.
func WithClaims(ctx context.Context, claims jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, claimsKey, claims)
	ctx = context.WithValue(ctx, emailKey, claims.Subject)
	return context.WithValue(ctx, roleKey, claims.Role)
}

// ClaimsFromContext returns the claims attached by the authn middleware.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(jwtx.Claims)
	return c, ok
}

// EmailFromContext returns the authenticated subject email, if present.
func EmailFromContext(ctx context.Context) (string, bool) {
	e, ok := ctx.Value(emailKey).(string)
	return e, ok
}

// RoleFromContext returns the authenticated role, if present.
func RoleFromContext(ctx context.Context) (string, bool) {
	r, ok := ctx.Value(roleKey).(string)
	return r, ok
}
