package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/quollify/gatekey/pkg/jwtx"
	"github.com/quollify/gatekey/pkg/slogx"
)

// RevocationChecker reports whether a token ID has been blacklisted.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthnMiddleware verifies the bearer access token on each request. Tokens
// are checked for a valid signature and type before the blacklist lookup,
// so revocation storage is only consulted for otherwise-valid tokens.
func AuthnMiddleware(verifier jwtx.Verifier, revocations RevocationChecker) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				WriteError(w, r, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.Verify(raw)
			if err != nil {
				WriteError(w, r, http.StatusUnauthorized, "invalid token")
				return
			}

			if err := claims.ValidateTokenType(jwtx.TokenTypeAccess); err != nil {
				WriteError(w, r, http.StatusUnauthorized, "invalid token")
				return
			}

			revoked, err := revocations.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				slogx.FromContext(r.Context()).Error("revocation lookup failed", "error", err)
				WriteError(w, r, http.StatusInternalServerError, "internal error")
				return
			}
			if revoked {
				WriteError(w, r, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}
