package httpx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quollify/gatekey/pkg/httpx"
	"github.com/quollify/gatekey/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testIssuer = "gatekey-auth"

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type fakeRevocations struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.revoked[jti], nil
}

func signAccessToken(t *testing.T, email, role string) (string, jwtx.Claims) {
	t.Helper()

	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)

	claims := jwtx.NewAccessClaims(email, role, time.Minute, testIssuer, time.Now())
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	return token, claims
}

func protectedHandler(t *testing.T, wantEmail string) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, ok := httpx.EmailFromContext(r.Context())
		require.True(t, ok)
		require.Equal(t, wantEmail, email)
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthnMiddleware(t *testing.T) {
	verifier, err := jwtx.NewVerifierHS256(testSecret, testIssuer)
	require.NoError(t, err)

	t.Run("accepts valid access token", func(t *testing.T) {
		token, _ := signAccessToken(t, "user@example.com", "CLIENT")

		h := httpx.Chain(protectedHandler(t, "user@example.com"),
			httpx.AuthnMiddleware(verifier, &fakeRevocations{}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("rejects missing header", func(t *testing.T) {
		h := httpx.Chain(protectedHandler(t, ""),
			httpx.AuthnMiddleware(verifier, &fakeRevocations{}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects refresh token on access routes", func(t *testing.T) {
		signer, err := jwtx.NewSignerHS256(testSecret)
		require.NoError(t, err)
		token, err := signer.Sign(jwtx.NewRefreshClaims("user@example.com", time.Minute, testIssuer, time.Now()))
		require.NoError(t, err)

		h := httpx.Chain(protectedHandler(t, ""),
			httpx.AuthnMiddleware(verifier, &fakeRevocations{}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects blacklisted jti", func(t *testing.T) {
		token, claims := signAccessToken(t, "user@example.com", "CLIENT")

		h := httpx.Chain(protectedHandler(t, ""),
			httpx.AuthnMiddleware(verifier, &fakeRevocations{
				revoked: map[string]bool{claims.ID: true},
			}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	verifier, err := jwtx.NewVerifierHS256(testSecret, testIssuer)
	require.NoError(t, err)

	newRequest := func(role string) *http.Request {
		token, _ := signAccessToken(t, "user@example.com", role)
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		return req
	}

	h := httpx.Chain(protectedHandler(t, "user@example.com"),
		httpx.AuthnMiddleware(verifier, &fakeRevocations{}),
		httpx.RequireRole("ADMIN"))

	t.Run("allows matching role", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest("ADMIN"))
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("forbids other roles", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest("CLIENT"))
		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}
