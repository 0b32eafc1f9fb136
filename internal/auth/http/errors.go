package http

import (
	"errors"
	"net/http"

	"github.com/quollify/gatekey/internal/auth/service"
	"github.com/quollify/gatekey/pkg/httpx"
	"github.com/quollify/gatekey/pkg/slogx"
)

// writeServiceError maps service-layer sentinel errors onto HTTP statuses.
// Anything unmapped is an internal error and logged; details never leak to
// the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, r, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrInvalidToken):
		httpx.WriteError(w, r, http.StatusUnauthorized, "invalid token")
	case errors.Is(err, service.ErrTokenExpired):
		httpx.WriteError(w, r, http.StatusUnauthorized, "token expired")
	case errors.Is(err, service.ErrSecurityBreach):
		httpx.WriteError(w, r, http.StatusUnauthorized, "session terminated")
	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteError(w, r, http.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrEmailAlreadyExists):
		httpx.WriteError(w, r, http.StatusConflict, "email already registered")
	default:
		slogx.FromContext(r.Context()).Error("unhandled service error", "error", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal error")
	}
}
