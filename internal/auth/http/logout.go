package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/quollify/gatekey/internal/auth/service"
	"github.com/quollify/gatekey/pkg/httpx"
)

// LogoutHandler blacklists the bearer access token and revokes the supplied
// refresh token.
type LogoutHandler struct {
	LogoutService *service.LogoutService
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ServeHTTP godoc
//
//	@Summary		Log out
//	@Description	Invalidates the bearer access token immediately and revokes the
//	@Description	refresh token so it cannot mint successors.
//	@Tags			Auth
//	@Accept			json
//	@Security		BearerAuth
//	@Param			request	body	logoutRequest	false	"refresh token to revoke"
//	@Success		204
//	@Failure		401	{object}	object	"invalid access token"
//	@Router			/v1/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, prefix) {
		httpx.WriteError(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req logoutRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // body is optional
	}

	err := h.LogoutService.Logout(r.Context(), strings.TrimPrefix(header, prefix), req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
