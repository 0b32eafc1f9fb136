package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/quollify/gatekey/internal/auth/service"
	"github.com/quollify/gatekey/pkg/httpx"
)

// RoleHandler toggles a user's role. Admin only.
type RoleHandler struct {
	RoleService *service.RoleService
}

type changeRoleRequest struct {
	Email string `json:"email"`
	// Token is the target user's current access token, blacklisted so the
	// old role dies immediately. Defaults to the caller's bearer token when
	// an admin demotes themselves.
	Token string `json:"token,omitempty"`
}

type changeRoleResponse struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ServeHTTP godoc
//
//	@Summary		Toggle a user's role
//	@Description	Flips the user between ADMIN and CLIENT, revokes all their refresh
//	@Description	sessions, and blacklists the supplied access token.
//	@Tags			Roles
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		changeRoleRequest	true	"target user"
//	@Success		200		{object}	changeRoleResponse
//	@Failure		403		{object}	object	"caller is not an admin"
//	@Failure		404		{object}	object	"user not found"
//	@Router			/v1/users/role [post].
func (h *RoleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req changeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "email is required")
		return
	}

	token := req.Token
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}

	u, err := h.RoleService.ChangeRole(r.Context(), req.Email, token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, r, http.StatusOK, changeRoleResponse{
		Email: u.Email,
		Role:  string(u.Role),
	})
}
