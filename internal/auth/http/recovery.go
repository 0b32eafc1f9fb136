package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/quollify/gatekey/internal/auth/service"
	"github.com/quollify/gatekey/pkg/httpx"
)

// RecoveryHandler serves the forgot-password flow.
type RecoveryHandler struct {
	RecoveryService *service.RecoveryService
}

type recoverRequest struct {
	Email string `json:"email"`
}

// HandleRequest godoc
//
//	@Summary		Request a password recovery email
//	@Description	Mints a single-use recovery token valid for 15 minutes and
//	@Description	enqueues an email carrying the recovery link.
//	@Tags			Recovery
//	@Accept			json
//	@Success		202
//	@Failure		404	{object}	object	"user not found"
//	@Router			/v1/auth/recover [post].
func (h *RecoveryHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	var req recoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.RecoveryService.RequestRecovery(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// HandleReset godoc
//
//	@Summary		Reset the password with a recovery token
//	@Description	Consumes the recovery token, sets the new password, and revokes
//	@Description	every session of the account in one atomic step.
//	@Tags			Recovery
//	@Accept			json
//	@Success		204
//	@Failure		401	{object}	object	"invalid or expired token"
//	@Router			/v1/auth/reset-password [post].
func (h *RecoveryHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Token == "" || req.NewPassword == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "token and new_password are required")
		return
	}

	if err := h.RecoveryService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
