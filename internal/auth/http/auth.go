package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/quollify/gatekey/internal/auth/service"
	"github.com/quollify/gatekey/pkg/httpx"
)

// AuthHandler serves registration, login, refresh and token validation.
type AuthHandler struct {
	AuthService  *service.AuthService
	TokenService *service.TokenService
}

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type registerResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// HandleRegister godoc
//
//	@Summary		Register a new account
//	@Description	Creates a CLIENT account. Email must be unused.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		registerRequest	true	"account details"
//	@Success		201		{object}	registerResponse
//	@Failure		400		{object}	object	"malformed request"
//	@Failure		409		{object}	object	"email already registered"
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "email and password are required")
		return
	}

	u, err := h.AuthService.Register(r.Context(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, r, http.StatusCreated, registerResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin godoc
//
//	@Summary		Log in with email and password
//	@Description	Issues an access/refresh token pair on success.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"credentials"
//	@Success		200		{object}	domain.TokenPair
//	@Failure		401		{object}	object	"invalid credentials"
//	@Failure		404		{object}	object	"user not found"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}

	pair, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, r, http.StatusOK, pair)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// HandleRefresh godoc
//
//	@Summary		Exchange a refresh token
//	@Description	Rotates the refresh token and returns a new pair. Replaying a
//	@Description	consumed refresh token terminates every session of the account.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		refreshRequest	true	"refresh token"
//	@Success		200		{object}	domain.TokenPair
//	@Failure		401		{object}	object	"invalid, expired, or reused token"
//	@Router			/v1/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.RefreshToken == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "refresh_token is required")
		return
	}

	pair, err := h.TokenService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, r, http.StatusOK, pair)
}

type validateResponse struct {
	Valid bool `json:"valid"`
}

// HandleValidate godoc
//
//	@Summary		Validate an access token
//	@Description	Reports whether the bearer token is a live access token, checking
//	@Description	signature, type, and the revocation blacklist in that order.
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	validateResponse
//	@Router			/v1/auth/validate [get].
func (h *AuthHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, prefix) {
		httpx.WriteJSON(w, r, http.StatusOK, validateResponse{Valid: false})
		return
	}

	valid, err := h.TokenService.IsAccessTokenValid(r.Context(), strings.TrimPrefix(header, prefix))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, r, http.StatusOK, validateResponse{Valid: valid})
}
