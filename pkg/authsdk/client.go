package authsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the GateKey authentication service. It provides
// the unauthenticated operations and creates authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new auth service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates a new CLIENT account.
func (c *SDKClient) Register(ctx context.Context, firstName, lastName, email, password string) (*User, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"first_name": firstName,
		"last_name":  lastName,
		"email":      email,
		"password":   password,
	})
	if err != nil {
		return nil, err
	}

	var user User
	if err := decodeJSON(resp, &user, http.StatusCreated); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates with email and password and returns an authenticated
// session holding the issued token pair.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*Session, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var pair TokenResponse
	if err := decodeJSON(resp, &pair, http.StatusOK); err != nil {
		return nil, err
	}
	return newSession(c, &pair), nil
}

// Refresh exchanges a refresh token for a new token pair. Most callers should
// use a Session instead, which rotates automatically; this is the raw call
// for code that manages stored tokens itself.
func (c *SDKClient) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/refresh", "", map[string]string{
		"refresh_token": refreshToken,
	})
	if err != nil {
		return nil, err
	}

	var pair TokenResponse
	if err := decodeJSON(resp, &pair, http.StatusOK); err != nil {
		return nil, err
	}
	return &pair, nil
}

// NewSessionFromTokens creates a session from previously stored tokens, for
// example tokens persisted across a process restart. The session still
// refreshes automatically when the access token expires.
func (c *SDKClient) NewSessionFromTokens(accessToken, refreshToken string, expiresIn int64) *Session {
	return newSession(c, &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	})
}

// ValidateToken reports whether an access token is live: well signed, not
// expired, and not on the revocation blacklist.
func (c *SDKClient) ValidateToken(ctx context.Context, accessToken string) (bool, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, "/v1/auth/validate", accessToken, nil)
	if err != nil {
		return false, err
	}

	var result struct {
		Valid bool `json:"valid"`
	}
	if err := decodeJSON(resp, &result, http.StatusOK); err != nil {
		return false, err
	}
	return result.Valid, nil
}

// RequestRecovery starts the forgot-password flow for the account. The
// service mails a single-use reset link; nothing is returned to the caller.
func (c *SDKClient) RequestRecovery(ctx context.Context, email string) error {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/recover", "", map[string]string{
		"email": email,
	})
	if err != nil {
		return err
	}

	return checkStatus(resp, http.StatusAccepted)
}

// ResetPassword completes the recovery flow with the token from the mailed
// link. Every session of the account is terminated on success.
func (c *SDKClient) ResetPassword(ctx context.Context, token, newPassword string) error {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/reset-password", "", map[string]string{
		"token":        token,
		"new_password": newPassword,
	})
	if err != nil {
		return err
	}

	return checkStatus(resp, http.StatusNoContent)
}

// Ready probes the service's readiness endpoint.
func (c *SDKClient) Ready(ctx context.Context) error {
	resp, err := c.doJSON(ctx, http.MethodGet, "/readyz", "", nil)
	if err != nil {
		return err
	}

	return checkStatus(resp, http.StatusOK)
}
