package authsdk

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// refreshBuffer is subtracted from the access token lifetime so a session
// rotates shortly before actual expiry rather than racing it.
const refreshBuffer = 30 * time.Second

// Session is an authenticated session with automatic token rotation. All
// Session methods refresh the access token when it nears expiry.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

func newSession(client *SDKClient, pair *TokenResponse) *Session {
	return &Session{
		client:       client,
		accessToken:  pair.AccessToken,
		refreshToken: pair.RefreshToken,
		expiresAt:    time.Now().Add(time.Duration(pair.ExpiresIn)*time.Second - refreshBuffer),
	}
}

// getValidToken returns a live access token, rotating the pair if expired.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have rotated while we waited for the lock.
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}

	if s.refreshToken == "" {
		return "", fmt.Errorf("access token expired and no refresh token available")
	}

	pair, err := s.client.Refresh(ctx, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}

	s.accessToken = pair.AccessToken
	s.refreshToken = pair.RefreshToken
	s.expiresAt = time.Now().Add(time.Duration(pair.ExpiresIn)*time.Second - refreshBuffer)

	return s.accessToken, nil
}

// AccessToken returns the current access token without checking expiry.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// Validate reports whether the session's access token is still accepted by
// the service. A false result without error usually means the token was
// blacklisted, for example after a role change.
func (s *Session) Validate(ctx context.Context) (bool, error) {
	return s.client.ValidateToken(ctx, s.AccessToken())
}

// Logout terminates the session on the server: the access token is
// blacklisted and the refresh token revoked. The session is unusable after.
func (s *Session) Logout(ctx context.Context) error {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	refreshToken := s.refreshToken
	s.accessToken = ""
	s.refreshToken = ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()

	resp, err := s.client.doJSON(ctx, http.MethodPost, "/v1/auth/logout", token, map[string]string{
		"refresh_token": refreshToken,
	})
	if err != nil {
		return err
	}

	return checkStatus(resp, http.StatusNoContent)
}

// ChangeRole toggles the role of the user with the given email between ADMIN
// and CLIENT. The caller must be an admin. targetToken is the target user's
// current access token, blacklisted so the old role dies immediately. When
// targetToken is empty the service blacklists the caller's own token, which
// is the self-demotion case.
func (s *Session) ChangeRole(ctx context.Context, email, targetToken string) (*User, error) {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.doJSON(ctx, http.MethodPost, "/v1/users/role", token, map[string]string{
		"email": email,
		"token": targetToken,
	})
	if err != nil {
		return nil, err
	}

	var user User
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}
