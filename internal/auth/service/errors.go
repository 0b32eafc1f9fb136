package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrEmailAlreadyExists = errors.New("email_already_exists")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrTokenExpired       = errors.New("token_expired")

	// ErrSecurityBreach reports that a revoked refresh token was presented
	// again. By the time callers see this error every session for the
	// affected user has already been revoked and committed.
	ErrSecurityBreach = errors.New("security_breach")
)
