package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/quollify/gatekey/internal/auth/domain"
	"github.com/quollify/gatekey/internal/auth/store"
	"github.com/quollify/gatekey/pkg/cryptox"
	"github.com/quollify/gatekey/pkg/idx"
	"github.com/quollify/gatekey/pkg/slogx"
)

// AuthService handles registration and the credentials login flow. Token
// minting is delegated to the TokenService so login and refresh issue
// identical pairs.
type AuthService struct {
	Store  store.Store
	Tokens *TokenService
}

// Login verifies the email/password pair and issues a fresh token pair. The
// refresh token's fingerprint is persisted so it can be rotated later.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	email = normalizeEmail(email)

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !u.Enabled {
		l.Info("login attempt on disabled account", "user_id", u.ID)
		return nil, ErrInvalidCredentials
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		l.Info("password verification failed", "user_id", u.ID)
		return nil, ErrInvalidCredentials
	}

	pair, err := s.Tokens.IssuePair(ctx, s.Store, u)
	if err != nil {
		return nil, err
	}

	l.Info("user logged in", "user_id", u.ID)
	return pair, nil
}

// Register creates a new CLIENT account. Email uniqueness is checked up
// front and again enforced by the store's unique index, so a racing
// duplicate insert still maps to ErrEmailAlreadyExists.
func (s *AuthService) Register(ctx context.Context, firstName, lastName, email, password string) (domain.User, error) {
	l := slogx.FromContext(ctx)
	email = normalizeEmail(email)

	exists, err := s.Store.Users().ExistsByEmail(ctx, email)
	if err != nil {
		return domain.User{}, err
	}
	if exists {
		return domain.User{}, ErrEmailAlreadyExists
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	u := domain.NewUser(idx.New().String(), email, firstName, lastName, hash, time.Now().UTC())
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailAlreadyExists
		}
		return domain.User{}, err
	}

	l.Info("user registered", "user_id", u.ID)
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
