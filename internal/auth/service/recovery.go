package service

import (
	"context"
	"errors"
	"time"

	"github.com/quollify/gatekey/internal/auth/domain"
	"github.com/quollify/gatekey/internal/auth/store"
	"github.com/quollify/gatekey/pkg/cryptox"
	"github.com/quollify/gatekey/pkg/idx"
	"github.com/quollify/gatekey/pkg/slogx"
)

// RecoveryMail is what gets handed to the mail pipeline when a user asks for
// a password reset.
type RecoveryMail struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Link  string `json:"link"`
}

// RecoveryMailer enqueues recovery emails for asynchronous delivery.
type RecoveryMailer interface {
	PublishRecoveryMail(ctx context.Context, mail RecoveryMail) error
}

// RecoveryService runs the forgot-password flow: mint a single-use token,
// email it, and later exchange it for a new password while killing every
// session the account holds.
type RecoveryService struct {
	Store   store.Store
	Mailer  RecoveryMailer
	BaseURL string // recovery link prefix, e.g. https://app.example.com/recover?token=
}

// RequestRecovery mints a recovery token for the account behind email and
// enqueues the recovery mail. The raw secret only travels in the email; the
// store keeps its fingerprint.
func (s *RecoveryService) RequestRecovery(ctx context.Context, email string) error {
	l := slogx.FromContext(ctx)
	email = normalizeEmail(email)

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	secret, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	record := domain.RecoveryToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: cryptox.FingerprintToken(secret),
		ExpiresAt: now.Add(domain.RecoveryTokenTTL),
		CreatedAt: now,
	}
	if err := s.Store.RecoveryTokens().CreateRecoveryToken(ctx, record); err != nil {
		return err
	}

	mail := RecoveryMail{
		Email: u.Email,
		Name:  u.FullName(),
		Link:  s.BaseURL + secret,
	}
	// Delivery is fire-and-forget: the token already exists, and the user
	// can simply request again if the mail never arrives.
	if err := s.Mailer.PublishRecoveryMail(ctx, mail); err != nil {
		l.Error("failed to enqueue recovery mail", "error", err, "user_id", u.ID)
	}

	l.Info("recovery token issued", "user_id", u.ID)
	return nil
}

// ResetPassword exchanges a recovery token for a new password. The password
// update, the revocation of every refresh session, and the consumption of
// the token all land in one transaction: either the user comes out with a
// new password and zero sessions, or nothing changed.
func (s *RecoveryService) ResetPassword(ctx context.Context, token, newPassword string) error {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()

	rec, err := s.Store.RecoveryTokens().GetRecoveryTokenByHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}

	// Used and expired tokens are indistinguishable to the caller: either
	// way the token cannot redeem a reset.
	if !rec.Usable(now) {
		return ErrInvalidToken
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, rec.UserID, hash); err != nil {
			return err
		}
		if _, err := tx.RefreshTokens().RevokeAllUserRefreshTokens(ctx, rec.UserID); err != nil {
			return err
		}
		return tx.RecoveryTokens().MarkRecoveryTokenUsed(ctx, rec.ID)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Another reset consumed the token between our read and the
			// guarded update.
			return ErrInvalidToken
		}
		return err
	}

	l.Info("password reset completed, sessions revoked", "user_id", rec.UserID)
	return nil
}
