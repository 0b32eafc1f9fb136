package service

import (
	"context"
	"errors"
	"time"

	"github.com/quollify/gatekey/internal/auth/domain"
	"github.com/quollify/gatekey/internal/auth/store"
	"github.com/quollify/gatekey/pkg/cryptox"
	"github.com/quollify/gatekey/pkg/idx"
	"github.com/quollify/gatekey/pkg/jwtx"
	"github.com/quollify/gatekey/pkg/slogx"
)

// TokenService mints, rotates and validates tokens. Refresh tokens are
// single-use: exchanging one revokes it and records its successor, and any
// later reuse is treated as theft.
type TokenService struct {
	Signer     *jwtx.HS256Signer
	Verifier   jwtx.Verifier
	Store      store.Store
	Revoked    store.RevokedTokens // may be cache-wrapped
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// IssuePair signs a fresh access/refresh pair for the user and persists the
// refresh token's fingerprint. st lets callers issue inside a transaction.
func (s *TokenService) IssuePair(ctx context.Context, st store.Store, u domain.User) (*domain.TokenPair, error) {
	now := time.Now().UTC()

	access, err := s.Signer.Sign(jwtx.NewAccessClaims(u.Email, string(u.Role), s.AccessTTL, s.Issuer, now))
	if err != nil {
		return nil, err
	}

	refresh, err := s.Signer.Sign(jwtx.NewRefreshClaims(u.Email, s.RefreshTTL, s.Issuer, now))
	if err != nil {
		return nil, err
	}

	record := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: cryptox.FingerprintToken(refresh),
		ExpiresAt: now.Add(s.RefreshTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := st.RefreshTokens().CreateRefreshToken(ctx, record); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.AccessTTL.Seconds()),
	}, nil
}

// Refresh exchanges a refresh token for a new pair, rotating it in the
// process. Presenting an already-rotated token is treated as theft: every
// session of the affected user is revoked before the error is returned, and
// that revocation sticks regardless of the failed exchange.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()

	// Any verification failure, a cryptographically expired token included,
	// reads as invalid. TokenExpired is reserved for the stored record's
	// expiry below.
	claims, err := s.Verifier.Verify(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if err := claims.ValidateTokenType(jwtx.TokenTypeRefresh); err != nil {
		return nil, ErrInvalidToken
	}

	fp := cryptox.FingerprintToken(refreshToken)
	rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if rt.Revoked {
		return nil, s.handleReuse(ctx, rt)
	}
	if now.After(rt.ExpiresAt) {
		return nil, ErrTokenExpired
	}

	u, err := s.Store.Users().GetUserByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var pair *domain.TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		p, err := s.IssuePair(ctx, tx, u)
		if err != nil {
			return err
		}
		if err := tx.RefreshTokens().MarkRotated(ctx, fp, cryptox.FingerprintToken(p.RefreshToken)); err != nil {
			return err
		}
		pair = p
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Lost a rotation race: someone else consumed this token while
			// we were minting. Same response as any other reuse.
			return nil, s.handleReuse(ctx, rt)
		}
		return nil, err
	}

	l.Debug("refresh token rotated", "user_id", u.ID)
	return pair, nil
}

// handleReuse is the theft response: revoke everything the user holds. The
// mass revocation runs in its own transaction and commits even though the
// triggering refresh fails.
func (s *TokenService) handleReuse(ctx context.Context, rt domain.RefreshToken) error {
	l := slogx.FromContext(ctx)

	var revoked int64
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		n, err := tx.RefreshTokens().RevokeAllUserRefreshTokens(ctx, rt.UserID)
		revoked = n
		return err
	})
	if err != nil {
		l.Error("failed to revoke sessions after token reuse", "error", err, "user_id", rt.UserID)
		return err
	}

	l.Warn("revoked refresh token reused, all sessions terminated",
		"user_id", rt.UserID, "sessions_revoked", revoked)
	return ErrSecurityBreach
}

// IsAccessTokenValid reports whether a token is a live access token. The
// signature and type checks run before the blacklist lookup so revocation
// storage is only consulted for tokens that could otherwise be accepted.
func (s *TokenService) IsAccessTokenValid(ctx context.Context, token string) (bool, error) {
	claims, err := s.Verifier.Verify(token)
	if err != nil {
		return false, nil
	}
	if err := claims.ValidateTokenType(jwtx.TokenTypeAccess); err != nil {
		return false, nil
	}

	revoked, err := s.Revoked.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return false, err
	}
	return !revoked, nil
}
