package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fieldops/salesreport/internal/report/domain"
	"github.com/fieldops/salesreport/internal/report/store"
	"github.com/fieldops/salesreport/pkg/cryptox"
	"github.com/fieldops/salesreport/pkg/idx"
	"github.com/fieldops/salesreport/pkg/jwtx"
	"github.com/fieldops/salesreport/pkg/slogx"
)

var (
	// ErrInvalidCredentials covers unknown email, wrong password and
	// deactivated accounts alike. Distinguishing them would hand an
	// enumeration oracle to whoever is guessing.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrInvalidRefresh covers every refresh failure: bad signature,
	// expired, revoked, unknown fingerprint.
	ErrInvalidRefresh = errors.New("invalid_refresh_token")
)

// AuthService implements login, refresh rotation and logout over the
// credential boundary.
type AuthService struct {
	Store  store.Store
	Tokens *jwtx.Service
}

// Login verifies a credential pair and issues tokens. The failure paths are
// timing-balanced: an unknown email still burns a full hash comparison.
func (s *AuthService) Login(ctx context.Context, email, password string) (jwtx.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.Store.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Dummy verify to keep unknown-user timing in line with a
			// real mismatch.
			_ = cryptox.VerifyPassword(password, "")
			return jwtx.TokenPair{}, ErrInvalidCredentials
		}
		return jwtx.TokenPair{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		slogx.FromContext(ctx).Info("login failed", "user_id", user.ID)
		return jwtx.TokenPair{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return jwtx.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.Tokens.IssuePair(identityFor(user))
	if err != nil {
		return jwtx.TokenPair{}, err
	}

	if err := s.storeRefresh(ctx, user.ID, pair.RefreshToken); err != nil {
		return jwtx.TokenPair{}, err
	}
	return pair, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued in one transaction. Presenting an already-revoked token
// revokes the whole user's sessions, since that means the token leaked.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (jwtx.TokenPair, error) {
	claims, err := s.Tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return jwtx.TokenPair{}, ErrInvalidRefresh
	}

	fp := cryptox.FingerprintToken(refreshToken)
	now := time.Now().UTC()

	stored, err := s.Store.RefreshTokens().GetByFingerprint(ctx, fp)
	if err != nil {
		return jwtx.TokenPair{}, ErrInvalidRefresh
	}
	if stored.Revoked {
		// A rotated-out token coming back means it leaked somewhere along
		// the way. Kill every session for the user, outside the rotation
		// transaction so the response sticks.
		slogx.FromContext(ctx).Warn("revoked refresh token replayed", "user_id", stored.UserID)
		_ = s.Store.RefreshTokens().RevokeAllForUser(ctx, stored.UserID)
		return jwtx.TokenPair{}, ErrInvalidRefresh
	}
	if now.After(stored.ExpiresAt) || stored.UserID != claims.UserID {
		return jwtx.TokenPair{}, ErrInvalidRefresh
	}

	var pair jwtx.TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// Re-read the account so role changes take effect at rotation.
		user, err := tx.Users().GetByID(ctx, stored.UserID)
		if err != nil || !user.IsActive {
			return ErrInvalidRefresh
		}

		pair, err = s.Tokens.IssuePair(identityFor(user))
		if err != nil {
			return err
		}

		if err := tx.RefreshTokens().Revoke(ctx, stored.ID); err != nil {
			return err
		}
		return tx.RefreshTokens().Create(ctx, domain.RefreshToken{
			ID:          idx.New(),
			UserID:      user.ID,
			Fingerprint: cryptox.FingerprintToken(pair.RefreshToken),
			ExpiresAt:   now.Add(s.Tokens.RefreshTTL()),
		})
	})
	if err != nil {
		return jwtx.TokenPair{}, err
	}
	return pair, nil
}

// Logout revokes the presented refresh token. Idempotent: an unknown or
// already-revoked token is not an error, the session is gone either way.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if _, err := s.Tokens.VerifyRefresh(refreshToken); err != nil {
		return nil
	}
	stored, err := s.Store.RefreshTokens().GetByFingerprint(ctx, cryptox.FingerprintToken(refreshToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	if stored.Revoked {
		return nil
	}
	return s.Store.RefreshTokens().Revoke(ctx, stored.ID)
}

// ChangePassword verifies the caller's current password, enforces the
// strength policy on the replacement and stores its hash. Every refresh
// token the user holds is revoked in the same transaction, so other
// sessions have to log in again with the new credential. Returns the
// accepted password's strength score.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, current, next string) (int, error) {
	user, err := s.Store.Users().GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := cryptox.VerifyPassword(current, user.PasswordHash); err != nil {
		slogx.FromContext(ctx).Info("password change rejected", "user_id", userID)
		return 0, ErrInvalidCredentials
	}

	if rules := cryptox.ValidateStrength(next); len(rules) > 0 {
		fields := make([]string, len(rules))
		for i, rule := range rules {
			fields[i] = "new_password " + rule
		}
		return 0, &ValidationError{Fields: fields}
	}
	if next == current {
		return 0, &ValidationError{Fields: []string{"new_password must differ from the current password"}}
	}

	hash, err := cryptox.HashPassword(next)
	if err != nil {
		return 0, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
			return err
		}
		return tx.RefreshTokens().RevokeAllForUser(ctx, userID)
	})
	if err != nil {
		return 0, err
	}
	return cryptox.ScorePassword(next), nil
}

func (s *AuthService) storeRefresh(ctx context.Context, userID int64, token string) error {
	return s.Store.RefreshTokens().Create(ctx, domain.RefreshToken{
		ID:          idx.New(),
		UserID:      userID,
		Fingerprint: cryptox.FingerprintToken(token),
		ExpiresAt:   time.Now().UTC().Add(s.Tokens.RefreshTTL()),
	})
}

func identityFor(u domain.User) jwtx.Identity {
	return jwtx.Identity{
		UserID:     u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Department: u.Department,
		IsManager:  u.IsManager,
	}
}
