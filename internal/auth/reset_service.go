// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// PasswordResetService handles password reset operations.
type PasswordResetService struct {
	users         UserRepository
	resets        PasswordResetRepository
	refreshTokens RefreshTokenRepository
	hasher        PasswordHasher
	notifier      Notifier
	logger        *slog.Logger
	now           func() time.Time
}

// ResetOption configures a PasswordResetService.
type ResetOption func(*PasswordResetService)

// WithResetNotifier sets the notifier that delivers reset tokens.
func WithResetNotifier(n Notifier) ResetOption {
	return func(s *PasswordResetService) {
		s.notifier = n
	}
}

// WithResetLogger sets the logger.
func WithResetLogger(logger *slog.Logger) ResetOption {
	return func(s *PasswordResetService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithResetClock overrides the time source.
func WithResetClock(now func() time.Time) ResetOption {
	return func(s *PasswordResetService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewPasswordResetService creates a new PasswordResetService.
func NewPasswordResetService(
	users UserRepository,
	resets PasswordResetRepository,
	refreshTokens RefreshTokenRepository,
	hasher PasswordHasher,
	opts ...ResetOption,
) (*PasswordResetService, error) {
	if users == nil {
		return nil, oops.Code("RESET_SERVICE_CONFIG").Errorf("users repository is required")
	}
	if resets == nil {
		return nil, oops.Code("RESET_SERVICE_CONFIG").Errorf("password reset repository is required")
	}
	if refreshTokens == nil {
		return nil, oops.Code("RESET_SERVICE_CONFIG").Errorf("refresh token repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("RESET_SERVICE_CONFIG").Errorf("password hasher is required")
	}

	s := &PasswordResetService{
		users:         users,
		resets:        resets,
		refreshTokens: refreshTokens,
		hasher:        hasher,
		logger:        slog.Default(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = NewLogNotifier(s.logger)
	}
	return s, nil
}

// RequestReset issues a reset token for the account with the given email
// and hands it to the notifier. Unknown emails succeed silently so the
// caller cannot probe for registered addresses.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) (err error) {
	ctx, span := tracer.Start(ctx, "auth.password_reset.request")
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.InfoContext(ctx, "password reset requested for unknown email")
			return nil
		}
		return oops.Code("RESET_REQUEST_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}

	token, hash, err := GenerateResetToken()
	if err != nil {
		return oops.Code("RESET_REQUEST_FAILED").
			With("operation", "generate reset token").
			Wrap(err)
	}

	reset, err := NewPasswordResetToken(user.ID, hash, s.now().Add(ResetTokenExpiry).UTC())
	if err != nil {
		return oops.Code("RESET_REQUEST_FAILED").
			With("operation", "build reset token").
			Wrap(err)
	}

	if err := s.resets.DeleteByUser(ctx, user.ID); err != nil {
		return oops.Code("RESET_REQUEST_FAILED").
			With("operation", "delete previous reset tokens").
			Wrap(err)
	}
	if err := s.resets.Create(ctx, reset); err != nil {
		return oops.Code("RESET_REQUEST_FAILED").
			With("operation", "create reset token").
			Wrap(err)
	}

	if err := s.notifier.SendPasswordReset(ctx, user, token, reset.ExpiresAt); err != nil {
		s.logger.WarnContext(ctx, "password reset notification failed",
			"user_id", user.ID.String(),
			"error", err)
	}
	return nil
}

// ValidateToken validates a reset token and returns the owning user ID.
func (s *PasswordResetService) ValidateToken(ctx context.Context, token string) (ulid.ULID, error) {
	reset, err := s.lookupToken(ctx, token)
	if err != nil {
		return ulid.ULID{}, err
	}
	return reset.UserID, nil
}

func (s *PasswordResetService) lookupToken(ctx context.Context, token string) (*PasswordResetToken, error) {
	if token == "" {
		return nil, oops.Code(CodeResetTokenInvalid).Errorf("reset token cannot be empty")
	}

	reset, err := s.resets.GetByTokenHash(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code(CodeResetTokenInvalid).Errorf("reset token not found")
		}
		return nil, oops.Code("RESET_VALIDATE_FAILED").
			With("operation", "get reset token").
			Wrap(err)
	}

	if !s.now().Before(reset.ExpiresAt) {
		return nil, oops.Code(CodeResetTokenExpired).Errorf("reset token has expired")
	}

	return reset, nil
}

// ResetPassword sets a new password using a valid reset token. The token
// is consumed before the password changes, so it works at most once. On
// success the lockout state is cleared and every refresh token of the user
// is revoked.
func (s *PasswordResetService) ResetPassword(ctx context.Context, token, newPassword string) (err error) {
	ctx, span := tracer.Start(ctx, "auth.password_reset.confirm")
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	if err := ValidatePasswordStrength(newPassword); err != nil {
		return err
	}

	reset, err := s.lookupToken(ctx, token)
	if err != nil {
		return err
	}
	userID := reset.UserID

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code("RESET_PASSWORD_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	if err := s.resets.Delete(ctx, reset.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code(CodeResetTokenInvalid).Errorf("reset token already used")
		}
		return oops.Code("RESET_PASSWORD_FAILED").
			With("operation", "consume reset token").
			With("user_id", userID.String()).
			Wrap(err)
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return oops.Code("RESET_PASSWORD_FAILED").
			With("operation", "update password").
			With("user_id", userID.String()).
			Wrap(err)
	}

	if err := s.users.ResetFailedLogins(ctx, userID); err != nil {
		return oops.Code("RESET_PASSWORD_FAILED").
			With("operation", "reset failed logins").
			With("user_id", userID.String()).
			Wrap(err)
	}

	revoked, err := s.refreshTokens.RevokeAllByUser(ctx, userID)
	if err != nil {
		return oops.Code("RESET_PASSWORD_FAILED").
			With("operation", "revoke refresh tokens").
			With("user_id", userID.String()).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "password reset completed",
		"user_id", userID.String(),
		"sessions_revoked", revoked)
	return nil
}
