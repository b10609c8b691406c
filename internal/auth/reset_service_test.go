// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magicsessions/magicsessions/internal/auth"
	"github.com/magicsessions/magicsessions/internal/auth/mocks"
	"github.com/magicsessions/magicsessions/pkg/errutil"
)

type resetDeps struct {
	users         *mocks.MockUserRepository
	resets        *mocks.MockPasswordResetRepository
	refreshTokens *mocks.MockRefreshTokenRepository
	hasher        *mocks.MockPasswordHasher
	notifier      *mocks.MockNotifier
}

func newResetService(t *testing.T) (*auth.PasswordResetService, *resetDeps) {
	t.Helper()
	deps := &resetDeps{
		users:         mocks.NewMockUserRepository(t),
		resets:        mocks.NewMockPasswordResetRepository(t),
		refreshTokens: mocks.NewMockRefreshTokenRepository(t),
		hasher:        mocks.NewMockPasswordHasher(t),
		notifier:      mocks.NewMockNotifier(t),
	}
	svc, err := auth.NewPasswordResetService(deps.users, deps.resets, deps.refreshTokens, deps.hasher,
		auth.WithResetNotifier(deps.notifier))
	require.NoError(t, err)
	return svc, deps
}

func TestNewPasswordResetService_NilDependencies(t *testing.T) {
	users := mocks.NewMockUserRepository(t)
	resets := mocks.NewMockPasswordResetRepository(t)
	refresh := mocks.NewMockRefreshTokenRepository(t)
	hasher := mocks.NewMockPasswordHasher(t)

	tests := []struct {
		name        string
		users       auth.UserRepository
		resets      auth.PasswordResetRepository
		refresh     auth.RefreshTokenRepository
		hasher      auth.PasswordHasher
		expectError string
	}{
		{"nil users repository", nil, resets, refresh, hasher, "users repository is required"},
		{"nil reset repository", users, nil, refresh, hasher, "password reset repository is required"},
		{"nil refresh repository", users, resets, nil, hasher, "refresh token repository is required"},
		{"nil password hasher", users, resets, refresh, nil, "password hasher is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := auth.NewPasswordResetService(tt.users, tt.resets, tt.refresh, tt.hasher)
			require.Error(t, err)
			assert.Nil(t, svc)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestPasswordResetService_RequestReset(t *testing.T) {
	ctx := context.Background()

	t.Run("stores hash and sends plaintext token", func(t *testing.T) {
		svc, deps := newResetService(t)
		user := verifiedUser()

		deps.users.On("GetByEmail", mock.Anything, "alice@example.com").Return(user, nil)
		deps.resets.On("DeleteByUser", mock.Anything, user.ID).Return(nil)

		var stored *auth.PasswordResetToken
		deps.resets.On("Create", mock.Anything, mock.AnythingOfType("*auth.PasswordResetToken")).
			Run(func(args mock.Arguments) {
				stored = args.Get(1).(*auth.PasswordResetToken)
			}).Return(nil)

		var sent string
		deps.notifier.On("SendPasswordReset", mock.Anything, user, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
			Run(func(args mock.Arguments) {
				sent = args.String(2)
			}).Return(nil)

		require.NoError(t, svc.RequestReset(ctx, " Alice@Example.com"))
		require.NotNil(t, stored)
		assert.NotEmpty(t, sent)
		assert.Equal(t, auth.HashToken(sent), stored.TokenHash)
		assert.NotEqual(t, sent, stored.TokenHash)
		assert.Equal(t, user.ID, stored.UserID)
	})

	t.Run("returns success for unknown email to prevent enumeration", func(t *testing.T) {
		svc, deps := newResetService(t)
		deps.users.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, auth.ErrNotFound)

		require.NoError(t, svc.RequestReset(ctx, "nobody@example.com"))
		deps.resets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		deps.notifier.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("propagates repository errors", func(t *testing.T) {
		svc, deps := newResetService(t)
		deps.users.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, assert.AnError)

		err := svc.RequestReset(ctx, "alice@example.com")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "RESET_REQUEST_FAILED")
	})

	t.Run("propagates reset repo create errors", func(t *testing.T) {
		svc, deps := newResetService(t)
		user := verifiedUser()
		deps.users.On("GetByEmail", mock.Anything, "alice@example.com").Return(user, nil)
		deps.resets.On("DeleteByUser", mock.Anything, user.ID).Return(nil)
		deps.resets.On("Create", mock.Anything, mock.AnythingOfType("*auth.PasswordResetToken")).Return(assert.AnError)

		err := svc.RequestReset(ctx, "alice@example.com")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "RESET_REQUEST_FAILED")
	})
}

func TestPasswordResetService_ValidateToken(t *testing.T) {
	ctx := context.Background()

	t.Run("returns user ID for valid token", func(t *testing.T) {
		svc, deps := newResetService(t)
		token, tokenHash, err := auth.GenerateResetToken()
		require.NoError(t, err)

		userID := ulid.Make()
		deps.resets.On("GetByTokenHash", ctx, tokenHash).Return(&auth.PasswordResetToken{
			ID:        ulid.Make(),
			UserID:    userID,
			TokenHash: tokenHash,
			ExpiresAt: time.Now().Add(time.Hour),
		}, nil)

		got, err := svc.ValidateToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, userID, got)
	})

	t.Run("returns error for expired token", func(t *testing.T) {
		svc, deps := newResetService(t)
		token, tokenHash, err := auth.GenerateResetToken()
		require.NoError(t, err)

		deps.resets.On("GetByTokenHash", ctx, tokenHash).Return(&auth.PasswordResetToken{
			ID:        ulid.Make(),
			UserID:    ulid.Make(),
			TokenHash: tokenHash,
			ExpiresAt: time.Now().Add(-time.Hour),
		}, nil)

		got, err := svc.ValidateToken(ctx, token)
		require.Error(t, err)
		assert.Equal(t, ulid.ULID{}, got)
		errutil.AssertErrorCode(t, err, auth.CodeResetTokenExpired)
		assert.Equal(t, auth.KindValidation, auth.KindOf(err))
	})

	t.Run("returns error for non-existent token", func(t *testing.T) {
		svc, deps := newResetService(t)
		deps.resets.On("GetByTokenHash", ctx, mock.AnythingOfType("string")).Return(nil, auth.ErrNotFound)

		_, err := svc.ValidateToken(ctx, "nonexistent")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, auth.CodeResetTokenInvalid)
	})

	t.Run("returns error for empty token", func(t *testing.T) {
		svc, _ := newResetService(t)
		_, err := svc.ValidateToken(ctx, "")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, auth.CodeResetTokenInvalid)
	})

	t.Run("propagates repository errors", func(t *testing.T) {
		svc, deps := newResetService(t)
		deps.resets.On("GetByTokenHash", ctx, mock.AnythingOfType("string")).Return(nil, assert.AnError)

		_, err := svc.ValidateToken(ctx, "sometoken")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "RESET_VALIDATE_FAILED")
	})
}

func TestPasswordResetService_ResetPassword(t *testing.T) {
	ctx := context.Background()
	const newPassword = "N3w!Passw0rd"
	const hashedPassword = "$2a$12$newhash" //nolint:gosec // Test data, not real credentials

	validReset := func(t *testing.T, deps *resetDeps) (string, ulid.ULID, ulid.ULID) {
		t.Helper()
		token, tokenHash, err := auth.GenerateResetToken()
		require.NoError(t, err)
		resetID, userID := ulid.Make(), ulid.Make()
		deps.resets.On("GetByTokenHash", mock.Anything, tokenHash).Return(&auth.PasswordResetToken{
			ID:        resetID,
			UserID:    userID,
			TokenHash: tokenHash,
			ExpiresAt: time.Now().Add(time.Hour),
		}, nil)
		return token, userID, resetID
	}

	t.Run("resets password, clears lockout and revokes sessions", func(t *testing.T) {
		svc, deps := newResetService(t)
		token, userID, resetID := validReset(t, deps)

		deps.hasher.On("Hash", newPassword).Return(hashedPassword, nil)
		deps.resets.On("Delete", mock.Anything, resetID).Return(nil)
		deps.users.On("UpdatePassword", mock.Anything, userID, hashedPassword).Return(nil)
		deps.users.On("ResetFailedLogins", mock.Anything, userID).Return(nil)
		deps.refreshTokens.On("RevokeAllByUser", mock.Anything, userID).Return(int64(2), nil)

		require.NoError(t, svc.ResetPassword(ctx, token, newPassword))
	})

	t.Run("rejects weak password before token lookup", func(t *testing.T) {
		svc, deps := newResetService(t)

		err := svc.ResetPassword(ctx, "sometoken", "weak")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, auth.CodeWeakPassword)
		deps.resets.AssertNotCalled(t, "GetByTokenHash", mock.Anything, mock.Anything)
		deps.hasher.AssertNotCalled(t, "Hash", mock.Anything)
	})

	t.Run("returns error for invalid token", func(t *testing.T) {
		svc, deps := newResetService(t)
		deps.resets.On("GetByTokenHash", mock.Anything, mock.AnythingOfType("string")).Return(nil, auth.ErrNotFound)

		err := svc.ResetPassword(ctx, "invalid", newPassword)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, auth.CodeResetTokenInvalid)
	})

	t.Run("propagates hasher errors", func(t *testing.T) {
		svc, deps := newResetService(t)
		token, _, _ := validReset(t, deps)
		deps.hasher.On("Hash", newPassword).Return("", assert.AnError)

		err := svc.ResetPassword(ctx, token, newPassword)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "RESET_PASSWORD_FAILED")
	})

	t.Run("propagates user update errors", func(t *testing.T) {
		svc, deps := newResetService(t)
		token, userID, resetID := validReset(t, deps)
		deps.hasher.On("Hash", newPassword).Return(hashedPassword, nil)
		deps.resets.On("Delete", mock.Anything, resetID).Return(nil)
		deps.users.On("UpdatePassword", mock.Anything, userID, hashedPassword).Return(assert.AnError)

		err := svc.ResetPassword(ctx, token, newPassword)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "RESET_PASSWORD_FAILED")
		deps.refreshTokens.AssertNotCalled(t, "RevokeAllByUser", mock.Anything, mock.Anything)
	})

	t.Run("token consumption failure leaves password unchanged", func(t *testing.T) {
		svc, deps := newResetService(t)
		token, _, resetID := validReset(t, deps)
		deps.hasher.On("Hash", newPassword).Return(hashedPassword, nil)
		deps.resets.On("Delete", mock.Anything, resetID).Return(assert.AnError)

		err := svc.ResetPassword(ctx, token, newPassword)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "RESET_PASSWORD_FAILED")
		deps.users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("token consumed concurrently is rejected", func(t *testing.T) {
		svc, deps := newResetService(t)
		token, _, resetID := validReset(t, deps)
		deps.hasher.On("Hash", newPassword).Return(hashedPassword, nil)
		deps.resets.On("Delete", mock.Anything, resetID).Return(auth.ErrNotFound)

		err := svc.ResetPassword(ctx, token, newPassword)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, auth.CodeResetTokenInvalid)
		deps.users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})
}
