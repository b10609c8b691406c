// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// VerificationTokenExpiry is how long an email verification token is valid.
const VerificationTokenExpiry = 24 * time.Hour

// EmailVerificationToken is single-use proof of email ownership.
type EmailVerificationToken struct {
	ID        ulid.ULID
	UserID    ulid.ULID
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewEmailVerificationToken creates a validated verification token.
func NewEmailVerificationToken(userID ulid.ULID, token string, expiresAt time.Time) (*EmailVerificationToken, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("VERIFICATION_INVALID_USER").Errorf("user ID cannot be zero")
	}
	if token == "" {
		return nil, oops.Code("VERIFICATION_INVALID_TOKEN").Errorf("token cannot be empty")
	}
	if expiresAt.IsZero() {
		return nil, oops.Code("VERIFICATION_INVALID_EXPIRY").Errorf("expiry time cannot be zero")
	}
	return &EmailVerificationToken{
		ID:        ulid.Make(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// IsExpired returns true if the token has expired.
func (t *EmailVerificationToken) IsExpired() bool {
	return t.IsExpiredAt(time.Now())
}

// IsExpiredAt returns true if the token would be expired at the given time.
func (t *EmailVerificationToken) IsExpiredAt(at time.Time) bool {
	return !at.Before(t.ExpiresAt)
}

// VerificationTokenRepository manages email verification token persistence.
type VerificationTokenRepository interface {
	// Create stores a new verification token.
	Create(ctx context.Context, token *EmailVerificationToken) error

	// GetByToken retrieves a token by its raw value together with its owner.
	// Returns ErrNotFound if the token does not exist.
	GetByToken(ctx context.Context, token string) (*EmailVerificationToken, *User, error)

	// Delete removes a token by ID.
	Delete(ctx context.Context, id ulid.ULID) error

	// DeleteByUser removes all tokens for a user.
	DeleteByUser(ctx context.Context, userID ulid.ULID) error

	// DeleteExpired removes all expired tokens and returns the count.
	DeleteExpired(ctx context.Context) (int64, error)
}
