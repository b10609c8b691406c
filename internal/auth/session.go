// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Metadata column limits.
const (
	MaxDeviceInfoLength = 500
	MaxIPAddressLength  = 45
)

// RefreshToken is a rotation-capable session credential. Only the hash of
// the opaque token value is kept.
type RefreshToken struct {
	ID         ulid.ULID
	UserID     ulid.ULID
	TokenHash  string
	ExpiresAt  time.Time
	Revoked    bool
	DeviceInfo string
	IPAddress  string
	CreatedAt  time.Time
}

// NewRefreshToken creates a validated RefreshToken.
// DeviceInfo and IPAddress are optional and truncated to their column limits.
func NewRefreshToken(userID ulid.ULID, tokenHash string, expiresAt time.Time, ipAddress, deviceInfo string) (*RefreshToken, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("REFRESH_INVALID_USER").Errorf("user ID cannot be zero")
	}
	if tokenHash == "" {
		return nil, oops.Code("REFRESH_INVALID_HASH").Errorf("token hash cannot be empty")
	}
	if expiresAt.IsZero() {
		return nil, oops.Code("REFRESH_INVALID_EXPIRY").Errorf("expiry time cannot be zero")
	}

	return &RefreshToken{
		ID:         ulid.Make(),
		UserID:     userID,
		TokenHash:  tokenHash,
		ExpiresAt:  expiresAt,
		DeviceInfo: truncate(deviceInfo, MaxDeviceInfoLength),
		IPAddress:  truncate(ipAddress, MaxIPAddressLength),
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// IsExpired returns true if the token has expired.
func (t *RefreshToken) IsExpired() bool {
	return t.IsExpiredAt(time.Now())
}

// IsExpiredAt returns true if the token would be expired at the given time.
func (t *RefreshToken) IsExpiredAt(at time.Time) bool {
	return !at.Before(t.ExpiresAt)
}

// IsActive returns true if the token is neither revoked nor expired.
func (t *RefreshToken) IsActive() bool {
	return t.IsActiveAt(time.Now())
}

// IsActiveAt reports whether the token is usable at the given time.
func (t *RefreshToken) IsActiveAt(at time.Time) bool {
	return !t.Revoked && !t.IsExpiredAt(at)
}

// SessionInfo is the public view of an active refresh token.
type SessionInfo struct {
	ID         ulid.ULID `json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
	IPAddress  string    `json:"ipAddress,omitempty"`
	DeviceInfo string    `json:"deviceInfo,omitempty"`
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// RefreshTokenRepository manages refresh token persistence.
type RefreshTokenRepository interface {
	// Create stores a new refresh token.
	Create(ctx context.Context, token *RefreshToken) error

	// GetByTokenHash retrieves a token by its hash together with its owner.
	// Returns ErrNotFound if no token has the hash.
	GetByTokenHash(ctx context.Context, tokenHash string) (*RefreshToken, *User, error)

	// Update updates an existing refresh token.
	Update(ctx context.Context, token *RefreshToken) error

	// Delete removes a refresh token by ID.
	Delete(ctx context.Context, id ulid.ULID) error

	// ListByUser returns all tokens for a user, newest first.
	ListByUser(ctx context.Context, userID ulid.ULID) ([]*RefreshToken, error)

	// CountActiveByUser returns the number of active tokens for a user.
	CountActiveByUser(ctx context.Context, userID ulid.ULID) (int, error)

	// RevokeByTokenHash marks the matching token revoked. A missing token is
	// not an error.
	RevokeByTokenHash(ctx context.Context, tokenHash string) error

	// RevokeIfActive revokes the token only if it is still active and
	// reports whether this call performed the revocation.
	RevokeIfActive(ctx context.Context, id ulid.ULID) (bool, error)

	// RevokeAllByUser revokes every unrevoked token for a user and returns
	// the count revoked.
	RevokeAllByUser(ctx context.Context, userID ulid.ULID) (int64, error)

	// DeleteExpired removes all expired tokens and returns the count
	// of deleted records.
	DeleteExpired(ctx context.Context) (int64, error)
}
