// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magicsessions/magicsessions/internal/auth"
	"github.com/magicsessions/magicsessions/pkg/errutil"
)

func TestNewRefreshToken(t *testing.T) {
	userID := ulid.Make()
	expires := time.Now().Add(time.Hour)

	t.Run("valid token", func(t *testing.T) {
		token, err := auth.NewRefreshToken(userID, auth.HashToken("raw"), expires, "10.0.0.1", "Mozilla/5.0")
		require.NoError(t, err)
		assert.NotEqual(t, ulid.ULID{}, token.ID)
		assert.Equal(t, userID, token.UserID)
		assert.Equal(t, auth.HashToken("raw"), token.TokenHash)
		assert.False(t, token.Revoked)
		assert.Equal(t, "10.0.0.1", token.IPAddress)
		assert.Equal(t, "Mozilla/5.0", token.DeviceInfo)
		assert.False(t, token.CreatedAt.IsZero())
	})

	t.Run("truncates device info and ip", func(t *testing.T) {
		token, err := auth.NewRefreshToken(userID, "hash", expires,
			strings.Repeat("1", 60), strings.Repeat("x", 600))
		require.NoError(t, err)
		assert.Len(t, token.IPAddress, auth.MaxIPAddressLength)
		assert.Len(t, token.DeviceInfo, auth.MaxDeviceInfoLength)
	})

	tests := []struct {
		name    string
		userID  ulid.ULID
		hash    string
		expires time.Time
		code    string
	}{
		{"zero user", ulid.ULID{}, "hash", expires, "REFRESH_INVALID_USER"},
		{"empty hash", userID, "", expires, "REFRESH_INVALID_HASH"},
		{"zero expiry", userID, "hash", time.Time{}, "REFRESH_INVALID_EXPIRY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.NewRefreshToken(tt.userID, tt.hash, tt.expires, "", "")
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, tt.code)
		})
	}
}

func TestRefreshToken_IsActiveAt(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	token := &auth.RefreshToken{ExpiresAt: now.Add(time.Minute)}

	assert.True(t, token.IsActiveAt(now))
	assert.False(t, token.IsActiveAt(now.Add(time.Minute)), "expiry instant is expired")
	assert.False(t, token.IsActiveAt(now.Add(2*time.Minute)))

	token.Revoked = true
	assert.False(t, token.IsActiveAt(now))
}
