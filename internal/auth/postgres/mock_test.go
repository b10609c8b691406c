// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package postgres_test

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCols = []string{
	"id", "email", "password_hash", "first_name", "last_name", "email_verified", "active",
	"failed_login_attempts", "locked_until", "last_login_at", "created_at", "updated_at",
}

var refreshCols = []string{
	"id", "user_id", "token_hash", "expires_at", "revoked", "device_info", "ip_address", "created_at",
}

// newMock returns a pool mock that verifies its expectations on cleanup.
func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})
	return mock
}

type fixtureUser struct {
	id       ulid.ULID
	email    string
	verified bool
	failed   int
	locked   *time.Time
	created  time.Time
}

func newFixtureUser(email string) fixtureUser {
	return fixtureUser{
		id:       ulid.Make(),
		email:    email,
		verified: true,
		created:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// values returns a row matching userCols.
func (u fixtureUser) values() []any {
	var lastLogin *time.Time
	return []any{
		u.id.String(), u.email, "$2a$12$hash", "Ada", "Lovelace", u.verified, true,
		u.failed, u.locked, lastLogin, u.created, u.created,
	}
}
