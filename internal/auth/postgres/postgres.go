// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

// Package postgres provides PostgreSQL implementations of auth repositories.
package postgres

import (
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/magicsessions/magicsessions/internal/auth"
)

const userColumns = `id, email, password_hash, first_name, last_name, email_verified, active,
	failed_login_attempts, locked_until, last_login_at, created_at, updated_at`

// qualifiedUserColumns is userColumns prefixed for joins against users u.
const qualifiedUserColumns = `u.id, u.email, u.password_hash, u.first_name, u.last_name, u.email_verified, u.active,
	u.failed_login_attempts, u.locked_until, u.last_login_at, u.created_at, u.updated_at`

// userRow holds scan destinations for userColumns.
type userRow struct {
	id            string
	email         string
	passwordHash  string
	firstName     string
	lastName      string
	emailVerified bool
	active        bool
	failed        int
	lockedUntil   *time.Time
	lastLoginAt   *time.Time
	createdAt     time.Time
	updatedAt     time.Time
}

func (r *userRow) dest() []any {
	return []any{
		&r.id, &r.email, &r.passwordHash, &r.firstName, &r.lastName, &r.emailVerified, &r.active,
		&r.failed, &r.lockedUntil, &r.lastLoginAt, &r.createdAt, &r.updatedAt,
	}
}

func (r *userRow) user() (*auth.User, error) {
	id, err := parseID("user", r.id)
	if err != nil {
		return nil, err
	}
	return &auth.User{
		ID:                  id,
		Email:               r.email,
		PasswordHash:        r.passwordHash,
		FirstName:           r.firstName,
		LastName:            r.lastName,
		EmailVerified:       r.emailVerified,
		Active:              r.active,
		FailedLoginAttempts: r.failed,
		LockedUntil:         r.lockedUntil,
		LastLoginAt:         r.lastLoginAt,
		CreatedAt:           r.createdAt,
		UpdatedAt:           r.updatedAt,
	}, nil
}

// parseID parses a stored ULID. A failure means the row is corrupt.
func parseID(kind, s string) (ulid.ULID, error) {
	id, err := ulid.Parse(s)
	if err != nil {
		return ulid.ULID{}, oops.Code("DB_INVALID_ID").
			With("kind", kind).
			With("id", s).
			Wrap(err)
	}
	return id, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
