// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/magicsessions/magicsessions/internal/auth"
	"github.com/magicsessions/magicsessions/internal/store"
)

// UserRepository implements auth.UserRepository using PostgreSQL.
type UserRepository struct {
	db store.Querier
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db store.Querier) *UserRepository {
	return &UserRepository{db: db}
}

// Create stores a new user. A taken email wraps auth.ErrDuplicateEmail.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name, email_verified, active,
			failed_login_attempts, locked_until, last_login_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		user.ID.String(),
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.EmailVerified,
		user.Active,
		user.FailedLoginAttempts,
		user.LockedUntil,
		user.LastLoginAt,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return oops.Code("USER_EMAIL_TAKEN").
			With("email", user.Email).
			Wrap(auth.ErrDuplicateEmail)
	}
	if err != nil {
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("email", user.Email).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id.String())

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_FAILED").
			With("operation", "get user by id").
			With("id", id.String()).
			Wrap(err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email, ignoring case.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("email", email).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_FAILED").
			With("operation", "get user by email").
			With("email", email).
			Wrap(err)
	}
	return user, nil
}

// ExistsByEmail reports whether an account uses email.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`, email).Scan(&exists)
	if err != nil {
		return false, oops.Code("USER_EXISTS_FAILED").
			With("operation", "check email").
			With("email", email).
			Wrap(err)
	}
	return exists, nil
}

// IncrementFailedLogins bumps the failure counter in a single statement
// and returns the new value.
func (r *UserRepository) IncrementFailedLogins(ctx context.Context, id ulid.ULID) (int, error) {
	var failures int
	err := r.db.QueryRow(ctx, `
		UPDATE users
		SET failed_login_attempts = failed_login_attempts + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING failed_login_attempts
	`, id.String()).Scan(&failures)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return 0, oops.Code("USER_INCREMENT_FAILURES_FAILED").
			With("operation", "increment failed logins").
			With("id", id.String()).
			Wrap(err)
	}
	return failures, nil
}

// ResetFailedLogins zeroes the failure counter and clears any lock.
func (r *UserRepository) ResetFailedLogins(ctx context.Context, id ulid.ULID) error {
	return r.execByID(ctx, "USER_RESET_FAILURES_FAILED", "reset failed logins", id, `
		UPDATE users
		SET failed_login_attempts = 0, locked_until = NULL, updated_at = NOW()
		WHERE id = $1
	`)
}

// LockUntil locks the account until the given time.
func (r *UserRepository) LockUntil(ctx context.Context, id ulid.ULID, until time.Time) error {
	return r.execByID(ctx, "USER_LOCK_FAILED", "lock user", id, `
		UPDATE users SET locked_until = $2, updated_at = NOW() WHERE id = $1
	`, until)
}

// RecordLogin stamps the last successful login.
func (r *UserRepository) RecordLogin(ctx context.Context, id ulid.ULID, at time.Time) error {
	return r.execByID(ctx, "USER_RECORD_LOGIN_FAILED", "record login", id, `
		UPDATE users SET last_login_at = $2, updated_at = NOW() WHERE id = $1
	`, at)
}

// MarkEmailVerified sets only the email_verified flag.
func (r *UserRepository) MarkEmailVerified(ctx context.Context, id ulid.ULID) error {
	return r.execByID(ctx, "USER_VERIFY_EMAIL_FAILED", "mark email verified", id, `
		UPDATE users SET email_verified = TRUE, updated_at = NOW() WHERE id = $1
	`)
}

// ReplacePasswordHash swaps the hash only while it still equals oldHash.
// It reports false when the hash changed in the meantime or the user is gone.
func (r *UserRepository) ReplacePasswordHash(ctx context.Context, id ulid.ULID, oldHash, newHash string) (bool, error) {
	result, err := r.db.Exec(ctx, `
		UPDATE users SET password_hash = $3, updated_at = NOW()
		WHERE id = $1 AND password_hash = $2
	`, id.String(), oldHash, newHash)
	if err != nil {
		return false, oops.Code("USER_REPLACE_HASH_FAILED").
			With("operation", "replace password hash").
			With("id", id.String()).
			Wrap(err)
	}
	return result.RowsAffected() == 1, nil
}

// UpdatePassword replaces only the password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error {
	return r.execByID(ctx, "USER_UPDATE_PASSWORD_FAILED", "update password", id, `
		UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1
	`, passwordHash)
}

// execByID runs an UPDATE keyed on $1 = id and maps zero affected rows
// to auth.ErrNotFound.
func (r *UserRepository) execByID(ctx context.Context, code, operation string, id ulid.ULID, sql string, args ...any) error {
	result, err := r.db.Exec(ctx, sql, append([]any{id.String()}, args...)...)
	if err != nil {
		return oops.Code(code).
			With("operation", operation).
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// scanUser scans a single row into a User.
// Scan errors are returned unwrapped; callers add the lookup context.
func scanUser(row pgx.Row) (*auth.User, error) {
	var u userRow
	if err := row.Scan(u.dest()...); err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with lookup context
	}
	return u.user()
}

// Compile-time interface check.
var _ auth.UserRepository = (*UserRepository)(nil)
