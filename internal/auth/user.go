// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package auth

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Name and email length limits, matching the users table.
const (
	MaxEmailLength = 256
	MaxNameLength  = 100
)

// DefaultRole is the role claim carried by every access token.
const DefaultRole = "User"

// User represents a registered account.
type User struct {
	ID                  ulid.ULID
	Email               string
	PasswordHash        string
	FirstName           string
	LastName            string
	EmailVerified       bool
	Active              bool
	FailedLoginAttempts int
	LockedUntil         *time.Time
	LastLoginAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewUser creates a validated, unverified, active User.
// The email is normalized and names are trimmed.
func NewUser(email, passwordHash, firstName, lastName string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, oops.Code(CodeInvalidInput).Errorf("email cannot be empty")
	}
	if len(email) > MaxEmailLength {
		return nil, oops.Code(CodeInvalidInput).
			With("max", MaxEmailLength).
			Errorf("email must be at most %d characters", MaxEmailLength)
	}
	if strings.TrimSpace(passwordHash) == "" {
		return nil, oops.Code(CodeInvalidInput).Errorf("password hash cannot be empty")
	}

	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if len(firstName) > MaxNameLength || len(lastName) > MaxNameLength {
		return nil, oops.Code(CodeInvalidInput).
			With("max", MaxNameLength).
			Errorf("names must be at most %d characters", MaxNameLength)
	}

	now := time.Now().UTC()
	return &User{
		ID:           ulid.Make(),
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FullName joins the first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsLocked returns true if the account is currently locked out.
func (u *User) IsLocked() bool {
	return IsLockedOut(u.LockedUntil, time.Now())
}

// IsLockedAt reports whether the account would be locked at t.
func (u *User) IsLockedAt(t time.Time) bool {
	return IsLockedOut(u.LockedUntil, t)
}

// UserSummary is the public view of a user returned after authentication.
type UserSummary struct {
	ID            ulid.ULID  `json:"id"`
	Email         string     `json:"email"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	FullName      string     `json:"fullName"`
	EmailVerified bool       `json:"isEmailVerified"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`
}

// Summary returns the public view of u.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		FullName:      u.FullName(),
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		LastLoginAt:   u.LastLoginAt,
	}
}

// UserRepository manages user persistence.
type UserRepository interface {
	// Create stores a new user.
	// Returns an error wrapping ErrDuplicateEmail if the email is taken.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByEmail retrieves a user by email (case-insensitive).
	// Returns ErrNotFound if no user has the given email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// ExistsByEmail reports whether a user with the email exists (case-insensitive).
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// RecordLogin sets only the last-login timestamp.
	RecordLogin(ctx context.Context, id ulid.ULID, at time.Time) error

	// MarkEmailVerified sets only the email-verified flag.
	MarkEmailVerified(ctx context.Context, id ulid.ULID) error

	// IncrementFailedLogins atomically increments the failed-login counter
	// and returns the new value.
	IncrementFailedLogins(ctx context.Context, id ulid.ULID) (int, error)

	// ResetFailedLogins zeroes the failed-login counter and clears any lock.
	ResetFailedLogins(ctx context.Context, id ulid.ULID) error

	// LockUntil locks the account until the given time.
	LockUntil(ctx context.Context, id ulid.ULID, until time.Time) error

	// UpdatePassword updates only the password hash for a user.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error

	// ReplacePasswordHash sets newHash only if the stored hash still equals
	// oldHash, and reports whether it did.
	ReplacePasswordHash(ctx context.Context, id ulid.ULID, oldHash, newHash string) (bool, error)
}
