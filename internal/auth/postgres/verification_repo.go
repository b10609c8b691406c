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

// VerificationTokenRepository implements auth.VerificationTokenRepository using PostgreSQL.
type VerificationTokenRepository struct {
	db store.Querier
}

// NewVerificationTokenRepository creates a new VerificationTokenRepository.
func NewVerificationTokenRepository(db store.Querier) *VerificationTokenRepository {
	return &VerificationTokenRepository{db: db}
}

// Create stores a new verification token.
func (r *VerificationTokenRepository) Create(ctx context.Context, token *auth.EmailVerificationToken) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO email_verification_tokens (id, user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, token.ID.String(), token.UserID.String(), token.Token, token.ExpiresAt, token.CreatedAt)
	if err != nil {
		return oops.Code("VERIFICATION_CREATE_FAILED").
			With("operation", "insert verification token").
			With("user_id", token.UserID.String()).
			Wrap(err)
	}
	return nil
}

// GetByToken returns the token and its owner in one query.
func (r *VerificationTokenRepository) GetByToken(ctx context.Context, token string) (*auth.EmailVerificationToken, *auth.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT v.id, v.user_id, v.token, v.expires_at, v.created_at, `+qualifiedUserColumns+`
		FROM email_verification_tokens v
		JOIN users u ON u.id = v.user_id
		WHERE v.token = $1
	`, token)

	var (
		id, userID string
		raw        string
		expiresAt  time.Time
		createdAt  time.Time
		u          userRow
	)
	err := row.Scan(append([]any{&id, &userID, &raw, &expiresAt, &createdAt}, u.dest()...)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, oops.Code("VERIFICATION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, nil, oops.Code("VERIFICATION_GET_FAILED").
			With("operation", "get verification token").
			Wrap(err)
	}

	tokenID, err := parseID("verification_token", id)
	if err != nil {
		return nil, nil, err
	}
	ownerID, err := parseID("user", userID)
	if err != nil {
		return nil, nil, err
	}
	owner, err := u.user()
	if err != nil {
		return nil, nil, err
	}
	return &auth.EmailVerificationToken{
		ID:        tokenID,
		UserID:    ownerID,
		Token:     raw,
		ExpiresAt: expiresAt,
		CreatedAt: createdAt,
	}, owner, nil
}

// Delete removes a verification token.
func (r *VerificationTokenRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM email_verification_tokens WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("VERIFICATION_DELETE_FAILED").
			With("operation", "delete verification token").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("VERIFICATION_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// DeleteByUser removes every verification token of a user.
func (r *VerificationTokenRepository) DeleteByUser(ctx context.Context, userID ulid.ULID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM email_verification_tokens WHERE user_id = $1`, userID.String())
	if err != nil {
		return oops.Code("VERIFICATION_DELETE_BY_USER_FAILED").
			With("operation", "delete verification tokens by user").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return nil
}

// DeleteExpired removes expired verification tokens and returns the count.
func (r *VerificationTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM email_verification_tokens WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, oops.Code("VERIFICATION_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired verification tokens").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// Compile-time interface check.
var _ auth.VerificationTokenRepository = (*VerificationTokenRepository)(nil)
