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

const refreshTokenColumns = `t.id, t.user_id, t.token_hash, t.expires_at, t.revoked, t.device_info, t.ip_address, t.created_at`

// RefreshTokenRepository implements auth.RefreshTokenRepository using PostgreSQL.
type RefreshTokenRepository struct {
	db store.Querier
}

// NewRefreshTokenRepository creates a new RefreshTokenRepository.
func NewRefreshTokenRepository(db store.Querier) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Create stores a new refresh token.
func (r *RefreshTokenRepository) Create(ctx context.Context, token *auth.RefreshToken) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, revoked, device_info, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		token.ID.String(),
		token.UserID.String(),
		token.TokenHash,
		token.ExpiresAt,
		token.Revoked,
		token.DeviceInfo,
		token.IPAddress,
		token.CreatedAt,
	)
	if err != nil {
		return oops.Code("REFRESH_CREATE_FAILED").
			With("operation", "insert refresh token").
			With("user_id", token.UserID.String()).
			Wrap(err)
	}
	return nil
}

// GetByTokenHash returns the token and its owner in one query.
func (r *RefreshTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.RefreshToken, *auth.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+refreshTokenColumns+`, `+qualifiedUserColumns+`
		FROM refresh_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.token_hash = $1
	`, tokenHash)

	var (
		t refreshTokenRow
		u userRow
	)
	err := row.Scan(append(t.dest(), u.dest()...)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, oops.Code("REFRESH_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, nil, oops.Code("REFRESH_GET_FAILED").
			With("operation", "get refresh token by hash").
			Wrap(err)
	}

	token, err := t.token()
	if err != nil {
		return nil, nil, err
	}
	owner, err := u.user()
	if err != nil {
		return nil, nil, err
	}
	return token, owner, nil
}

// Update writes the mutable columns of token.
func (r *RefreshTokenRepository) Update(ctx context.Context, token *auth.RefreshToken) error {
	result, err := r.db.Exec(ctx, `
		UPDATE refresh_tokens SET expires_at = $2, revoked = $3, device_info = $4, ip_address = $5
		WHERE id = $1
	`, token.ID.String(), token.ExpiresAt, token.Revoked, token.DeviceInfo, token.IPAddress)
	if err != nil {
		return oops.Code("REFRESH_UPDATE_FAILED").
			With("operation", "update refresh token").
			With("id", token.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("REFRESH_NOT_FOUND").
			With("id", token.ID.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// Delete removes a refresh token.
func (r *RefreshTokenRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("REFRESH_DELETE_FAILED").
			With("operation", "delete refresh token").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("REFRESH_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// ListByUser returns every token of a user, newest first.
func (r *RefreshTokenRepository) ListByUser(ctx context.Context, userID ulid.ULID) ([]*auth.RefreshToken, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+refreshTokenColumns+`
		FROM refresh_tokens t
		WHERE t.user_id = $1
		ORDER BY t.created_at DESC, t.id DESC
	`, userID.String())
	if err != nil {
		return nil, oops.Code("REFRESH_LIST_FAILED").
			With("operation", "list refresh tokens").
			With("user_id", userID.String()).
			Wrap(err)
	}
	defer rows.Close()

	var tokens []*auth.RefreshToken
	for rows.Next() {
		var t refreshTokenRow
		if err := rows.Scan(t.dest()...); err != nil {
			return nil, oops.Code("REFRESH_SCAN_FAILED").
				With("operation", "scan refresh token").
				With("user_id", userID.String()).
				Wrap(err)
		}
		token, err := t.token()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("REFRESH_LIST_FAILED").
			With("operation", "iterate refresh tokens").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return tokens, nil
}

// CountActiveByUser counts unrevoked, unexpired tokens of a user.
func (r *RefreshTokenRepository) CountActiveByUser(ctx context.Context, userID ulid.ULID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM refresh_tokens
		WHERE user_id = $1 AND revoked = FALSE AND expires_at > NOW()
	`, userID.String()).Scan(&n)
	if err != nil {
		return 0, oops.Code("REFRESH_COUNT_FAILED").
			With("operation", "count active refresh tokens").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return n, nil
}

// RevokeByTokenHash revokes the token with the given hash. An unknown
// hash is not an error.
func (r *RefreshTokenRepository) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	_, err := r.db.Exec(ctx, `UPDATE refresh_tokens SET revoked = TRUE WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return oops.Code("REFRESH_REVOKE_FAILED").
			With("operation", "revoke refresh token by hash").
			Wrap(err)
	}
	return nil
}

// RevokeIfActive revokes the token only if it is still active and
// reports whether this call did so. Concurrent callers race on the row
// lock; exactly one observes true.
func (r *RefreshTokenRepository) RevokeIfActive(ctx context.Context, id ulid.ULID) (bool, error) {
	result, err := r.db.Exec(ctx, `
		UPDATE refresh_tokens SET revoked = TRUE
		WHERE id = $1 AND revoked = FALSE AND expires_at > NOW()
	`, id.String())
	if err != nil {
		return false, oops.Code("REFRESH_REVOKE_FAILED").
			With("operation", "revoke active refresh token").
			With("id", id.String()).
			Wrap(err)
	}
	return result.RowsAffected() == 1, nil
}

// RevokeAllByUser revokes every unrevoked token of a user and returns
// how many changed.
func (r *RefreshTokenRepository) RevokeAllByUser(ctx context.Context, userID ulid.ULID) (int64, error) {
	result, err := r.db.Exec(ctx, `
		UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = $1 AND revoked = FALSE
	`, userID.String())
	if err != nil {
		return 0, oops.Code("REFRESH_REVOKE_ALL_FAILED").
			With("operation", "revoke all refresh tokens").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// DeleteExpired removes expired tokens and returns the count.
func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, oops.Code("REFRESH_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired refresh tokens").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

type refreshTokenRow struct {
	id         string
	userID     string
	tokenHash  string
	expiresAt  time.Time
	revoked    bool
	deviceInfo string
	ipAddress  string
	createdAt  time.Time
}

func (t *refreshTokenRow) dest() []any {
	return []any{&t.id, &t.userID, &t.tokenHash, &t.expiresAt, &t.revoked, &t.deviceInfo, &t.ipAddress, &t.createdAt}
}

func (t *refreshTokenRow) token() (*auth.RefreshToken, error) {
	id, err := parseID("refresh_token", t.id)
	if err != nil {
		return nil, err
	}
	userID, err := parseID("user", t.userID)
	if err != nil {
		return nil, err
	}
	return &auth.RefreshToken{
		ID:         id,
		UserID:     userID,
		TokenHash:  t.tokenHash,
		ExpiresAt:  t.expiresAt,
		Revoked:    t.revoked,
		DeviceInfo: t.deviceInfo,
		IPAddress:  t.ipAddress,
		CreatedAt:  t.createdAt,
	}, nil
}

// Compile-time interface check.
var _ auth.RefreshTokenRepository = (*RefreshTokenRepository)(nil)
