// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package auth_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/magicsessions/magicsessions/internal/auth"
)

// memStore is an in-memory implementation of every repository used by the
// services. It copies values in and out so callers cannot alias state.
type memStore struct {
	mu            sync.Mutex
	now           func() time.Time
	users         map[ulid.ULID]auth.User
	refreshTokens map[ulid.ULID]auth.RefreshToken
	verifications map[ulid.ULID]auth.EmailVerificationToken
	resets        map[ulid.ULID]auth.PasswordResetToken
}

func newMemStore(now func() time.Time) *memStore {
	return &memStore{
		now:           now,
		users:         make(map[ulid.ULID]auth.User),
		refreshTokens: make(map[ulid.ULID]auth.RefreshToken),
		verifications: make(map[ulid.ULID]auth.EmailVerificationToken),
		resets:        make(map[ulid.ULID]auth.PasswordResetToken),
	}
}

type memUsers struct{ *memStore }

type memRefreshTokens struct{ *memStore }

type memVerifications struct{ *memStore }

type memResets struct{ *memStore }

func (s memUsers) Create(_ context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return auth.ErrDuplicateEmail
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s memUsers) GetByID(_ context.Context, id ulid.ULID) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return &u, nil
}

func (s memUsers) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (s memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := s.GetByEmail(ctx, email)
	return err == nil, nil
}

func (s memUsers) RecordLogin(_ context.Context, id ulid.ULID, at time.Time) error {
	return s.mutateUser(id, func(u *auth.User) { u.LastLoginAt = &at })
}

func (s memUsers) MarkEmailVerified(_ context.Context, id ulid.ULID) error {
	return s.mutateUser(id, func(u *auth.User) { u.EmailVerified = true })
}

func (s memUsers) ReplacePasswordHash(_ context.Context, id ulid.ULID, oldHash, newHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.PasswordHash != oldHash {
		return false, nil
	}
	u.PasswordHash = newHash
	s.users[id] = u
	return true, nil
}

// mutateUser applies fn to the stored copy of a user.
func (s memUsers) mutateUser(id ulid.ULID, fn func(*auth.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return auth.ErrNotFound
	}
	fn(&u)
	s.users[id] = u
	return nil
}

func (s memUsers) IncrementFailedLogins(_ context.Context, id ulid.ULID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return 0, auth.ErrNotFound
	}
	u.FailedLoginAttempts++
	s.users[id] = u
	return u.FailedLoginAttempts, nil
}

func (s memUsers) ResetFailedLogins(_ context.Context, id ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return auth.ErrNotFound
	}
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	s.users[id] = u
	return nil
}

func (s memUsers) LockUntil(_ context.Context, id ulid.ULID, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return auth.ErrNotFound
	}
	u.LockedUntil = &until
	s.users[id] = u
	return nil
}

func (s memUsers) UpdatePassword(_ context.Context, id ulid.ULID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return auth.ErrNotFound
	}
	u.PasswordHash = hash
	s.users[id] = u
	return nil
}

func (s memRefreshTokens) Create(_ context.Context, token *auth.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshTokens[token.ID] = *token
	return nil
}

func (s memRefreshTokens) GetByTokenHash(_ context.Context, hash string) (*auth.RefreshToken, *auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.refreshTokens {
		if t.TokenHash == hash {
			u := s.users[t.UserID]
			return &t, &u, nil
		}
	}
	return nil, nil, auth.ErrNotFound
}

func (s memRefreshTokens) Update(_ context.Context, token *auth.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.refreshTokens[token.ID]; !ok {
		return auth.ErrNotFound
	}
	s.refreshTokens[token.ID] = *token
	return nil
}

func (s memRefreshTokens) Delete(_ context.Context, id ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refreshTokens, id)
	return nil
}

func (s memRefreshTokens) ListByUser(_ context.Context, userID ulid.ULID) ([]*auth.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*auth.RefreshToken
	for _, t := range s.refreshTokens {
		if t.UserID == userID {
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Compare(out[j].ID) > 0 })
	return out, nil
}

func (s memRefreshTokens) CountActiveByUser(_ context.Context, userID ulid.ULID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.refreshTokens {
		if t.UserID == userID && t.IsActiveAt(s.now()) {
			n++
		}
	}
	return n, nil
}

func (s memRefreshTokens) RevokeByTokenHash(_ context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.refreshTokens {
		if t.TokenHash == hash {
			t.Revoked = true
			s.refreshTokens[id] = t
		}
	}
	return nil
}

func (s memRefreshTokens) RevokeIfActive(_ context.Context, id ulid.ULID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.refreshTokens[id]
	if !ok || !t.IsActiveAt(s.now()) {
		return false, nil
	}
	t.Revoked = true
	s.refreshTokens[id] = t
	return true, nil
}

func (s memRefreshTokens) RevokeAllByUser(_ context.Context, userID ulid.ULID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, t := range s.refreshTokens {
		if t.UserID == userID && !t.Revoked {
			t.Revoked = true
			s.refreshTokens[id] = t
			n++
		}
	}
	return n, nil
}

func (s memRefreshTokens) DeleteExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, t := range s.refreshTokens {
		if t.IsExpiredAt(s.now()) {
			delete(s.refreshTokens, id)
			n++
		}
	}
	return n, nil
}

func (s memVerifications) Create(_ context.Context, token *auth.EmailVerificationToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifications[token.ID] = *token
	return nil
}

func (s memVerifications) GetByToken(_ context.Context, raw string) (*auth.EmailVerificationToken, *auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.verifications {
		if t.Token == raw {
			u := s.users[t.UserID]
			return &t, &u, nil
		}
	}
	return nil, nil, auth.ErrNotFound
}

func (s memVerifications) Delete(_ context.Context, id ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.verifications, id)
	return nil
}

func (s memVerifications) DeleteByUser(_ context.Context, userID ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.verifications {
		if t.UserID == userID {
			delete(s.verifications, id)
		}
	}
	return nil
}

func (s memVerifications) DeleteExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, t := range s.verifications {
		if t.IsExpiredAt(s.now()) {
			delete(s.verifications, id)
			n++
		}
	}
	return n, nil
}

func (s memResets) Create(_ context.Context, reset *auth.PasswordResetToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets[reset.ID] = *reset
	return nil
}

func (s memResets) GetByTokenHash(_ context.Context, hash string) (*auth.PasswordResetToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.resets {
		if r.TokenHash == hash {
			return &r, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (s memResets) Delete(_ context.Context, id ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.resets[id]; !ok {
		return auth.ErrNotFound
	}
	delete(s.resets, id)
	return nil
}

func (s memResets) DeleteByUser(_ context.Context, userID ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.resets {
		if r.UserID == userID {
			delete(s.resets, id)
		}
	}
	return nil
}

func (s memResets) DeleteExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, r := range s.resets {
		if !s.now().Before(r.ExpiresAt) {
			delete(s.resets, id)
			n++
		}
	}
	return n, nil
}

// captureNotifier records the last token delivered per user email.
type captureNotifier struct {
	mu           sync.Mutex
	verification map[string]string
	reset        map[string]string
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{verification: map[string]string{}, reset: map[string]string{}}
}

func (n *captureNotifier) SendVerification(_ context.Context, user *auth.User, token string, _ time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.verification[user.Email] = token
	return nil
}

func (n *captureNotifier) SendPasswordReset(_ context.Context, user *auth.User, token string, _ time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reset[user.Email] = token
	return nil
}

func (n *captureNotifier) verificationToken(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.verification[email]
}

func (n *captureNotifier) resetToken(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.reset[email]
}

var (
	_ auth.UserRepository              = memUsers{}
	_ auth.RefreshTokenRepository      = memRefreshTokens{}
	_ auth.VerificationTokenRepository = memVerifications{}
	_ auth.PasswordResetRepository     = memResets{}
	_ auth.Notifier                    = (*captureNotifier)(nil)
)
