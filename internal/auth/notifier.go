// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package auth

import (
	"context"
	"log/slog"
	"time"
)

// Notifier delivers out-of-band messages to users. Delivery is best effort:
// callers log failures and carry on.
type Notifier interface {
	// SendVerification delivers an email verification token.
	SendVerification(ctx context.Context, user *User, token string, expiresAt time.Time) error

	// SendPasswordReset delivers a password reset token.
	SendPasswordReset(ctx context.Context, user *User, token string, expiresAt time.Time) error
}

// LogNotifier records notifications in the log instead of sending email.
// Token values are never logged.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier. A nil logger uses slog.Default().
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// SendVerification logs that a verification token was generated.
func (n *LogNotifier) SendVerification(ctx context.Context, user *User, _ string, expiresAt time.Time) error {
	n.logger.InfoContext(ctx, "email verification token generated",
		"user_id", user.ID.String(),
		"expires_at", expiresAt)
	return nil
}

// SendPasswordReset logs that a password reset token was generated.
func (n *LogNotifier) SendPasswordReset(ctx context.Context, user *User, _ string, expiresAt time.Time) error {
	n.logger.InfoContext(ctx, "password reset token generated",
		"user_id", user.ID.String(),
		"expires_at", expiresAt)
	return nil
}

// Outcome labels reported to a MetricsRecorder.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// MetricsRecorder receives authentication events.
type MetricsRecorder interface {
	// RecordAuth counts an operation outcome. reason is the error code on failure.
	RecordAuth(operation, outcome, reason string)

	// RecordLockout counts an account lockout.
	RecordLockout()
}

type nopRecorder struct{}

func (nopRecorder) RecordAuth(string, string, string) {}
func (nopRecorder) RecordLockout()                    {}
