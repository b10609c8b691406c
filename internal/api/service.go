// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package api

import (
	"context"

	"github.com/oklog/ulid/v2"

	"github.com/magicsessions/magicsessions/internal/auth"
)

// AuthService is the orchestrator surface the handlers call.
type AuthService interface {
	Register(ctx context.Context, in auth.RegisterInput) (*auth.RegisterResult, error)
	Login(ctx context.Context, in auth.LoginInput) (*auth.AuthResult, error)
	Refresh(ctx context.Context, rawToken string) (*auth.AuthResult, error)
	Logout(ctx context.Context, rawToken string) (*auth.Ack, error)
	LogoutAll(ctx context.Context, userID ulid.ULID) (int64, error)
	Sessions(ctx context.Context, userID ulid.ULID) ([]auth.SessionInfo, error)
	VerifyEmail(ctx context.Context, rawToken string) (*auth.Ack, error)
	ResendVerification(ctx context.Context, email string) (*auth.Ack, error)
	CurrentUser(claims *auth.Claims) (*auth.CurrentUser, error)
}

// PasswordResetter handles the password reset flow.
type PasswordResetter interface {
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// TokenValidator validates bearer access tokens. It returns nil for any
// token that fails validation.
type TokenValidator interface {
	ValidateStructure(token string) *auth.Claims
}

var (
	_ AuthService      = (*auth.Service)(nil)
	_ PasswordResetter = (*auth.PasswordResetService)(nil)
	_ TokenValidator   = (*auth.JWTIssuer)(nil)
)
