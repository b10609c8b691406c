// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package api

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Field limits mirror the users table.
const (
	maxEmailLength    = 256
	maxNameLength     = 100
	maxPasswordLength = 128
	maxTokenLength    = 512
)

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Validate checks the registration payload. Password strength is enforced
// by the service.
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, maxEmailLength), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(1, maxPasswordLength)),
		validation.Field(&r.FirstName, validation.Length(0, maxNameLength)),
		validation.Field(&r.LastName, validation.Length(0, maxNameLength)),
	)
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the login payload.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(0, maxEmailLength), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(0, maxPasswordLength)),
	)
}

// RefreshTokenRequest is the body of POST /refresh and POST /logout.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Validate checks the refresh token payload. Any length is accepted;
// tokens that match nothing are rejected by the service as invalid.
func (r RefreshTokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

// VerifyEmailRequest is the body of POST /verify-email.
type VerifyEmailRequest struct {
	Token string `json:"token"`
}

// Validate checks the verification payload.
func (r VerifyEmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required, validation.Length(0, maxTokenLength)),
	)
}

// EmailRequest is the body of POST /resend-verification and
// POST /password-reset/request.
type EmailRequest struct {
	Email string `json:"email"`
}

// Validate checks the email payload.
func (r EmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(0, maxEmailLength), is.Email),
	)
}

// ResetPasswordRequest is the body of POST /password-reset/confirm.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// Validate checks the reset payload.
func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required, validation.Length(0, maxTokenLength)),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(1, maxPasswordLength)),
	)
}

// MessageResponse is a plain message body, used for errors too.
type MessageResponse struct {
	Message string `json:"message"`
}

// LogoutAllResponse is the body returned by POST /logout-all.
type LogoutAllResponse struct {
	Message string `json:"message"`
	Revoked int64  `json:"revoked"`
}
