// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package auth

import (
	"errors"

	"github.com/samber/oops"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned by a UserRepository when the email is taken.
var ErrDuplicateEmail = errors.New("email already registered")

// Error codes returned by the orchestrator. Callers translate them to
// transport status through KindOf.
const (
	CodeInvalidInput          = "AUTH_INVALID_INPUT"
	CodeWeakPassword          = "AUTH_WEAK_PASSWORD"
	CodeEmailDomainBlocked    = "AUTH_EMAIL_DOMAIN_BLOCKED"
	CodeDuplicateEmail        = "AUTH_DUPLICATE_EMAIL"
	CodeInvalidCredentials    = "AUTH_INVALID_CREDENTIALS"
	CodeAccountLocked         = "AUTH_ACCOUNT_LOCKED"
	CodeEmailNotVerified      = "AUTH_EMAIL_NOT_VERIFIED"
	CodeInvalidRefreshToken   = "AUTH_INVALID_REFRESH_TOKEN"
	CodeAccountDisabled       = "AUTH_ACCOUNT_DISABLED"
	CodeInvalidOrExpiredToken = "AUTH_INVALID_OR_EXPIRED_TOKEN"
	CodeUnauthenticated       = "AUTH_UNAUTHENTICATED"
	CodeResetTokenInvalid     = "RESET_TOKEN_INVALID"
	CodeResetTokenExpired     = "RESET_TOKEN_EXPIRED"
)

// Kind classifies an error for the boundary layer.
type Kind int

// Error kinds.
const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindUnauthorized
	KindNotFound
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

var codeKinds = map[string]Kind{
	CodeInvalidInput:          KindValidation,
	CodeWeakPassword:          KindValidation,
	CodeEmailDomainBlocked:    KindValidation,
	CodeInvalidOrExpiredToken: KindValidation,
	CodeResetTokenInvalid:     KindValidation,
	CodeResetTokenExpired:     KindValidation,
	CodeDuplicateEmail:        KindConflict,
	CodeInvalidCredentials:    KindUnauthorized,
	CodeAccountLocked:         KindUnauthorized,
	CodeEmailNotVerified:      KindUnauthorized,
	CodeInvalidRefreshToken:   KindUnauthorized,
	CodeAccountDisabled:       KindUnauthorized,
	CodeUnauthenticated:       KindUnauthorized,
}

// KindOf returns the kind of err. Coded orchestrator errors map through
// their code; anything wrapping ErrNotFound is KindNotFound; everything
// else is KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	if kind, found := codeKinds[ErrorCode(err)]; found {
		return kind
	}
	if errors.Is(err, ErrNotFound) {
		return KindNotFound
	}
	return KindInternal
}

// ErrorCode returns the oops code carried by err, or "" if there is none.
func ErrorCode(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code, _ := oopsErr.Code().(string)
	return code
}

// PublicMessage returns the client-safe message for err. Internal errors
// get a generic message so storage details never leak.
func PublicMessage(err error) string {
	if KindOf(err) == KindInternal {
		return "internal server error"
	}
	if oopsErr, ok := oops.AsOops(err); ok {
		return oopsErr.Error()
	}
	return err.Error()
}
