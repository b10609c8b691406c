// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

// Package auth provides the authentication core for MagicSessions.
//
// # Domain Types
//
// Domain types (User, RefreshToken, EmailVerificationToken,
// PasswordResetToken) should be created using their constructors:
//   - NewUser - creates an unverified, active User with a normalized email
//   - NewRefreshToken - creates a RefreshToken holding only the token hash
//   - NewEmailVerificationToken - creates a single-use verification token
//   - NewPasswordResetToken - creates a PasswordResetToken holding only the token hash
//
// Direct struct initialization bypasses validation and may create invalid state.
// Repository implementations receive pre-validated types from these constructors.
//
// # Primitives
//
// BcryptHasher hashes passwords, JWTIssuer signs and validates HS256 access
// tokens and mints opaque refresh tokens, and GenerateSecureToken and
// HashToken produce and digest opaque tokens.
//
// # Services
//
// Service types coordinate domain operations:
//   - Service - register, login, refresh rotation, logout, email verification
//   - PasswordResetService - password reset flow
//   - Sweeper - periodic removal of expired tokens
//
// Services are created with New* constructors that validate dependencies.
// Errors carry oops codes; KindOf classifies them for the transport layer.
package auth
