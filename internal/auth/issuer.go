// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Token lifetime defaults.
const (
	DefaultAccessTokenLifetime  = 15 * time.Minute
	DefaultRefreshTokenLifetime = 7 * 24 * time.Hour
)

// MinSigningKeyLength is the minimum HS256 key size in bytes.
const MinSigningKeyLength = 32

// Claims are the access token claims.
type Claims struct {
	Email         string `json:"email"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	EmailVerified bool   `json:"email_verified"`
	Role          string `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (ulid.ULID, error) {
	id, err := ulid.Parse(c.Subject)
	if err != nil {
		return ulid.ULID{}, oops.Code(CodeUnauthenticated).
			With("subject", c.Subject).
			Errorf("token subject is not a valid user id")
	}
	return id, nil
}

// TokenIssuer builds and validates access tokens and mints refresh tokens.
type TokenIssuer interface {
	// IssueAccessToken returns a signed access token for the user.
	IssueAccessToken(user *User) (string, error)

	// IssueRefreshToken returns a new opaque refresh token.
	IssueRefreshToken() (string, error)

	// AccessTokenExpiry returns the expiry for an access token issued now.
	AccessTokenExpiry() time.Time

	// RefreshTokenExpiry returns the expiry for a refresh token issued now.
	RefreshTokenExpiry() time.Time

	// ValidateStructure verifies signature, issuer, audience and expiry.
	// Returns nil on any failure.
	ValidateStructure(token string) *Claims
}

// IssuerConfig configures a JWTIssuer.
type IssuerConfig struct {
	SigningKey           []byte
	Issuer               string
	Audience             string
	AccessTokenLifetime  time.Duration
	RefreshTokenLifetime time.Duration
}

// JWTIssuer implements TokenIssuer with HS256 JWTs.
type JWTIssuer struct {
	key             []byte
	issuer          string
	audience        string
	accessLifetime  time.Duration
	refreshLifetime time.Duration
	now             func() time.Time
}

// NewJWTIssuer creates a JWTIssuer. Zero lifetimes fall back to the defaults.
func NewJWTIssuer(cfg IssuerConfig) (*JWTIssuer, error) {
	if len(cfg.SigningKey) < MinSigningKeyLength {
		return nil, oops.Code("AUTH_ISSUER_CONFIG").
			With("min_length", MinSigningKeyLength).
			Errorf("signing key must be at least %d bytes", MinSigningKeyLength)
	}
	if cfg.Issuer == "" {
		return nil, oops.Code("AUTH_ISSUER_CONFIG").Errorf("issuer is required")
	}
	if cfg.Audience == "" {
		return nil, oops.Code("AUTH_ISSUER_CONFIG").Errorf("audience is required")
	}

	access := cfg.AccessTokenLifetime
	if access <= 0 {
		access = DefaultAccessTokenLifetime
	}
	refresh := cfg.RefreshTokenLifetime
	if refresh <= 0 {
		refresh = DefaultRefreshTokenLifetime
	}

	key := make([]byte, len(cfg.SigningKey))
	copy(key, cfg.SigningKey)

	return &JWTIssuer{
		key:             key,
		issuer:          cfg.Issuer,
		audience:        cfg.Audience,
		accessLifetime:  access,
		refreshLifetime: refresh,
		now:             time.Now,
	}, nil
}

// IssueAccessToken returns a signed HS256 access token for the user.
func (i *JWTIssuer) IssueAccessToken(user *User) (string, error) {
	if user == nil {
		return "", oops.Code("AUTH_TOKEN_SIGN_FAILED").Errorf("user cannot be nil")
	}

	now := i.now()
	claims := &Claims{
		Email:         user.Email,
		GivenName:     user.FirstName,
		FamilyName:    user.LastName,
		EmailVerified: user.EmailVerified,
		Role:          DefaultRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   user.ID.String(),
			Audience:  jwt.ClaimStrings{i.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessLifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", oops.Code("AUTH_TOKEN_SIGN_FAILED").
			With("user_id", user.ID.String()).
			Wrap(err)
	}
	return signed, nil
}

// IssueRefreshToken returns 64 bytes of URL-safe randomness.
func (i *JWTIssuer) IssueRefreshToken() (string, error) {
	return GenerateSecureToken(RefreshTokenBytes)
}

// AccessTokenExpiry returns now plus the access token lifetime.
func (i *JWTIssuer) AccessTokenExpiry() time.Time {
	return i.now().Add(i.accessLifetime)
}

// RefreshTokenExpiry returns now plus the refresh token lifetime.
func (i *JWTIssuer) RefreshTokenExpiry() time.Time {
	return i.now().Add(i.refreshLifetime)
}

// ValidateStructure parses and validates a token. Returns nil on any failure.
func (i *JWTIssuer) ValidateStructure(token string) *Claims {
	if token == "" {
		return nil
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, oops.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return nil
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// Compile-time interface check.
var _ TokenIssuer = (*JWTIssuer)(nil)
