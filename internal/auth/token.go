// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"

	"github.com/samber/oops"
)

// Token sizes in random bytes.
const (
	DefaultTokenBytes = 32
	RefreshTokenBytes = 64
)

// GenerateSecureToken draws byteLength bytes from crypto/rand and encodes
// them URL-safely without padding. A non-positive length uses DefaultTokenBytes.
func GenerateSecureToken(byteLength int) (string, error) {
	if byteLength <= 0 {
		byteLength = DefaultTokenBytes
	}
	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", oops.Code("AUTH_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", byteLength).
			Wrap(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken computes the hex SHA-256 of an opaque token. Only this digest
// is stored for refresh and reset tokens.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// VerifyTokenHash checks a plaintext token against a stored digest in
// constant time.
func VerifyTokenHash(token, hash string) bool {
	if token == "" || hash == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(HashToken(token)), []byte(hash)) == 1
}
