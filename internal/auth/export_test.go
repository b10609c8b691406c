// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package auth

import "time"

// SetIssuerClock replaces the issuer's time source.
func SetIssuerClock(i *JWTIssuer, now func() time.Time) {
	i.now = now
}

// DummyPasswordHash exposes the hash verified for unknown emails.
const DummyPasswordHash = dummyPasswordHash
