// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package auth

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/oops"
)

// MinPasswordLength is the minimum number of characters in a password.
const MinPasswordLength = 8

// PasswordSymbols is the set of characters that satisfy the symbol requirement.
const PasswordSymbols = "!@#$%^&*()_+-=[]{}|;:,.<>?"

// ValidatePasswordStrength enforces the password policy: at least
// MinPasswordLength characters with one lowercase letter, one uppercase
// letter, one digit and one character from PasswordSymbols.
func ValidatePasswordStrength(password string) error {
	if strings.TrimSpace(password) == "" || utf8.RuneCountInString(password) < MinPasswordLength {
		return oops.Code(CodeWeakPassword).
			With("min_length", MinPasswordLength).
			Errorf("password does not meet security requirements")
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(PasswordSymbols, r):
			hasSymbol = true
		}
	}

	if !hasLower || !hasUpper || !hasDigit || !hasSymbol {
		return oops.Code(CodeWeakPassword).
			With("has_lower", hasLower).
			With("has_upper", hasUpper).
			With("has_digit", hasDigit).
			With("has_symbol", hasSymbol).
			Errorf("password does not meet security requirements")
	}
	return nil
}
