// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package auth

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// EmailDomainBlocklist rejects registrations from domains matching any of
// a set of glob patterns such as "*.mailinator.com".
type EmailDomainBlocklist struct {
	patterns []string
	globs    []glob.Glob
}

// NewEmailDomainBlocklist compiles the patterns. Patterns are matched
// case-insensitively with '.' as the separator.
func NewEmailDomainBlocklist(patterns []string) (*EmailDomainBlocklist, error) {
	b := &EmailDomainBlocklist{}
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		g, err := glob.Compile(p, '.')
		if err != nil {
			return nil, oops.Code("AUTH_BLOCKLIST_INVALID").
				With("pattern", p).
				Wrap(err)
		}
		b.patterns = append(b.patterns, p)
		b.globs = append(b.globs, g)
	}
	return b, nil
}

// Blocked reports whether the email's domain matches a pattern, and which one.
func (b *EmailDomainBlocklist) Blocked(email string) (bool, string) {
	if b == nil {
		return false, ""
	}
	at := strings.LastIndexByte(email, '@')
	if at < 0 || at == len(email)-1 {
		return false, ""
	}
	domain := strings.ToLower(email[at+1:])
	for i, g := range b.globs {
		if g.Match(domain) {
			return true, b.patterns[i]
		}
	}
	return false, ""
}

// Len returns the number of patterns.
func (b *EmailDomainBlocklist) Len() int {
	if b == nil {
		return 0
	}
	return len(b.globs)
}
