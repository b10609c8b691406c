// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magicsessions/magicsessions/internal/auth"
	"github.com/magicsessions/magicsessions/pkg/errutil"
)

func TestEmailDomainBlocklist(t *testing.T) {
	list, err := auth.NewEmailDomainBlocklist([]string{"mailinator.com", "*.tempmail.io", " ", "Spam.*"})
	require.NoError(t, err)
	assert.Equal(t, 3, list.Len())

	tests := []struct {
		email   string
		blocked bool
		pattern string
	}{
		{"a@mailinator.com", true, "mailinator.com"},
		{"a@MAILINATOR.COM", true, "mailinator.com"},
		{"a@x.tempmail.io", true, "*.tempmail.io"},
		{"a@tempmail.io", false, ""},
		{"a@a.b.tempmail.io", false, ""},
		{"a@spam.net", true, "spam.*"},
		{"a@example.com", false, ""},
		{"no-at-sign", false, ""},
		{"trailing@", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			blocked, pattern := list.Blocked(tt.email)
			assert.Equal(t, tt.blocked, blocked)
			assert.Equal(t, tt.pattern, pattern)
		})
	}
}

func TestEmailDomainBlocklist_Nil(t *testing.T) {
	var list *auth.EmailDomainBlocklist
	blocked, _ := list.Blocked("a@mailinator.com")
	assert.False(t, blocked)
	assert.Zero(t, list.Len())
}

func TestEmailDomainBlocklist_InvalidPattern(t *testing.T) {
	_, err := auth.NewEmailDomainBlocklist([]string{"[unterminated"})
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "AUTH_BLOCKLIST_INVALID")
}
