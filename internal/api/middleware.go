// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/samber/oops"

	"github.com/magicsessions/magicsessions/internal/auth"
)

type claimsKey struct{}

// WithClaims returns a context carrying validated access token claims.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims stored by RequireBearer, or nil.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims
}

// bearerToken extracts the token from an "Authorization: Bearer" header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireBearer rejects requests without a valid access token and stores
// the claims in the request context.
func (h *Handler) RequireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			h.writeError(w, r, oops.Code(auth.CodeUnauthenticated).Errorf("missing bearer token"))
			return
		}

		claims := h.tokens.ValidateStructure(token)
		if claims == nil {
			h.writeError(w, r, oops.Code(auth.CodeUnauthenticated).Errorf("invalid or expired access token"))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}
