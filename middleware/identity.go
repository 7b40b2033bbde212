// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/elovote/auth"
)

// RequireIdentity returns a wrapper that verifies the bearer token and
// stores the caller's identity in the request context. Requests without a
// valid token get 401.
func RequireIdentity(verifier auth.Verifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, ok := auth.BearerToken(r.Header.Get("Authorization"))
			if !ok {
				ErrorResponse(w, http.StatusUnauthorized, "Bearer token required")
				return
			}

			id, err := verifier.Verify(r.Context(), token)
			if err != nil {
				msg := "Invalid token"
				if errors.Is(err, auth.ErrTokenExpired) {
					msg = "Token expired"
				}
				slog.Warn("token rejected", "error", err, "path", r.URL.Path)
				ErrorResponse(w, http.StatusUnauthorized, msg)
				return
			}

			next(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		}
	}
}
