// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/elovote/middleware"
	"github.com/danielhkuo/elovote/models"
)

// Me handles GET /auth/me
func Me(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MeResponse{
		Subject:       id.Subject,
		Email:         id.Email,
		Role:          id.Role,
		IsAdmin:       id.IsAdmin(),
		EmailVerified: id.EmailVerified,
	})
}

// Verify handles GET /auth/verify. Reaching it means the token passed
// middleware.RequireIdentity.
func Verify(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VerifyResponse{
		Valid:     true,
		Message:   "Token is valid",
		Subject:   id.Subject,
		ExpiresAt: id.ExpiresAt,
	})
}
