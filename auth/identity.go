// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"strings"
	"time"

	"github.com/danielhkuo/elovote/models"
)

// Identity is the caller as described by a verified access token.
type Identity struct {
	Subject       string
	Email         string
	Role          string
	Superadmin    bool
	EmailVerified bool
	IssuedAt      time.Time
	ExpiresAt     time.Time
}

// IsAdmin reports whether the caller may act on any poll or session.
func (id Identity) IsAdmin() bool {
	return id.Superadmin || id.Role == models.RoleSuperadmin || id.Role == models.RoleAdmin
}

// Owns reports whether email belongs to the caller. Empty emails never match.
func (id Identity) Owns(email string) bool {
	return id.Email != "" && email != "" && strings.EqualFold(id.Email, email)
}
