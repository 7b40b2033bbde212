// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier turns a raw bearer token into an Identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// JWTVerifier accepts HS256 tokens signed with a shared secret and RS256
// tokens signed by a key published at a JWKS endpoint. Either source may
// be left unset, which disables that algorithm.
type JWTVerifier struct {
	secret  []byte
	keys    *KeyCache
	methods []string
	leeway  time.Duration
}

// NewJWTVerifier returns a verifier for the configured key sources. At
// least one of secret and keys must be set.
func NewJWTVerifier(secret string, keys *KeyCache) (*JWTVerifier, error) {
	v := &JWTVerifier{keys: keys, leeway: 30 * time.Second}
	if secret != "" {
		v.secret = []byte(secret)
		v.methods = append(v.methods, jwt.SigningMethodHS256.Alg())
	}
	if keys != nil {
		v.methods = append(v.methods, jwt.SigningMethodRS256.Alg())
	}
	if len(v.methods) == 0 {
		return nil, errors.New("jwt verifier needs a secret or a JWKS key cache")
	}
	return v, nil
}

func (v *JWTVerifier) Verify(ctx context.Context, raw string) (Identity, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		switch t.Method.(type) {
		case *jwt.SigningMethodHMAC:
			return v.secret, nil
		case *jwt.SigningMethodRSA:
			if v.keys == nil {
				return nil, ErrUnknownKey
			}
			return v.keys.Keyfunc(ctx)(t)
		default:
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
	}, jwt.WithValidMethods(v.methods), jwt.WithLeeway(v.leeway))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return identityFromClaims(claims)
}

func identityFromClaims(claims jwt.MapClaims) (Identity, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Identity{}, ErrMissingSubject
	}

	id := Identity{Subject: sub}
	id.Email, _ = claims["email"].(string)
	id.Role, _ = claims["role"].(string)
	id.EmailVerified, _ = claims["email_verified"].(bool)

	// is_superadmin may arrive as a bool or alongside role at the top level
	// or inside app_metadata.
	if b, ok := claims["is_superadmin"].(bool); ok {
		id.Superadmin = b
	}
	if meta, ok := claims["app_metadata"].(map[string]any); ok {
		if role, ok := meta["role"].(string); ok && role != "" {
			id.Role = role
		}
		if b, ok := meta["is_superadmin"].(bool); ok && b {
			id.Superadmin = true
		}
	}

	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		id.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}
	return id, nil
}
