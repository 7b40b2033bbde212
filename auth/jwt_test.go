// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret"

func signHS256(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func signRS256(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if kid != "" {
		tok.Header["kid"] = kid
	}
	token, err := tok.SignedString(key)
	require.NoError(t, err)
	return token
}

// jwksServer publishes keys and counts how often it is fetched.
type jwksServer struct {
	*httptest.Server
	hits atomic.Int32

	mu   sync.Mutex
	keys map[string]*rsa.PublicKey
}

func newJWKSServer(t *testing.T, keys map[string]*rsa.PublicKey) *jwksServer {
	t.Helper()
	js := &jwksServer{keys: keys}
	js.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		js.hits.Add(1)
		js.mu.Lock()
		defer js.mu.Unlock()

		set := map[string][]map[string]string{"keys": {}}
		for kid, pub := range js.keys {
			set["keys"] = append(set["keys"], map[string]string{
				"kid": kid,
				"kty": "RSA",
				"use": "sig",
				"alg": "RS256",
				"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(set)
	}))
	t.Cleanup(js.Close)
	return js
}

func (js *jwksServer) publish(kid string, pub *rsa.PublicKey) {
	js.mu.Lock()
	js.keys[kid] = pub
	js.mu.Unlock()
}

func newTestKeyCache(t *testing.T, srv *jwksServer) *KeyCache {
	t.Helper()
	cache, err := NewKeyCache(t.Context(), srv.URL, srv.Client())
	require.NoError(t, err)
	return cache
}

func TestJWTVerifier_HS256(t *testing.T) {
	v, err := NewJWTVerifier(testSecret, nil)
	require.NoError(t, err)

	token := signHS256(t, testSecret, jwt.MapClaims{
		"sub":            "user1",
		"email":          "user1@example.com",
		"role":           "user",
		"email_verified": true,
		"exp":            time.Now().Add(time.Hour).Unix(),
		"iat":            time.Now().Unix(),
	})

	id, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user1", id.Subject)
	assert.Equal(t, "user1@example.com", id.Email)
	assert.Equal(t, "user", id.Role)
	assert.True(t, id.EmailVerified)
	assert.False(t, id.IsAdmin())
	assert.False(t, id.ExpiresAt.IsZero())
}

func TestJWTVerifier_Rejections(t *testing.T) {
	v, err := NewJWTVerifier(testSecret, nil)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{
			name:    "wrong secret",
			token:   signHS256(t, "other-secret", jwt.MapClaims{"sub": "u"}),
			wantErr: ErrInvalidToken,
		},
		{
			name:    "expired",
			token:   signHS256(t, testSecret, jwt.MapClaims{"sub": "u", "exp": time.Now().Add(-time.Hour).Unix()}),
			wantErr: ErrTokenExpired,
		},
		{
			name:    "missing subject",
			token:   signHS256(t, testSecret, jwt.MapClaims{"email": "u@example.com"}),
			wantErr: ErrMissingSubject,
		},
		{
			name:    "garbage",
			token:   "not.a.jwt",
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tt.token)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}

func TestJWTVerifier_RS256RejectedWithoutKeys(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	v, err := NewJWTVerifier(testSecret, nil)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), signRS256(t, key, "k1", jwt.MapClaims{"sub": "u"}))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTVerifier_RS256ViaJWKS(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	srv := newJWKSServer(t, map[string]*rsa.PublicKey{"k1": &key.PublicKey})

	v, err := NewJWTVerifier("", newTestKeyCache(t, srv))
	require.NoError(t, err)

	token := signRS256(t, key, "k1", jwt.MapClaims{
		"sub":          "admin1",
		"email":        "admin@example.com",
		"role":         "authenticated",
		"app_metadata": map[string]any{"role": "superadmin"},
	})

	id, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "admin1", id.Subject)
	assert.Equal(t, "superadmin", id.Role)
	assert.True(t, id.IsAdmin())

	// HS256 is disabled when no secret is configured.
	_, err = v.Verify(context.Background(), signHS256(t, testSecret, jwt.MapClaims{"sub": "u"}))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTVerifier_RS256WrongKey(t *testing.T) {
	published, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	forged, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	srv := newJWKSServer(t, map[string]*rsa.PublicKey{"k1": &published.PublicKey})

	v, err := NewJWTVerifier("", newTestKeyCache(t, srv))
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), signRS256(t, forged, "k1", jwt.MapClaims{"sub": "u"}))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTVerifier_NeedsKeySource(t *testing.T) {
	_, err := NewJWTVerifier("", nil)
	assert.Error(t, err)
}

func TestKeyCache_FetchesOnceAndCaches(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	srv := newJWKSServer(t, map[string]*rsa.PublicKey{"k1": &key.PublicKey})

	v, err := NewJWTVerifier("", newTestKeyCache(t, srv))
	require.NoError(t, err)
	assert.Equal(t, int32(1), srv.hits.Load(), "key set is fetched when the cache is built")

	token := signRS256(t, key, "k1", jwt.MapClaims{"sub": "u"})
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := v.Verify(context.Background(), token)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), srv.hits.Load())
}

func TestKeyCache_RefreshesOnUnknownKid(t *testing.T) {
	key1, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	key2, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	key3, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	srv := newJWKSServer(t, map[string]*rsa.PublicKey{"k1": &key1.PublicKey})
	v, err := NewJWTVerifier("", newTestKeyCache(t, srv))
	require.NoError(t, err)
	ctx := context.Background()

	// A rotated key is picked up with one refetch.
	srv.publish("k2", &key2.PublicKey)
	id, err := v.Verify(ctx, signRS256(t, key2, "k2", jwt.MapClaims{"sub": "rotated"}))
	require.NoError(t, err)
	assert.Equal(t, "rotated", id.Subject)
	assert.Equal(t, int32(2), srv.hits.Load())

	// A second unknown kid inside the refresh window is rejected without a fetch.
	srv.publish("k3", &key3.PublicKey)
	_, err = v.Verify(ctx, signRS256(t, key3, "k3", jwt.MapClaims{"sub": "u"}))
	assert.ErrorIs(t, err, ErrUnknownKey)
	assert.Equal(t, int32(2), srv.hits.Load())
}

func TestKeyCache_EmptyKid(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	single := newJWKSServer(t, map[string]*rsa.PublicKey{"only": &key.PublicKey})
	v, err := NewJWTVerifier("", newTestKeyCache(t, single))
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), signRS256(t, key, "", jwt.MapClaims{"sub": "u"}))
	assert.NoError(t, err)

	multi := newJWKSServer(t, map[string]*rsa.PublicKey{"a": &key.PublicKey, "b": &other.PublicKey})
	v, err = NewJWTVerifier("", newTestKeyCache(t, multi))
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), signRS256(t, key, "", jwt.MapClaims{"sub": "u"}))
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestKeyCache_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewKeyCache(t.Context(), srv.URL, srv.Client())
	assert.Error(t, err)
}
