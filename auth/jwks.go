// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	neturl "net/url"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	jwksRefreshInterval = time.Hour
	jwksUnknownKidEvery = time.Minute
	jwksRefreshWaitMax  = time.Second
)

// KeyCache holds the signing keys published at a JWKS URL. The set is
// fetched when the cache is built, refreshed hourly, and refetched when a
// token names an unknown kid, at most once per minute.
type KeyCache struct {
	url   string
	jwks  keyfunc.Keyfunc
	group singleflight.Group
}

// NewKeyCache fetches the key set at url. Background refreshes stop when
// ctx is done.
func NewKeyCache(ctx context.Context, url string, client *http.Client) (*KeyCache, error) {
	return newKeyCache(ctx, url, client, jwksUnknownKidEvery)
}

func newKeyCache(ctx context.Context, url string, client *http.Client, unknownKidEvery time.Duration) (*KeyCache, error) {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	u, err := neturl.Parse(url)
	if err != nil {
		return nil, fmt.Errorf("parse jwks url: %w", err)
	}

	storage, err := jwkset.NewStorageFromHTTP(u, jwkset.HTTPClientStorageOptions{
		Client:          client,
		Ctx:             ctx,
		HTTPTimeout:     10 * time.Second,
		RefreshInterval: jwksRefreshInterval,
		RefreshErrorHandler: func(ctx context.Context, err error) {
			slog.Warn("jwks refresh failed", "url", url, "error", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}

	remote, err := jwkset.NewHTTPClient(jwkset.HTTPClientOptions{
		HTTPURLs:          map[string]jwkset.Storage{url: storage},
		RateLimitWaitMax:  jwksRefreshWaitMax,
		RefreshUnknownKID: rate.NewLimiter(rate.Every(unknownKidEvery), 1),
	})
	if err != nil {
		return nil, fmt.Errorf("jwks client: %w", err)
	}

	kf, err := keyfunc.New(keyfunc.Options{Ctx: ctx, Storage: remote})
	if err != nil {
		return nil, fmt.Errorf("jwks keyfunc: %w", err)
	}

	slog.Info("jwks loaded", "url", url)
	return &KeyCache{url: url, jwks: kf}, nil
}

// Keyfunc resolves the verification key named by a token's kid header.
// A token without a kid is accepted when exactly one key is published.
//
// Concurrent lookups of the same kid share one resolution, so a burst of
// tokens signed with a new key triggers a single refetch.
func (c *KeyCache) Keyfunc(ctx context.Context) jwt.Keyfunc {
	return func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return c.soleKey(ctx)
		}

		key, err, _ := c.group.Do(kid, func() (any, error) {
			return c.jwks.Keyfunc(t)
		})
		if err != nil {
			return nil, fmt.Errorf("%w: kid %q: %w", ErrUnknownKey, kid, err)
		}
		return key, nil
	}
}

func (c *KeyCache) soleKey(ctx context.Context) (any, error) {
	keys, err := c.jwks.Storage().KeyReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read jwks: %w", err)
	}
	if len(keys) != 1 {
		return nil, fmt.Errorf("%w: token has no kid and %d keys are published", ErrUnknownKey, len(keys))
	}
	return keys[0].Key(), nil
}
