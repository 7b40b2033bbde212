// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth verifies access tokens and decides who may do what.

# Access Tokens

Callers authenticate with "Authorization: Bearer <jwt>". JWTVerifier
accepts two kinds of token:

  - HS256, signed with the shared secret from configuration
  - RS256, signed by a key published at the JWKS URL

	keys, err := auth.NewKeyCache(ctx, cfg.JWKSURL, nil)
	verifier, err := auth.NewJWTVerifier(cfg.JWTSecret, keys)
	id, err := verifier.Verify(ctx, token)

The sub claim is required. email, role, email_verified and is_superadmin
are read when present; app_metadata.role overrides a top-level role.

# Key Cache

KeyCache wraps a keyfunc.Keyfunc over a jwkset HTTP client. The JWKS
document is fetched when the cache is built, hourly after that, and again
when a token names a kid it has not seen, no more than once a minute.
Concurrent lookups of the same new kid share one refetch.

# Capabilities

Allowed checks a Capability against the caller's Identity and Relation to
the resource:

	ManagePoll             creator or admin
	ViewPollLeaderboard    creator, anyone who completed a session, or admin
	ViewSession            session owner or admin
	ViewSessionLeaderboard session owner or admin
	VoteInSession          session owner only

# ID Generation

Database records use random UUIDs:

	id := auth.NewID()
*/
package auth
