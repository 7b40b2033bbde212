// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the elovote API server.

elovote ranks poll options from pairwise votes. Each voter compares every
pair of options once, the session's outcomes are replayed through an Elo
model with a decaying K-factor, and the mean-centered result is added to
the poll's running totals.

# Starting the Server

The server reads flags, then environment variables (a local .env is loaded
if present), then an optional YAML file:

	JWT_SECRET=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -jwks-url https://.../jwks.json

# Configuration

At least one token source is required:

  - JWT_SECRET (-jwt-secret): HS256 shared secret
  - JWKS_URL (-jwks-url): RS256 key set

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): connection string
  - RATE_LIMIT, RATE_BURST (-rate, -burst): write limit per client
  - CONFIG_FILE (-c): YAML file with the same keys

# Architecture

  - elo: replay, normalization and completeness rules
  - leaderboard: ranking and pagination
  - store: sessions, outcomes and the global score aggregate
  - handlers: HTTP request handlers (polls, voting, tokens)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, identity, rate limits, validation
  - models: Request/response types
  - auth: Token verification and capabilities
  - metrics: Prometheus collectors
  - db: Connection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
