// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the elovote API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, verifier)

# Endpoints

Service:

	GET /health  - Liveness
	GET /metrics - Prometheus exposition

Polls:

	POST /polls                   - Create poll (token)
	GET  /polls                   - List polls
	GET  /polls/{id}              - Poll and options
	POST /polls/{id}/options      - Add option (creator or admin)
	GET  /polls/{id}/preview      - Compact preview data
	GET  /polls/{id}/leaderboard  - Global leaderboard (creator, admin, or voter)

Voting (session owner, admins may read):

	POST /votes/sessions                    - Start session
	GET  /votes/sessions/{id}               - Session progress
	POST /votes/matches                     - Submit one pairwise outcome
	GET  /votes/sessions/{id}/results       - Outcomes in replay order
	POST /votes/sessions/{id}/complete      - Finalize and merge
	GET  /votes/sessions/{id}/leaderboard   - Session leaderboard

Tokens:

	GET /auth/me     - Caller identity
	GET /auth/verify - Token check

# Middleware

Every route is wrapped in middleware.WithLogging. Routes that need a caller
add middleware.RequireIdentity, and writes are rate limited per token
subject with middleware.RateLimit.
*/
package router
