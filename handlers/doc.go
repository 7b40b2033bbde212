// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the elovote API.

# Handler Types

Each handler is a struct over the database and the stores built on it:

  - PollHandler: poll creation, options, previews and the poll leaderboard
  - VotingHandler: voter sessions, match submission and completion

Handlers are created via constructor functions that accept *sql.DB:

	pollHandler := handlers.NewPollHandler(db)

Me and Verify are plain functions since they only read the caller identity.

# Identity

Apart from the public poll reads (list, get, preview), every route sits
behind middleware.RequireIdentity, so handlers read the caller with
auth.IdentityFrom. Ownership is checked with
auth.Allowed:

	POST /polls/{id}/options         creator or admin
	GET  /polls/{id}/leaderboard     creator, admin, or anyone who voted
	GET  /votes/sessions/{id}/...    session owner or admin
	POST /votes/matches              session owner only
	POST /votes/sessions/{id}/complete  session owner only

# Voting Flow

	POST /votes/sessions                → StartSession
	POST /votes/matches                 → SubmitMatch (one per pair)
	POST /votes/sessions/{id}/complete  → CompleteSession

A session needs n(n-1)/2 matches before it can complete. Completion replays
the matches with elo.Finalize, stores the mean-centered vector, and adds it
to the poll totals in one transaction.

# Errors

Store and elo errors are mapped to status codes in one place (errors.go):
incomplete sessions are 400, inconsistent data 422, a failed merge 503, and
a second completion 409.
*/
package handlers
