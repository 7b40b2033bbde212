// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON. Each carries validate tags checked by
middleware.Validate before a handler touches the database:

  - CreatePollRequest: title, description, options (optional labels)
  - AddOptionRequest: label
  - StartSessionRequest: poll_id
  - SubmitMatchRequest: session_id, winner_option_id, loser_option_id, match_index

# Response Types

Types for JSON responses:

  - CreatePollResponse: poll, options
  - AddOptionResponse: option_id
  - CompleteSessionResponse: session_id, poll_id, status, completed_at, scores
  - LeaderboardResponse: poll_id, session_id, ranked, total, view_all, entries
  - PollPreviewResponse: option and vote counts with humanized labels
  - MeResponse, VerifyResponse: caller identity
  - ErrorResponse: error, message

# Domain Types

  - Poll: poll metadata and creator
  - Option: option label and position within its poll
  - VoterSession: one voter's pass over a poll, with progress counters
  - MatchResult: one recorded pairwise outcome

# Constants

Session status values:

	SessionActive   = "active"
	SessionComplete = "complete"

Role claim values:

	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
*/
package models
