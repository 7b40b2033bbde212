// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens database handles and creates the schema.

# Drivers

Two backends are supported and selected with the database type flag:

  - postgres: github.com/lib/pq, for deployments
  - sqlite: modernc.org/sqlite (pure Go), for local runs and tests

	conn, err := db.Open(db.TypeSQLite, "file:elovote.db")

All queries in the service use $N placeholders, which both drivers accept.
SQLite handles are capped at one open connection and have foreign keys
enabled.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - poll: Poll metadata and creator
  - option: Options per poll, in insertion order (position)
  - voter_session: One voter's pass over a poll, active or complete
  - match_result: Pairwise outcomes, ordered per session by seq
  - session_score: Normalized contribution of each completed session
  - global_score: Cumulative score per (poll, option)

# Relationships

	poll 1──* option
	poll 1──* voter_session
	voter_session 1──* match_result
	voter_session 1──* session_score
	poll 1──* global_score

All foreign keys use ON DELETE CASCADE.

# Constraints

match_result enforces one row per seq and one row per unordered pair
(pair_low, pair_high) within a session. IsUniqueViolation recognizes the
resulting errors from either driver.
*/
package db
