// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The schema sticks to the subset of SQL shared by Postgres and SQLite.
const schema = `
-- Polls
CREATE TABLE IF NOT EXISTS poll (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    creator_email TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_poll_creator_email ON poll(creator_email);

-- Options
CREATE TABLE IF NOT EXISTS option (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    label TEXT NOT NULL,
    position INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (poll_id, position)
);

CREATE INDEX IF NOT EXISTS idx_option_poll_id ON option(poll_id);

-- Voter Sessions
CREATE TABLE IF NOT EXISTS voter_session (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    voter_email TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'complete')),
    started_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    completed_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_voter_session_poll_id ON voter_session(poll_id);
CREATE INDEX IF NOT EXISTS idx_voter_session_voter ON voter_session(poll_id, voter_email);

-- Match Results
CREATE TABLE IF NOT EXISTS match_result (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES voter_session(id) ON DELETE CASCADE,
    seq INTEGER NOT NULL,
    winner_option_id TEXT NOT NULL REFERENCES option(id) ON DELETE CASCADE,
    loser_option_id TEXT NOT NULL REFERENCES option(id) ON DELETE CASCADE,
    pair_low TEXT NOT NULL,
    pair_high TEXT NOT NULL,
    match_index INTEGER NOT NULL,
    submitted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (winner_option_id <> loser_option_id),
    UNIQUE (session_id, seq),
    UNIQUE (session_id, pair_low, pair_high)
);

CREATE INDEX IF NOT EXISTS idx_match_result_session_id ON match_result(session_id);

-- Session Scores (normalized contribution of one completed session)
CREATE TABLE IF NOT EXISTS session_score (
    session_id TEXT NOT NULL REFERENCES voter_session(id) ON DELETE CASCADE,
    option_id TEXT NOT NULL REFERENCES option(id) ON DELETE CASCADE,
    score DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (session_id, option_id)
);

-- Global Scores (sum of session scores per option)
CREATE TABLE IF NOT EXISTS global_score (
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    option_id TEXT NOT NULL REFERENCES option(id) ON DELETE CASCADE,
    total_score DOUBLE PRECISION NOT NULL DEFAULT 0,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (poll_id, option_id)
);
`
