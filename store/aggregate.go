// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// AggregateStore holds the cumulative score per (poll, option). The only
// write is an additive merge, so totals do not depend on the order in which
// sessions complete.
type AggregateStore struct {
	db *sql.DB
}

func NewAggregateStore(db *sql.DB) *AggregateStore {
	return &AggregateStore{db: db}
}

// Merge adds delta to the total for (pollID, optionID), creating the row
// with value delta if it does not exist.
func (s *AggregateStore) Merge(ctx context.Context, pollID, optionID string, delta float64) error {
	return merge(ctx, s.db, pollID, optionID, delta, time.Now().UTC())
}

// Totals returns the cumulative score of every option in pollID that has
// received at least one merge.
func (s *AggregateStore) Totals(ctx context.Context, pollID string) (map[string]float64, error) {
	return totals(ctx, s.db, pollID)
}

// merge is a single upsert statement. Concurrent merges on the same key are
// serialized by the row lock taken on conflict, so no delta is lost.
func merge(ctx context.Context, ex execer, pollID, optionID string, delta float64, now time.Time) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO global_score (poll_id, option_id, total_score, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (poll_id, option_id)
		DO UPDATE SET total_score = global_score.total_score + excluded.total_score,
		              updated_at = excluded.updated_at
	`, pollID, optionID, delta, now)
	if err != nil {
		return &MergeError{PollID: pollID, OptionID: optionID, Err: err}
	}
	return nil
}

func totals(ctx context.Context, q Querier, pollID string) (map[string]float64, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT option_id, total_score
		FROM global_score
		WHERE poll_id = $1
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("query totals: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var optionID string
		var total float64
		if err := rows.Scan(&optionID, &total); err != nil {
			return nil, fmt.Errorf("scan total: %w", err)
		}
		out[optionID] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate totals: %w", err)
	}
	return out, nil
}
