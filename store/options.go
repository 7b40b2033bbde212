// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"

	"github.com/danielhkuo/elovote/elo"
)

// ListOptions returns the options of pollID in insertion order.
func ListOptions(ctx context.Context, q Querier, pollID string) ([]elo.Option, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, label
		FROM option
		WHERE poll_id = $1
		ORDER BY position
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("query options: %w", err)
	}
	defer rows.Close()

	options := []elo.Option{}
	for rows.Next() {
		var opt elo.Option
		if err := rows.Scan(&opt.ID, &opt.Label); err != nil {
			return nil, fmt.Errorf("scan option: %w", err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate options: %w", err)
	}
	return options, nil
}

// ListOutcomes returns the outcomes of sessionID in submission order.
func ListOutcomes(ctx context.Context, q Querier, sessionID string) ([]elo.Outcome, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT winner_option_id, loser_option_id, match_index
		FROM match_result
		WHERE session_id = $1
		ORDER BY seq
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := []elo.Outcome{}
	for rows.Next() {
		o := elo.Outcome{SessionID: sessionID}
		if err := rows.Scan(&o.WinnerOptionID, &o.LoserOptionID, &o.MatchIndex); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return outcomes, nil
}
