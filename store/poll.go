// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/danielhkuo/elovote/models"
	"github.com/google/uuid"
)

// PollStore guards changes to a poll's option set.
type PollStore struct {
	db *sql.DB
}

func NewPollStore(db *sql.DB) *PollStore {
	return &PollStore{db: db}
}

// AddOption appends an option at the next position. Options are frozen
// once any session exists on the poll; the check and the insert run under
// the poll lock that SessionStore.Start also takes.
func (s *PollStore) AddOption(ctx context.Context, pollID, label string) (models.Option, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Option{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockPoll(ctx, tx, pollID); err != nil {
		return models.Option{}, err
	}

	var sessions int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM voter_session WHERE poll_id = $1
	`, pollID).Scan(&sessions)
	if err != nil {
		return models.Option{}, fmt.Errorf("count sessions: %w", err)
	}
	if sessions > 0 {
		return models.Option{}, ErrOptionsFrozen
	}

	opt := models.Option{ID: uuid.NewString(), PollID: pollID, Label: label}
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(position), 0) + 1 FROM option WHERE poll_id = $1
	`, pollID).Scan(&opt.Position)
	if err != nil {
		return models.Option{}, fmt.Errorf("next position: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO option (id, poll_id, label, position, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, opt.ID, opt.PollID, opt.Label, opt.Position, time.Now().UTC())
	if err != nil {
		return models.Option{}, fmt.Errorf("insert option: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Option{}, fmt.Errorf("commit option: %w", err)
	}
	return opt, nil
}

// lockPoll takes the poll row lock for the rest of tx with a no-op update.
func lockPoll(ctx context.Context, tx *sql.Tx, pollID string) error {
	res, err := tx.ExecContext(ctx, `UPDATE poll SET id = id WHERE id = $1`, pollID)
	if err != nil {
		return fmt.Errorf("lock poll: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("lock poll: %w", err)
	}
	if n == 0 {
		return ErrPollNotFound
	}
	return nil
}
