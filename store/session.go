// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/danielhkuo/elovote/db"
	"github.com/danielhkuo/elovote/elo"
	"github.com/danielhkuo/elovote/metrics"
	"github.com/danielhkuo/elovote/models"
	"github.com/google/uuid"
)

// Session is one voter's pass over a poll.
type Session struct {
	ID          string
	PollID      string
	VoterEmail  string
	Status      string
	StartedAt   time.Time
	CompletedAt *time.Time
	MatchesDone int
	OptionCount int
}

// Match is a recorded outcome. Seq is its 1-based position in the
// session's submission order.
type Match struct {
	ID             string
	SessionID      string
	Seq            int
	WinnerOptionID string
	LoserOptionID  string
	MatchIndex     int
	SubmittedAt    time.Time
}

// Delta is one option's share of a completed session.
type Delta struct {
	OptionID string
	Value    float64
}

// Completion describes a session that was finalized and merged.
type Completion struct {
	SessionID   string
	PollID      string
	CompletedAt time.Time
	Deltas      []Delta
}

// Scores returns the deltas keyed by option ID.
func (c Completion) Scores() map[string]float64 {
	out := make(map[string]float64, len(c.Deltas))
	for _, d := range c.Deltas {
		out[d.OptionID] = d.Value
	}
	return out
}

// Finalizer turns a session's options and ordered outcomes into one
// normalized score per option, in option order. elo.Finalize is the
// production implementation.
type Finalizer func(options []elo.Option, outcomes []elo.Outcome) ([]float64, error)

// SessionStore owns the voter session lifecycle. Completion and the
// resulting merge into global scores happen in one transaction.
type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Start opens a new active session for voterEmail on pollID. It holds the
// poll lock while counting options, so no option can be added between the
// count and the insert.
func (s *SessionStore) Start(ctx context.Context, pollID, voterEmail string) (Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Session{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockPoll(ctx, tx, pollID); err != nil {
		return Session{}, err
	}

	var optionCount int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM option WHERE poll_id = $1
	`, pollID).Scan(&optionCount)
	if err != nil {
		return Session{}, fmt.Errorf("count options: %w", err)
	}
	if optionCount < 2 {
		return Session{}, ErrTooFewOptions
	}

	sess := Session{
		ID:          uuid.NewString(),
		PollID:      pollID,
		VoterEmail:  voterEmail,
		Status:      models.SessionActive,
		StartedAt:   time.Now().UTC(),
		OptionCount: optionCount,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO voter_session (id, poll_id, voter_email, status, started_at)
		VALUES ($1, $2, $3, $4, $5)
	`, sess.ID, sess.PollID, sess.VoterEmail, sess.Status, sess.StartedAt)
	if err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Session{}, fmt.Errorf("commit session: %w", err)
	}

	metrics.SessionsStarted.Inc()
	return sess, nil
}

// Get returns the session with its progress counters.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (Session, error) {
	var sess Session
	var completedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT s.id, s.poll_id, s.voter_email, s.status, s.started_at, s.completed_at,
		       (SELECT COUNT(*) FROM match_result m WHERE m.session_id = s.id),
		       (SELECT COUNT(*) FROM option o WHERE o.poll_id = s.poll_id)
		FROM voter_session s
		WHERE s.id = $1
	`, sessionID).Scan(
		&sess.ID, &sess.PollID, &sess.VoterEmail, &sess.Status, &sess.StartedAt,
		&completedAt, &sess.MatchesDone, &sess.OptionCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("query session: %w", err)
	}
	if completedAt.Valid {
		t := completedAt.Time
		sess.CompletedAt = &t
	}
	return sess, nil
}

// RecordOutcome appends one outcome to an active session. The session row
// is locked for the rest of the transaction, so outcomes cannot slip in
// while the session is being completed.
func (s *SessionStore) RecordOutcome(ctx context.Context, sessionID, winnerID, loserID string, matchIndex int) (Match, error) {
	if winnerID == loserID {
		return Match{}, ErrSameOption
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Match{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockActive(ctx, tx, sessionID); err != nil {
		return Match{}, err
	}

	var pollID string
	if err := tx.QueryRowContext(ctx, `SELECT poll_id FROM voter_session WHERE id = $1`, sessionID).Scan(&pollID); err != nil {
		return Match{}, fmt.Errorf("query session poll: %w", err)
	}

	var owned int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM option WHERE poll_id = $1 AND id IN ($2, $3)
	`, pollID, winnerID, loserID).Scan(&owned)
	if err != nil {
		return Match{}, fmt.Errorf("query options: %w", err)
	}
	if owned != 2 {
		return Match{}, ErrOptionNotInPoll
	}

	var seq int
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) + 1 FROM match_result WHERE session_id = $1
	`, sessionID).Scan(&seq)
	if err != nil {
		return Match{}, fmt.Errorf("next seq: %w", err)
	}

	low, high := winnerID, loserID
	if high < low {
		low, high = high, low
	}

	m := Match{
		ID:             uuid.NewString(),
		SessionID:      sessionID,
		Seq:            seq,
		WinnerOptionID: winnerID,
		LoserOptionID:  loserID,
		MatchIndex:     matchIndex,
		SubmittedAt:    time.Now().UTC(),
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO match_result (id, session_id, seq, winner_option_id, loser_option_id,
		                          pair_low, pair_high, match_index, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, m.ID, m.SessionID, m.Seq, m.WinnerOptionID, m.LoserOptionID, low, high, m.MatchIndex, m.SubmittedAt)
	if db.IsUniqueViolation(err) {
		return Match{}, ErrDuplicatePair
	}
	if err != nil {
		return Match{}, fmt.Errorf("insert outcome: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Match{}, fmt.Errorf("commit outcome: %w", err)
	}

	metrics.OutcomesSubmitted.Inc()
	return m, nil
}

// lockActive takes the session row lock with a no-op update that only
// matches active sessions.
func lockActive(ctx context.Context, tx *sql.Tx, sessionID string) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE voter_session SET status = status WHERE id = $1 AND status = $2
	`, sessionID, models.SessionActive)
	if err != nil {
		return fmt.Errorf("lock session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("lock session: %w", err)
	}
	if n == 0 {
		return inactiveReason(ctx, tx, sessionID)
	}
	return nil
}

// inactiveReason tells a missing session apart from a completed one.
func inactiveReason(ctx context.Context, q Querier, sessionID string) error {
	var status string
	err := q.QueryRowContext(ctx, `SELECT status FROM voter_session WHERE id = $1`, sessionID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("query session status: %w", err)
	}
	return ErrAlreadyComplete
}

// Matches returns the recorded outcomes of sessionID in submission order.
func (s *SessionStore) Matches(ctx context.Context, sessionID string) ([]Match, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, seq, winner_option_id, loser_option_id, match_index, submitted_at
		FROM match_result
		WHERE session_id = $1
		ORDER BY seq
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	matches := []Match{}
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Seq, &m.WinnerOptionID, &m.LoserOptionID, &m.MatchIndex, &m.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return matches, nil
}

// Complete finalizes an active session and merges its scores into the
// poll's global totals.
//
// The Active to Complete flip is a conditional update, so of two concurrent
// calls for the same session exactly one proceeds and the other gets
// ErrAlreadyComplete. Outcomes are read after the flip under the same
// transaction. If finalize or any merge fails the transaction rolls back,
// leaving the session active and totals untouched.
func (s *SessionStore) Complete(ctx context.Context, sessionID string, finalize Finalizer) (Completion, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Completion{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		UPDATE voter_session
		SET status = $1, completed_at = $2
		WHERE id = $3 AND status = $4
	`, models.SessionComplete, now, sessionID, models.SessionActive)
	if err != nil {
		return Completion{}, fmt.Errorf("mark session complete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Completion{}, fmt.Errorf("mark session complete: %w", err)
	}
	if n == 0 {
		return Completion{}, inactiveReason(ctx, tx, sessionID)
	}

	var pollID string
	if err := tx.QueryRowContext(ctx, `SELECT poll_id FROM voter_session WHERE id = $1`, sessionID).Scan(&pollID); err != nil {
		return Completion{}, fmt.Errorf("query session poll: %w", err)
	}

	options, err := ListOptions(ctx, tx, pollID)
	if err != nil {
		return Completion{}, err
	}
	outcomes, err := ListOutcomes(ctx, tx, sessionID)
	if err != nil {
		return Completion{}, err
	}

	vector, err := finalize(options, outcomes)
	if err != nil {
		return Completion{}, err
	}
	if len(vector) != len(options) {
		return Completion{}, fmt.Errorf("finalize returned %d scores for %d options", len(vector), len(options))
	}

	deltas := make([]Delta, len(options))
	for i, opt := range options {
		deltas[i] = Delta{OptionID: opt.ID, Value: vector[i]}
	}
	// Fixed key order keeps concurrent completions from deadlocking on
	// global_score row locks.
	sort.Slice(deltas, func(i, j int) bool {
		return deltas[i].OptionID < deltas[j].OptionID
	})

	start := time.Now()
	for _, d := range deltas {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO session_score (session_id, option_id, score)
			VALUES ($1, $2, $3)
		`, sessionID, d.OptionID, d.Value)
		if err != nil {
			return Completion{}, fmt.Errorf("insert session score: %w", err)
		}
		if err := merge(ctx, tx, pollID, d.OptionID, d.Value, now); err != nil {
			return Completion{}, err
		}
	}
	metrics.ObserveMerge(start)

	if err := tx.Commit(); err != nil {
		return Completion{}, &MergeError{PollID: pollID, Err: fmt.Errorf("commit: %w", err)}
	}

	return Completion{
		SessionID:   sessionID,
		PollID:      pollID,
		CompletedAt: now,
		Deltas:      deltas,
	}, nil
}

// Scores returns the stored contribution of a completed session, keyed by
// option ID. It is empty for sessions that have not completed.
func (s *SessionStore) Scores(ctx context.Context, sessionID string) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT option_id, score FROM session_score WHERE session_id = $1
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query session scores: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var optionID string
		var score float64
		if err := rows.Scan(&optionID, &score); err != nil {
			return nil, fmt.Errorf("scan session score: %w", err)
		}
		out[optionID] = score
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session scores: %w", err)
	}
	return out, nil
}

// HasCompleted reports whether voterEmail has completed any session on
// pollID.
func (s *SessionStore) HasCompleted(ctx context.Context, pollID, voterEmail string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM voter_session
		WHERE poll_id = $1 AND LOWER(voter_email) = LOWER($2) AND status = $3
	`, pollID, voterEmail, models.SessionComplete).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query completed sessions: %w", err)
	}
	return n > 0, nil
}
