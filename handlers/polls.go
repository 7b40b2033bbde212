// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/danielhkuo/elovote/auth"
	"github.com/danielhkuo/elovote/elo"
	"github.com/danielhkuo/elovote/leaderboard"
	"github.com/danielhkuo/elovote/metrics"
	"github.com/danielhkuo/elovote/middleware"
	"github.com/danielhkuo/elovote/models"
	"github.com/danielhkuo/elovote/store"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
)

type PollHandler struct {
	db       *sql.DB
	polls    *store.PollStore
	sessions *store.SessionStore
	agg      *store.AggregateStore
}

func NewPollHandler(db *sql.DB) *PollHandler {
	return &PollHandler{
		db:       db,
		polls:    store.NewPollStore(db),
		sessions: store.NewSessionStore(db),
		agg:      store.NewAggregateStore(db),
	}
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	if id.Email == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Token has no email claim")
		return
	}

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := middleware.Validate(req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	poll := models.Poll{
		ID:           auth.NewID(),
		Title:        req.Title,
		Description:  req.Description,
		CreatorEmail: id.Email,
		CreatedAt:    now,
	}

	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		writeError(w, err, "begin create poll")
		return
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(r.Context(), `
		INSERT INTO poll (id, title, description, creator_email, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, poll.ID, poll.Title, poll.Description, poll.CreatorEmail, poll.CreatedAt)
	if err != nil {
		writeError(w, err, "insert poll")
		return
	}

	options := make([]models.Option, 0, len(req.Options))
	for i, label := range req.Options {
		opt := models.Option{ID: auth.NewID(), PollID: poll.ID, Label: label, Position: i + 1}
		_, err := tx.ExecContext(r.Context(), `
			INSERT INTO option (id, poll_id, label, position, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, opt.ID, opt.PollID, opt.Label, opt.Position, now)
		if err != nil {
			writeError(w, err, "insert option", "poll_id", poll.ID)
			return
		}
		options = append(options, opt)
	}

	if err := tx.Commit(); err != nil {
		writeError(w, err, "commit create poll")
		return
	}

	slog.Info("poll created", "poll_id", poll.ID, "creator", poll.CreatorEmail, "options", len(options))

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{
		Poll:    poll,
		Options: options,
	})
}

// ListPolls handles GET /polls
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.QueryContext(r.Context(), `
		SELECT id, title, COALESCE(description, ''), creator_email, created_at
		FROM poll
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		writeError(w, err, "query polls")
		return
	}
	defer rows.Close()

	polls := []models.Poll{}
	for rows.Next() {
		var p models.Poll
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.CreatorEmail, &p.CreatedAt); err != nil {
			writeError(w, err, "scan poll")
			return
		}
		polls = append(polls, p)
	}
	if err := rows.Err(); err != nil {
		writeError(w, err, "iterate polls")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, polls)
}

// GetPoll handles GET /polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID, ok := pathID(w, r, "poll")
	if !ok {
		return
	}

	poll, err := h.loadPoll(r, pollID)
	if err != nil {
		writeError(w, err, "query poll", "poll_id", pollID)
		return
	}

	rows, err := h.db.QueryContext(r.Context(), `
		SELECT id, poll_id, label, position
		FROM option
		WHERE poll_id = $1
		ORDER BY position
	`, pollID)
	if err != nil {
		writeError(w, err, "query options", "poll_id", pollID)
		return
	}
	defer rows.Close()

	options := []models.Option{}
	for rows.Next() {
		var opt models.Option
		if err := rows.Scan(&opt.ID, &opt.PollID, &opt.Label, &opt.Position); err != nil {
			writeError(w, err, "scan option", "poll_id", pollID)
			return
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		writeError(w, err, "iterate options", "poll_id", pollID)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollWithOptions{
		Poll:    poll,
		Options: options,
	})
}

// AddOption handles POST /polls/{id}/options
// Options are frozen once any voter session exists.
func (h *PollHandler) AddOption(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	pollID, ok := pathID(w, r, "poll")
	if !ok {
		return
	}

	var req models.AddOptionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := middleware.Validate(req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	poll, err := h.loadPoll(r, pollID)
	if err != nil {
		writeError(w, err, "query poll", "poll_id", pollID)
		return
	}
	if !auth.Allowed(id, auth.ManagePoll, auth.Relation{Creator: id.Owns(poll.CreatorEmail)}) {
		forbid(w, id, auth.ManagePoll, pollID)
		return
	}

	opt, err := h.polls.AddOption(r.Context(), pollID, req.Label)
	if err != nil {
		writeError(w, err, "add option", "poll_id", pollID)
		return
	}

	slog.Info("option added", "poll_id", pollID, "option_id", opt.ID, "position", opt.Position)

	middleware.JSONResponse(w, http.StatusCreated, models.AddOptionResponse{
		OptionID: opt.ID,
	})
}

// Preview handles GET /polls/{id}/preview
func (h *PollHandler) Preview(w http.ResponseWriter, r *http.Request) {
	pollID, ok := pathID(w, r, "poll")
	if !ok {
		return
	}

	var resp models.PollPreviewResponse
	err := h.db.QueryRowContext(r.Context(), `
		SELECT p.id, p.title, p.created_at,
		       (SELECT COUNT(*) FROM option o WHERE o.poll_id = p.id),
		       (SELECT COUNT(*) FROM voter_session s WHERE s.poll_id = p.id AND s.status = $2)
		FROM poll p
		WHERE p.id = $1
	`, pollID, models.SessionComplete).Scan(
		&resp.ID, &resp.Title, &resp.CreatedAt, &resp.OptionCount, &resp.CompletedVotes,
	)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		writeError(w, err, "query poll preview", "poll_id", pollID)
		return
	}

	resp.RoundsPerVoter = elo.RequiredOutcomes(resp.OptionCount)
	resp.CreatedAgo = humanize.Time(resp.CreatedAt)
	resp.CompletedLabel = fmt.Sprintf("%s completed %s", humanize.Comma(int64(resp.CompletedVotes)), plural(resp.CompletedVotes, "vote", "votes"))

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// PollLeaderboard handles GET /polls/{id}/leaderboard?view_all=
// Visible to the creator, admins, and anyone who completed a session.
func (h *PollHandler) PollLeaderboard(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	pollID, ok := pathID(w, r, "poll")
	if !ok {
		return
	}
	viewAll, err := parseViewAll(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "view_all must be a boolean")
		return
	}

	poll, err := h.loadPoll(r, pollID)
	if err != nil {
		writeError(w, err, "query poll", "poll_id", pollID)
		return
	}

	rel := auth.Relation{Creator: id.Owns(poll.CreatorEmail)}
	if !rel.Creator && !id.IsAdmin() {
		rel.HasVoted, err = h.sessions.HasCompleted(r.Context(), pollID, id.Email)
		if err != nil {
			writeError(w, err, "query voter sessions", "poll_id", pollID)
			return
		}
	}
	if !auth.Allowed(id, auth.ViewPollLeaderboard, rel) {
		forbid(w, id, auth.ViewPollLeaderboard, pollID)
		return
	}

	var options []elo.Option
	var totals map[string]float64
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		options, err = store.ListOptions(ctx, h.db, pollID)
		return err
	})
	g.Go(func() error {
		var err error
		totals, err = h.agg.Totals(ctx, pollID)
		return err
	})
	if err := g.Wait(); err != nil {
		writeError(w, err, "load poll leaderboard", "poll_id", pollID)
		return
	}

	entries := leaderboard.Build(options, totals, viewAll, nil)
	ranked := leaderboard.IsRanked(entries)
	metrics.RecordLeaderboard("poll", ranked)

	middleware.JSONResponse(w, http.StatusOK, models.LeaderboardResponse{
		PollID:  pollID,
		Ranked:  ranked,
		Total:   len(options),
		ViewAll: viewAll,
		Entries: entries,
	})
}

func (h *PollHandler) loadPoll(r *http.Request, pollID string) (models.Poll, error) {
	var p models.Poll
	err := h.db.QueryRowContext(r.Context(), `
		SELECT id, title, COALESCE(description, ''), creator_email, created_at
		FROM poll
		WHERE id = $1
	`, pollID).Scan(&p.ID, &p.Title, &p.Description, &p.CreatorEmail, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Poll{}, store.ErrPollNotFound
	}
	return p, err
}

func parseViewAll(r *http.Request) (bool, error) {
	v := r.URL.Query().Get("view_all")
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
