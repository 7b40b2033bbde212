// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/elovote/auth"
	"github.com/danielhkuo/elovote/elo"
	"github.com/danielhkuo/elovote/leaderboard"
	"github.com/danielhkuo/elovote/metrics"
	"github.com/danielhkuo/elovote/middleware"
	"github.com/danielhkuo/elovote/models"
	"github.com/danielhkuo/elovote/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("github.com/danielhkuo/elovote/handlers")

type VotingHandler struct {
	db       *sql.DB
	sessions *store.SessionStore
}

func NewVotingHandler(db *sql.DB) *VotingHandler {
	return &VotingHandler{
		db:       db,
		sessions: store.NewSessionStore(db),
	}
}

// StartSession handles POST /votes/sessions
func (h *VotingHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	if id.Email == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Token has no email claim")
		return
	}

	var req models.StartSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := middleware.Validate(req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := h.sessions.Start(r.Context(), req.PollID, id.Email)
	if err != nil {
		writeError(w, err, "start session", "poll_id", req.PollID)
		return
	}

	slog.Info("session started", "session_id", sess.ID, "poll_id", sess.PollID, "voter", sess.VoterEmail)

	middleware.JSONResponse(w, http.StatusCreated, toVoterSession(sess))
}

// GetSession handles GET /votes/sessions/{id}
func (h *VotingHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	sess, ok := h.ownedSession(w, r, id, auth.ViewSession)
	if !ok {
		return
	}

	middleware.JSONResponse(w, http.StatusOK, toVoterSession(sess))
}

// SubmitMatch handles POST /votes/matches
func (h *VotingHandler) SubmitMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var req models.SubmitMatchRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := middleware.Validate(req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := h.sessions.Get(r.Context(), req.SessionID)
	if err != nil {
		writeError(w, err, "query session", "session_id", req.SessionID)
		return
	}
	rel := auth.Relation{SessionOwner: id.Owns(sess.VoterEmail)}
	if !auth.Allowed(id, auth.VoteInSession, rel) {
		forbid(w, id, auth.VoteInSession, sess.ID)
		return
	}

	match, err := h.sessions.RecordOutcome(r.Context(), sess.ID, req.WinnerOptionID, req.LoserOptionID, *req.MatchIndex)
	if err != nil {
		writeError(w, err, "record outcome", "session_id", sess.ID)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, toMatchResult(match))
}

// ListOutcomes handles GET /votes/sessions/{id}/results
func (h *VotingHandler) ListOutcomes(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	sess, ok := h.ownedSession(w, r, id, auth.ViewSession)
	if !ok {
		return
	}

	matches, err := h.sessions.Matches(r.Context(), sess.ID)
	if err != nil {
		writeError(w, err, "query matches", "session_id", sess.ID)
		return
	}

	out := make([]models.MatchResult, len(matches))
	for i, m := range matches {
		out[i] = toMatchResult(m)
	}
	middleware.JSONResponse(w, http.StatusOK, out)
}

// CompleteSession handles POST /votes/sessions/{id}/complete
//
// Replays the session's outcomes, stores the normalized vector as the
// session's contribution and adds it to the poll totals. The session stays
// active if any step fails.
func (h *VotingHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	sessionID, ok := pathID(w, r, "session")
	if !ok {
		return
	}
	ctx, span := tracer.Start(r.Context(), "CompleteSession",
		trace.WithAttributes(attribute.String("session.id", sessionID)),
		trace.WithSpanKind(trace.SpanKindServer),
	)
	defer span.End()

	sess, err := h.sessions.Get(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load session")
		metrics.CompletionFailures.WithLabelValues(failureReason(err)).Inc()
		writeError(w, err, "query session", "session_id", sessionID)
		return
	}
	span.SetAttributes(
		attribute.String("poll.id", sess.PollID),
		attribute.Int("session.matches", sess.MatchesDone),
		attribute.Int("poll.options", sess.OptionCount),
	)

	rel := auth.Relation{SessionOwner: id.Owns(sess.VoterEmail)}
	if !auth.Allowed(id, auth.VoteInSession, rel) {
		forbid(w, id, auth.VoteInSession, sess.ID)
		return
	}

	done, err := h.sessions.Complete(ctx, sess.ID, elo.Finalize)
	if err != nil {
		reason := failureReason(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		metrics.CompletionFailures.WithLabelValues(reason).Inc()
		slog.Warn("session completion failed", "session_id", sess.ID, "poll_id", sess.PollID, "reason", reason, "error", err)
		writeError(w, err, "complete session", "session_id", sess.ID)
		return
	}

	metrics.SessionsCompleted.Inc()
	slog.Info("session completed", "session_id", done.SessionID, "poll_id", done.PollID, "options", len(done.Deltas))

	middleware.JSONResponse(w, http.StatusOK, models.CompleteSessionResponse{
		SessionID:   done.SessionID,
		PollID:      done.PollID,
		Status:      models.SessionComplete,
		CompletedAt: done.CompletedAt,
		Scores:      done.Scores(),
	})
}

// SessionLeaderboard handles GET /votes/sessions/{id}/leaderboard?view_all=
func (h *VotingHandler) SessionLeaderboard(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	viewAll, err := parseViewAll(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "view_all must be a boolean")
		return
	}

	sess, ok := h.ownedSession(w, r, id, auth.ViewSessionLeaderboard)
	if !ok {
		return
	}
	if sess.Status != models.SessionComplete {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Session is not complete")
		return
	}

	var options []elo.Option
	var scores map[string]float64
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		options, err = store.ListOptions(ctx, h.db, sess.PollID)
		return err
	})
	g.Go(func() error {
		var err error
		scores, err = h.sessions.Scores(ctx, sess.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		writeError(w, err, "load session leaderboard", "session_id", sess.ID)
		return
	}

	entries := leaderboard.Build(options, scores, viewAll, nil)
	ranked := leaderboard.IsRanked(entries)
	metrics.RecordLeaderboard("session", ranked)

	middleware.JSONResponse(w, http.StatusOK, models.LeaderboardResponse{
		PollID:    sess.PollID,
		SessionID: sess.ID,
		Ranked:    ranked,
		Total:     len(options),
		ViewAll:   viewAll,
		Entries:   entries,
	})
}

// ownedSession loads the session named in the path and checks c against it.
func (h *VotingHandler) ownedSession(w http.ResponseWriter, r *http.Request, id auth.Identity, c auth.Capability) (store.Session, bool) {
	sessionID, ok := pathID(w, r, "session")
	if !ok {
		return store.Session{}, false
	}

	sess, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		writeError(w, err, "query session", "session_id", sessionID)
		return store.Session{}, false
	}
	if !auth.Allowed(id, c, auth.Relation{SessionOwner: id.Owns(sess.VoterEmail)}) {
		forbid(w, id, c, sessionID)
		return store.Session{}, false
	}
	return sess, true
}

func toVoterSession(s store.Session) models.VoterSession {
	return models.VoterSession{
		ID:              s.ID,
		PollID:          s.PollID,
		VoterEmail:      s.VoterEmail,
		Status:          s.Status,
		StartedAt:       s.StartedAt,
		CompletedAt:     s.CompletedAt,
		MatchesDone:     s.MatchesDone,
		MatchesRequired: elo.RequiredOutcomes(s.OptionCount),
	}
}

func toMatchResult(m store.Match) models.MatchResult {
	return models.MatchResult{
		ID:             m.ID,
		SessionID:      m.SessionID,
		Seq:            m.Seq,
		WinnerOptionID: m.WinnerOptionID,
		LoserOptionID:  m.LoserOptionID,
		MatchIndex:     m.MatchIndex,
		SubmittedAt:    m.SubmittedAt,
	}
}
