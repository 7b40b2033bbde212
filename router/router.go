// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/elovote/auth"
	"github.com/danielhkuo/elovote/cliparse"
	"github.com/danielhkuo/elovote/handlers"
	"github.com/danielhkuo/elovote/metrics"
	"github.com/danielhkuo/elovote/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, verifier auth.Verifier) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(db)
	votingHandler := handlers.NewVotingHandler(db)

	limiter := middleware.NewClientLimiter(cfg.RateLimit, cfg.RateBurst)
	authed := middleware.RequireIdentity(verifier)

	// read: token required
	read := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(authed(h))
	}
	// write: token required, rate limited per subject
	write := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(authed(middleware.RateLimit(limiter, h)))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", metrics.Handler())

	// Polls
	mux.HandleFunc("POST /polls", write(pollHandler.CreatePoll))
	mux.HandleFunc("GET /polls", middleware.WithLogging(pollHandler.ListPolls))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.GetPoll))
	mux.HandleFunc("POST /polls/{id}/options", write(pollHandler.AddOption))
	mux.HandleFunc("GET /polls/{id}/preview", middleware.WithLogging(pollHandler.Preview))
	mux.HandleFunc("GET /polls/{id}/leaderboard", read(pollHandler.PollLeaderboard))

	// Voting sessions
	mux.HandleFunc("POST /votes/sessions", write(votingHandler.StartSession))
	mux.HandleFunc("GET /votes/sessions/{id}", read(votingHandler.GetSession))
	mux.HandleFunc("POST /votes/matches", write(votingHandler.SubmitMatch))
	mux.HandleFunc("GET /votes/sessions/{id}/results", read(votingHandler.ListOutcomes))
	mux.HandleFunc("POST /votes/sessions/{id}/complete", write(votingHandler.CompleteSession))
	mux.HandleFunc("GET /votes/sessions/{id}/leaderboard", read(votingHandler.SessionLeaderboard))

	// Token introspection
	mux.HandleFunc("GET /auth/me", read(handlers.Me))
	mux.HandleFunc("GET /auth/verify", read(handlers.Verify))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("elovote API v1"))
	})

	return mux
}
