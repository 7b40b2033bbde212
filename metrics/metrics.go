// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Failure reasons for CompletionFailures.
const (
	ReasonIncomplete      = "incomplete"
	ReasonInconsistent    = "inconsistent"
	ReasonAlreadyComplete = "already_complete"
	ReasonNotFound        = "not_found"
	ReasonMerge           = "merge"
	ReasonInternal        = "internal"
)

var (
	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "elovote_sessions_started_total",
			Help: "Voter sessions opened.",
		},
	)

	SessionsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "elovote_sessions_completed_total",
			Help: "Voter sessions finalized and merged into global scores.",
		},
	)

	CompletionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elovote_session_completion_failures_total",
			Help: "Session completion attempts that were rejected or rolled back.",
		},
		[]string{"reason"},
	)

	OutcomesSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "elovote_outcomes_submitted_total",
			Help: "Pairwise match outcomes recorded.",
		},
	)

	MergeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "elovote_score_merge_duration_seconds",
			Help:    "Time spent merging one session's deltas into global scores.",
			Buckets: prometheus.DefBuckets,
		},
	)

	LeaderboardBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elovote_leaderboard_builds_total",
			Help: "Leaderboards built, by scope (poll or session) and whether ranks were assigned.",
		},
		[]string{"scope", "ranked"},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "elovote_rate_limited_requests_total",
			Help: "Requests rejected by the write rate limiter.",
		},
	)
)

// ObserveMerge records how long a merge took, starting at start.
func ObserveMerge(start time.Time) {
	MergeDuration.Observe(time.Since(start).Seconds())
}

// RecordLeaderboard counts one leaderboard build.
func RecordLeaderboard(scope string, ranked bool) {
	label := "false"
	if ranked {
		label = "true"
	}
	LeaderboardBuilds.WithLabelValues(scope, label).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
