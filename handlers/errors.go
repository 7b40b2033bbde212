// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/elovote/auth"
	"github.com/danielhkuo/elovote/elo"
	"github.com/danielhkuo/elovote/metrics"
	"github.com/danielhkuo/elovote/middleware"
	"github.com/danielhkuo/elovote/store"
)

// writeError maps domain errors to a status and message. Anything it does
// not recognize is logged and reported as 500.
func writeError(w http.ResponseWriter, err error, op string, attrs ...any) {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		slog.Error(op+" failed", append([]any{"error", err}, attrs...)...)
	}
	middleware.ErrorResponse(w, status, msg)
}

func classify(err error) (int, string) {
	var incomplete *elo.IncompleteSessionError
	var inconsistent *elo.DataConsistencyError
	var merge *store.MergeError

	switch {
	case errors.As(err, &incomplete):
		return http.StatusBadRequest, fmt.Sprintf("Session incomplete. Expected %d matches, got %d", incomplete.Expected, incomplete.Actual)
	case errors.As(err, &inconsistent):
		return http.StatusUnprocessableEntity, fmt.Sprintf("Outcome %d references unknown option %s", inconsistent.Index, inconsistent.OptionID)
	case errors.As(err, &merge):
		return http.StatusServiceUnavailable, "Failed to update scores, try again"
	case errors.Is(err, store.ErrPollNotFound):
		return http.StatusNotFound, "Poll not found"
	case errors.Is(err, store.ErrSessionNotFound):
		return http.StatusNotFound, "Session not found"
	case errors.Is(err, store.ErrAlreadyComplete):
		return http.StatusConflict, "Session already complete"
	case errors.Is(err, store.ErrTooFewOptions):
		return http.StatusBadRequest, "Poll must have at least 2 options"
	case errors.Is(err, store.ErrOptionNotInPoll):
		return http.StatusBadRequest, "Option does not belong to this poll"
	case errors.Is(err, store.ErrSameOption):
		return http.StatusBadRequest, "Winner and loser must differ"
	case errors.Is(err, store.ErrDuplicatePair):
		return http.StatusConflict, "Match already recorded for this pair"
	case errors.Is(err, store.ErrOptionsFrozen):
		return http.StatusConflict, "Cannot add options once voting has started"
	default:
		return http.StatusInternalServerError, "Database error"
	}
}

// failureReason labels a completion failure for metrics.
func failureReason(err error) string {
	var incomplete *elo.IncompleteSessionError
	var inconsistent *elo.DataConsistencyError
	var merge *store.MergeError

	switch {
	case errors.As(err, &incomplete):
		return metrics.ReasonIncomplete
	case errors.As(err, &inconsistent):
		return metrics.ReasonInconsistent
	case errors.As(err, &merge):
		return metrics.ReasonMerge
	case errors.Is(err, store.ErrAlreadyComplete):
		return metrics.ReasonAlreadyComplete
	case errors.Is(err, store.ErrSessionNotFound):
		return metrics.ReasonNotFound
	default:
		return metrics.ReasonInternal
	}
}

// identity returns the caller set by middleware.RequireIdentity, writing
// 401 when there is none.
func identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Bearer token required")
		return auth.Identity{}, false
	}
	return id, true
}

// pathID returns the {id} path value, writing 400 unless it is a UUID.
func pathID(w http.ResponseWriter, r *http.Request, kind string) (string, bool) {
	id := r.PathValue("id")
	if !auth.ValidID(id) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid "+kind+" id")
		return "", false
	}
	return id, true
}

func forbid(w http.ResponseWriter, id auth.Identity, c auth.Capability, resource string) {
	slog.Warn("access denied", "subject", id.Subject, "capability", c.String(), "resource", resource)
	middleware.ErrorResponse(w, http.StatusForbidden, "Not allowed")
}
