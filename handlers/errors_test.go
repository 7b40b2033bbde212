// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/elovote/elo"
	"github.com/danielhkuo/elovote/metrics"
	"github.com/danielhkuo/elovote/store"
	"github.com/danielhkuo/elovote/testutil"
)

// unknownID is a well-formed id that no row uses.
const unknownID = "00000000-0000-0000-0000-000000000000"

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{"incomplete", &elo.IncompleteSessionError{Expected: 3, Actual: 1}, http.StatusBadRequest, metrics.ReasonIncomplete},
		{"inconsistent", &elo.DataConsistencyError{Index: 2, OptionID: "x"}, http.StatusUnprocessableEntity, metrics.ReasonInconsistent},
		{"merge", &store.MergeError{PollID: "p", Err: errors.New("boom")}, http.StatusServiceUnavailable, metrics.ReasonMerge},
		{"already complete", store.ErrAlreadyComplete, http.StatusConflict, metrics.ReasonAlreadyComplete},
		{"session not found", store.ErrSessionNotFound, http.StatusNotFound, metrics.ReasonNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", store.ErrSessionNotFound), http.StatusNotFound, metrics.ReasonNotFound},
		{"duplicate pair", store.ErrDuplicatePair, http.StatusConflict, metrics.ReasonInternal},
		{"options frozen", store.ErrOptionsFrozen, http.StatusConflict, metrics.ReasonInternal},
		{"poll not found", fmt.Errorf("lock: %w", store.ErrPollNotFound), http.StatusNotFound, metrics.ReasonInternal},
		{"unknown", errors.New("disk full"), http.StatusInternalServerError, metrics.ReasonInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := classify(tt.err)
			if status != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, status)
			}
			if msg == "" {
				t.Error("Expected a message")
			}
			if got := failureReason(tt.err); got != tt.wantReason {
				t.Errorf("Expected reason %s, got %s", tt.wantReason, got)
			}
		})
	}
}

// Malformed path ids are rejected before any lookup or ownership check.
func TestPathIDValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	polls := NewPollHandler(db)
	voting := NewVotingHandler(db)

	tests := []struct {
		name    string
		method  string
		path    string
		body    interface{}
		handler http.HandlerFunc
	}{
		{"get poll", "GET", "/polls/%s", nil, polls.GetPoll},
		{"add option", "POST", "/polls/%s/options", map[string]string{"label": "A"}, polls.AddOption},
		{"preview", "GET", "/polls/%s/preview", nil, polls.Preview},
		{"poll leaderboard", "GET", "/polls/%s/leaderboard", nil, polls.PollLeaderboard},
		{"get session", "GET", "/votes/sessions/%s", nil, voting.GetSession},
		{"list outcomes", "GET", "/votes/sessions/%s/results", nil, voting.ListOutcomes},
		{"complete session", "POST", "/votes/sessions/%s/complete", nil, voting.CompleteSession},
		{"session leaderboard", "GET", "/votes/sessions/%s/leaderboard", nil, voting.SessionLeaderboard},
	}

	for _, tt := range tests {
		for _, id := range []string{"not-a-uuid", "1234", "' OR 1=1 --"} {
			t.Run(tt.name+"/"+id, func(t *testing.T) {
				req := testutil.MakeRequest(tt.method, fmt.Sprintf(tt.path, "x"), tt.body, nil)
				req.SetPathValue("id", id)
				req = testutil.AsAdmin(req)
				w := httptest.NewRecorder()

				tt.handler(w, req)

				testutil.AssertStatus(t, w, http.StatusBadRequest)
			})
		}
	}
}
