// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/elovote/testutil"
)

// TestConcurrentCompletionSameSession verifies that racing completions of
// one session merge its scores exactly once
func TestConcurrentCompletionSameSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewVotingHandler(db)

	pollID := testutil.CreateTestPoll(t, db, "alice@example.com")
	a := testutil.AddTestOption(t, db, pollID, "A")
	b := testutil.AddTestOption(t, db, pollID, "B")
	sessionID := testutil.CreateTestSession(t, db, pollID, "bob@example.com")
	testutil.SubmitTestOutcome(t, db, sessionID, a, b)

	const attempts = 8
	var ok, conflict atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := httptest.NewRecorder()
			handler.CompleteSession(w, completeRequest(sessionID, "bob@example.com"))
			switch w.Code {
			case http.StatusOK:
				ok.Add(1)
			case http.StatusConflict:
				conflict.Add(1)
			default:
				t.Errorf("Unexpected status %d: %s", w.Code, w.Body.String())
			}
		}()
	}
	wg.Wait()

	if ok.Load() != 1 {
		t.Errorf("Expected exactly 1 successful completion, got %d", ok.Load())
	}
	if conflict.Load() != attempts-1 {
		t.Errorf("Expected %d conflicts, got %d", attempts-1, conflict.Load())
	}

	var total float64
	if err := db.QueryRow("SELECT total_score FROM global_score WHERE poll_id = $1 AND option_id = $2", pollID, a).Scan(&total); err != nil {
		t.Fatalf("Failed to query total: %v", err)
	}
	if math.Abs(total-16) > 1e-9 {
		t.Errorf("Expected total 16 after one merge, got %v", total)
	}
}

// TestConcurrentCompletionManyVoters verifies that completions from
// different voters all land in the poll totals
func TestConcurrentCompletionManyVoters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewVotingHandler(db)

	pollID := testutil.CreateTestPoll(t, db, "alice@example.com")
	a := testutil.AddTestOption(t, db, pollID, "A")
	b := testutil.AddTestOption(t, db, pollID, "B")

	const voters = 10
	sessions := make([]string, voters)
	emails := make([]string, voters)
	for i := range sessions {
		emails[i] = fmt.Sprintf("voter%d@example.com", i)
		sessions[i] = testutil.CreateTestSession(t, db, pollID, emails[i])
		if i%2 == 0 {
			testutil.SubmitTestOutcome(t, db, sessions[i], a, b)
		} else {
			testutil.SubmitTestOutcome(t, db, sessions[i], b, a)
		}
	}

	var wg sync.WaitGroup
	for i := range sessions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := httptest.NewRecorder()
			handler.CompleteSession(w, completeRequest(sessions[i], emails[i]))
			if w.Code != http.StatusOK {
				t.Errorf("Voter %d: expected 200, got %d: %s", i, w.Code, w.Body.String())
			}
		}(i)
	}
	wg.Wait()

	// Five wins each way cancel out
	for _, opt := range []string{a, b} {
		var total float64
		if err := db.QueryRow("SELECT total_score FROM global_score WHERE poll_id = $1 AND option_id = $2", pollID, opt).Scan(&total); err != nil {
			t.Fatalf("Failed to query total: %v", err)
		}
		if math.Abs(total) > 1e-9 {
			t.Errorf("Expected total 0 for %s, got %v", opt, total)
		}
	}
}
