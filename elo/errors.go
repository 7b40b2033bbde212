// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package elo

import (
	"errors"
	"fmt"
)

var (
	ErrIncompleteSession = errors.New("session incomplete")
	ErrUnknownOption     = errors.New("outcome references unknown option")
)

// IncompleteSessionError reports a session whose outcome count does not
// match the round-robin size of its option set.
type IncompleteSessionError struct {
	Expected int
	Actual   int
}

func (e *IncompleteSessionError) Error() string {
	return fmt.Sprintf("session incomplete: expected %d matches, got %d", e.Expected, e.Actual)
}

func (e *IncompleteSessionError) Unwrap() error { return ErrIncompleteSession }

// DataConsistencyError reports an outcome that names an option outside the
// option set it is replayed against.
type DataConsistencyError struct {
	// Index is the 1-based position of the offending outcome.
	Index    int
	OptionID string
}

func (e *DataConsistencyError) Error() string {
	return fmt.Sprintf("outcome %d references unknown option %q", e.Index, e.OptionID)
}

func (e *DataConsistencyError) Unwrap() error { return ErrUnknownOption }
