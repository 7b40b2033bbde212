// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"errors"
	"fmt"
)

var (
	ErrPollNotFound    = errors.New("poll not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrAlreadyComplete = errors.New("session already complete")
	ErrTooFewOptions   = errors.New("poll needs at least two options")
	ErrOptionNotInPoll = errors.New("option does not belong to poll")
	ErrSameOption      = errors.New("winner and loser must differ")
	ErrDuplicatePair   = errors.New("pair already recorded for session")
	ErrOptionsFrozen   = errors.New("options are frozen once voting has started")
)

// MergeError reports a failed merge for one (poll, option) key. The
// surrounding transaction is rolled back, so no key from the same session
// was applied.
type MergeError struct {
	PollID   string
	OptionID string
	Err      error
}

func (e *MergeError) Error() string {
	if e.OptionID == "" {
		return fmt.Sprintf("merge scores for poll %s: %v", e.PollID, e.Err)
	}
	return fmt.Sprintf("merge score for poll %s option %s: %v", e.PollID, e.OptionID, e.Err)
}

func (e *MergeError) Unwrap() error {
	return e.Err
}
