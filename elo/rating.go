// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package elo

import "math"

const (
	BaselineRating = 500.0
	BaseK          = 32.0
)

// Option is a rateable choice within a poll.
type Option struct {
	ID    string
	Label string
}

// Outcome is one pairwise comparison won by WinnerOptionID.
type Outcome struct {
	SessionID      string
	WinnerOptionID string
	LoserOptionID  string
	MatchIndex     int
}

// Probability returns the expected chance that a player rated a beats a
// player rated b.
func Probability(a, b float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (b-a)/400))
}

// DecayedK returns the learning rate for the match-th outcome (1-based).
func DecayedK(kBase float64, match int) float64 {
	return kBase / math.Sqrt(float64(match))
}

// Update applies a single win for winner over loser and returns both new
// ratings. The exchange is symmetric: what the winner gains the loser loses.
func Update(winner, loser, k float64) (float64, float64) {
	expected := Probability(winner, loser)
	delta := k * (1 - expected)
	return winner + delta, loser - delta
}

// Replay rates every option by replaying outcomes in the order given,
// starting all options at BaselineRating. The returned ratings are in the
// same order as options.
func Replay(options []Option, outcomes []Outcome) ([]float64, error) {
	ratings := make(map[string]float64, len(options))
	for _, opt := range options {
		ratings[opt.ID] = BaselineRating
	}

	for i, outcome := range outcomes {
		winner, ok := ratings[outcome.WinnerOptionID]
		if !ok {
			return nil, &DataConsistencyError{Index: i + 1, OptionID: outcome.WinnerOptionID}
		}
		loser, ok := ratings[outcome.LoserOptionID]
		if !ok {
			return nil, &DataConsistencyError{Index: i + 1, OptionID: outcome.LoserOptionID}
		}

		k := DecayedK(BaseK, i+1)
		ratings[outcome.WinnerOptionID], ratings[outcome.LoserOptionID] = Update(winner, loser, k)
	}

	result := make([]float64, len(options))
	for i, opt := range options {
		result[i] = ratings[opt.ID]
	}
	return result, nil
}
