// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package elo

// MeanCenter returns a copy of ratings with their arithmetic mean
// subtracted, so the result sums to zero.
func MeanCenter(ratings []float64) []float64 {
	centered := make([]float64, len(ratings))
	if len(ratings) == 0 {
		return centered
	}

	sum := 0.0
	for _, r := range ratings {
		sum += r
	}
	mean := sum / float64(len(ratings))

	for i, r := range ratings {
		centered[i] = r - mean
	}
	return centered
}

// Finalize validates, replays and mean-centers one session. No work is
// done unless the outcome count matches the round-robin size.
func Finalize(options []Option, outcomes []Outcome) ([]float64, error) {
	if err := CheckComplete(len(options), len(outcomes)); err != nil {
		return nil, err
	}
	ratings, err := Replay(options, outcomes)
	if err != nil {
		return nil, err
	}
	return MeanCenter(ratings), nil
}

// ScoreMap keys a vector by the ID of the option at the same position.
func ScoreMap(options []Option, vector []float64) map[string]float64 {
	scores := make(map[string]float64, len(options))
	for i, opt := range options {
		if i >= len(vector) {
			break
		}
		scores[opt.ID] = vector[i]
	}
	return scores
}
