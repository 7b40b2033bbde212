// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package elo turns one voter's round-robin of pairwise outcomes into a
per-option contribution to the poll leaderboard.

# Completeness

A session over n options is complete when it holds exactly n(n-1)/2
outcomes, one per unordered pair:

	err := elo.CheckComplete(len(options), len(outcomes))

A mismatch is reported as *IncompleteSessionError carrying the expected
and actual counts.

# Replay

Every option starts at BaselineRating. Outcomes are replayed in the order
given; outcome i (1-based) moves ratings by at most BaseK/sqrt(i):

	ratings, err := elo.Replay(options, outcomes)

The result is aligned with the options slice. An outcome naming an option
outside the set is a *DataConsistencyError.

# Normalization

MeanCenter subtracts the mean so a session adds zero total score to the
poll and only the relative standing of its options counts.

# Finalize

Finalize chains the three steps and is what the completion flow calls:

	vector, err := elo.Finalize(options, outcomes)
*/
package elo
