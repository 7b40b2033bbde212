// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package leaderboard

import (
	"math/rand/v2"
	"sort"

	"github.com/danielhkuo/elovote/elo"
)

// PageSize is the number of entries returned unless the caller asks for all.
const PageSize = 10

// Entry is one row of a leaderboard.
type Entry struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
	Rank  Rank    `json:"rank"`
}

// Shuffler permutes n elements through swap, matching rand.Shuffle.
type Shuffler func(n int, swap func(i, j int))

// Build ranks options by score.
//
// When scores has at least one entry every option is ranked: options
// missing from scores count as 0, entries are sorted descending (stable on
// option order) and given standard competition ranks, so equal scores share
// a rank and the next distinct score takes its 1-based position (1, 1, 3).
//
// When scores is empty nothing has been rated yet. Every option is returned
// with score 0 and Rank Unranked, in an order permuted by shuffle. A nil
// shuffle uses math/rand/v2.
//
// Unless viewAll is set the result is cut to the first PageSize entries.
func Build(options []elo.Option, scores map[string]float64, viewAll bool, shuffle Shuffler) []Entry {
	entries := make([]Entry, len(options))
	for i, opt := range options {
		entries[i] = Entry{Label: opt.Label, Score: scores[opt.ID]}
	}

	if len(scores) == 0 {
		if shuffle == nil {
			shuffle = rand.Shuffle
		}
		shuffle(len(entries), func(i, j int) {
			entries[i], entries[j] = entries[j], entries[i]
		})
		return page(entries, viewAll)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})

	for i := range entries {
		if i > 0 && entries[i].Score == entries[i-1].Score {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = Ranked(uint(i + 1))
	}

	return page(entries, viewAll)
}

func page(entries []Entry, viewAll bool) []Entry {
	if !viewAll && len(entries) > PageSize {
		return entries[:PageSize]
	}
	return entries
}

// IsRanked reports whether the entries carry numeric ranks.
func IsRanked(entries []Entry) bool {
	return len(entries) > 0 && entries[0].Rank.IsRanked()
}
