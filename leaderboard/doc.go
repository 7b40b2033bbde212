// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package leaderboard turns a score map into a ranked, display-ready list.

# Ranking

Once any score exists, every option is ranked. Options without a score
count as 0. Entries are ordered by score, highest first, and receive
standard competition ranks. Ties share a rank and leave a gap behind them:

	scores  [10, 10, 5]
	ranks   [ 1,  1, 3]

# Unranked polls

Before any session completes there is nothing to order by. Every option is
returned with score 0 and Rank set to Unranked, which encodes to JSON as the
string "NA", and the order is shuffled on every call so that no option is
advantaged by position.

# Pagination

Build returns the first PageSize entries unless viewAll is true. Pagination
is applied after ranking, so a truncated list never renumbers.

The same Build function serves both the per-session leaderboard (scores
from one finalized vector) and the poll-wide leaderboard (accumulated
totals from the aggregate store).
*/
package leaderboard
