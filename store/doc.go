// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists voter sessions and the per-poll aggregate scores.

# Aggregate Scores

AggregateStore keeps one cumulative total per (poll, option). The only write
is Merge, a single INSERT ... ON CONFLICT DO UPDATE that adds a delta in
place:

	err := agg.Merge(ctx, pollID, optionID, 16)
	totals, err := agg.Totals(ctx, pollID)

Because merges only ever add, the final totals do not depend on the order
in which sessions complete, and concurrent merges to one key cannot lose
an update.

# Session Lifecycle

SessionStore moves a session from active to complete exactly once:

	sess, err := sessions.Start(ctx, pollID, email)
	m, err := sessions.RecordOutcome(ctx, sess.ID, winnerID, loserID, index)
	c, err := sessions.Complete(ctx, sess.ID, elo.Finalize)

Complete runs in one transaction:

 1. Flip status with UPDATE ... WHERE status = 'active'. Zero rows means
    the session is missing (ErrSessionNotFound) or already complete
    (ErrAlreadyComplete).
 2. Load the poll's options and the session's outcomes in seq order.
 3. Run the Finalizer. A validation error rolls everything back.
 4. Store the session's scores and merge each into the aggregate, in
    option ID order.
 5. Commit.

RecordOutcome takes the same session row lock before inserting, so an
outcome can never land in a session that is being completed.

# Errors

Sentinel errors map to HTTP statuses in the handlers package. MergeError
wraps a failed write to the aggregate with the key that failed.
*/
package store
