// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/danielhkuo/elovote/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestMerge_CreatesThenAdds(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	agg := NewAggregateStore(conn)
	ctx := context.Background()

	pollID := testutil.CreateTestPoll(t, conn, "creator@example.com")
	opt := testutil.AddTestOption(t, conn, pollID, "Pizza")

	require.NoError(t, agg.Merge(ctx, pollID, opt, 16))
	totals, err := agg.Totals(ctx, pollID)
	require.NoError(t, err)
	assert.InDelta(t, 16.0, totals[opt], 1e-9)

	require.NoError(t, agg.Merge(ctx, pollID, opt, -4.5))
	totals, err = agg.Totals(ctx, pollID)
	require.NoError(t, err)
	assert.InDelta(t, 11.5, totals[opt], 1e-9)
}

func TestTotals_EmptyPoll(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	agg := NewAggregateStore(conn)

	pollID := testutil.CreateTestPoll(t, conn, "creator@example.com")
	totals, err := agg.Totals(context.Background(), pollID)
	require.NoError(t, err)
	assert.Empty(t, totals)
}

func TestMerge_Commutative(t *testing.T) {
	deltas := []float64{16, -3.25, 7.5, -11}
	results := make([]float64, 0, 2)

	for _, order := range [][]int{{0, 1, 2, 3}, {3, 2, 1, 0}} {
		conn := testutil.SetupTestDB(t)
		agg := NewAggregateStore(conn)
		pollID := testutil.CreateTestPoll(t, conn, "creator@example.com")
		opt := testutil.AddTestOption(t, conn, pollID, "Pizza")

		for _, i := range order {
			require.NoError(t, agg.Merge(context.Background(), pollID, opt, deltas[i]))
		}
		totals, err := agg.Totals(context.Background(), pollID)
		require.NoError(t, err)
		results = append(results, totals[opt])
	}

	assert.InDelta(t, results[0], results[1], 1e-9)
	assert.InDelta(t, 9.25, results[0], 1e-9)
}

func TestMerge_ConcurrentNoLostUpdates(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	agg := NewAggregateStore(conn)
	pollID := testutil.CreateTestPoll(t, conn, "creator@example.com")
	opt := testutil.AddTestOption(t, conn, pollID, "Pizza")

	const writers = 25
	var g errgroup.Group
	for i := 0; i < writers; i++ {
		g.Go(func() error {
			return agg.Merge(context.Background(), pollID, opt, 2)
		})
	}
	require.NoError(t, g.Wait())

	totals, err := agg.Totals(context.Background(), pollID)
	require.NoError(t, err)
	assert.InDelta(t, 2.0*writers, totals[opt], 1e-9)
}

func TestMerge_UnknownOptionIsMergeError(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	agg := NewAggregateStore(conn)
	pollID := testutil.CreateTestPoll(t, conn, "creator@example.com")

	err := agg.Merge(context.Background(), pollID, "no-such-option", 1)
	require.Error(t, err)

	var me *MergeError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, pollID, me.PollID)
	assert.Equal(t, "no-such-option", me.OptionID)
}
