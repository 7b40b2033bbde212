// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package elo

// RequiredOutcomes returns the number of pairwise outcomes a full
// round-robin over n options needs: n(n-1)/2, or 0 when n < 2.
func RequiredOutcomes(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}

// CheckComplete reports whether actual outcomes cover every pair of n options.
func CheckComplete(n, actual int) error {
	expected := RequiredOutcomes(n)
	if actual != expected {
		return &IncompleteSessionError{Expected: expected, Actual: actual}
	}
	return nil
}
