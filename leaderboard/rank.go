// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package leaderboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// unrankedLabel is the wire form of Unranked.
const unrankedLabel = "NA"

// Rank is either a 1-based position or Unranked. The zero value is Unranked.
type Rank struct {
	position uint
}

// Unranked marks an option that has no score yet.
var Unranked = Rank{}

// Ranked returns the rank at position n. Ranked(0) is Unranked.
func Ranked(n uint) Rank {
	return Rank{position: n}
}

// Position returns the 1-based position and whether the rank is set.
func (r Rank) Position() (uint, bool) {
	return r.position, r.position > 0
}

func (r Rank) IsRanked() bool {
	return r.position > 0
}

func (r Rank) String() string {
	if !r.IsRanked() {
		return unrankedLabel
	}
	return strconv.FormatUint(uint64(r.position), 10)
}

// MarshalJSON encodes a ranked value as a number and Unranked as "NA".
func (r Rank) MarshalJSON() ([]byte, error) {
	if !r.IsRanked() {
		return json.Marshal(unrankedLabel)
	}
	return []byte(strconv.FormatUint(uint64(r.position), 10)), nil
}

func (r *Rank) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != unrankedLabel {
			return fmt.Errorf("leaderboard: invalid rank %q", s)
		}
		*r = Unranked
		return nil
	}

	var n uint
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("leaderboard: invalid rank: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("leaderboard: rank must be positive")
	}
	*r = Ranked(n)
	return nil
}
