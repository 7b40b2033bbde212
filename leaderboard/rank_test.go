// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package leaderboard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRank(t *testing.T) {
	pos, ok := Ranked(3).Position()
	assert.True(t, ok)
	assert.Equal(t, uint(3), pos)

	_, ok = Unranked.Position()
	assert.False(t, ok)
	assert.False(t, Ranked(0).IsRanked())
	assert.Equal(t, "NA", Unranked.String())
	assert.Equal(t, "3", Ranked(3).String())
}

func TestRank_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input   string
		want    Rank
		wantErr bool
	}{
		{`1`, Ranked(1), false},
		{`42`, Ranked(42), false},
		{`"NA"`, Unranked, false},
		{`0`, Rank{}, true},
		{`-1`, Rank{}, true},
		{`"first"`, Rank{}, true},
		{`1.5`, Rank{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var r Rank
			err := json.Unmarshal([]byte(tt.input), &r)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, r)
		})
	}
}
