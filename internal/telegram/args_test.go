package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitArgs(t *testing.T) {
	cases := map[string][]string{
		"":                                  nil,
		"   ":                               nil,
		"K 04 15 0900 Meeting (team)":       {"K", "04", "15", "0900", "Meeting", "(team)"},
		`K 04 15 0900 "Team sync" (a, b)`:   {"K", "04", "15", "0900", "Team sync", "(a,", "b)"},
		`K 04 15 0900 "Team sync" "(a, b)"`: {"K", "04", "15", "0900", "Team sync", "(a, b)"},
		`A * * 0900-* ""`:                   {"A", "*", "*", "0900-*", ""},
		"UTC\t0000-1500  2000-0600":         {"UTC", "0000-1500", "2000-0600"},
	}
	for in, want := range cases {
		got, err := splitArgs(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := splitArgs(`K 04 15 0900 "Team sync`)
	require.ErrorIs(t, err, errUnclosedQuote)
}
