package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeSlot_Shapes(t *testing.T) {
	cases := []struct {
		in   string
		want TimeSlot
	}{
		{"0000-1500", TimeSlot{Kind: SlotRange, Start: "0000", End: "1500"}},
		{"1630-4+", TimeSlot{Kind: SlotOpenEnded, Start: "1630", Hours: "4"}},
		{"1630-12+", TimeSlot{Kind: SlotOpenEnded, Start: "1630", Hours: "12"}},
		{"-4-2000", TimeSlot{Kind: SlotLeadIn, End: "2000", Hours: "4"}},
		{"*-2000", TimeSlot{Kind: SlotFromStartOfDay, End: "2000"}},
		{"0900-*", TimeSlot{Kind: SlotToEndOfDay, Start: "0900"}},
		// shape only, no magnitude checks
		{"9999-9999", TimeSlot{Kind: SlotRange, Start: "9999", End: "9999"}},
		{"0900-99999999999999999999+", TimeSlot{Kind: SlotOpenEnded, Start: "0900", Hours: "99999999999999999999"}},
		{"-99999999999999999999-2000", TimeSlot{Kind: SlotLeadIn, End: "2000", Hours: "99999999999999999999"}},
		{"0900-007+", TimeSlot{Kind: SlotOpenEnded, Start: "0900", Hours: "007"}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTimeSlot(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.in, got.String())
		})
	}
}

func TestParseTimeSlot_Rejects(t *testing.T) {
	bad := []string{
		"",
		"0900",
		"900-1500",
		"0900-150",
		"0900-15000",
		"0900-1500x",
		"x0900-1500",
		" 0900-1500",
		"0900-1500 ",
		"0900_1500",
		"0900-+",
		"0900-4",
		"0900-a+",
		"--2000",
		"-4-200",
		"-4-2000-",
		"-a-2000",
		"*2000",
		"*-200",
		"*-*",
		"0900-**",
		"09a0-*",
		"0000-1500\n",
	}
	for _, in := range bad {
		t.Run(in, func(t *testing.T) {
			_, err := ParseTimeSlot(in)
			require.ErrorIs(t, err, ErrInvalidTimeFormat)
			assert.ErrorIs(t, ValidateTimeSlot(in), ErrInvalidTimeFormat)
		})
	}
}
