package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func organizer() *Profile {
	p := NewProfile(7)
	p.Tags = append(p.Tags, TagKord)
	return p
}

func validEvent() RawEntry {
	return RawEntry{Action: "k", Month: "04", Day: "15", TimeSlot: "0900", Note: "Meeting", Tags: "(team)"}
}

func TestValidateEntry_Event(t *testing.T) {
	e, err := ValidateEntry(validEvent(), organizer())
	require.NoError(t, err)
	assert.Equal(t, ActionEvent, e.Action)
	assert.Equal(t, "Meeting.", e.Note)
	assert.Equal(t, "(team)", e.Tags)
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.CreatedAt.IsZero())
}

func TestValidateEntry_Rules(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RawEntry)
		actor  *Profile
		want   error
	}{
		{"unknown action", func(r *RawEntry) { r.Action = "X" }, organizer(), ErrInvalidAction},
		{"action checked before kord", func(r *RawEntry) { r.Action = "Z" }, NewProfile(1), ErrInvalidAction},
		{"no kord", nil, NewProfile(1), ErrUnauthorized},
		{"no profile", nil, nil, ErrUnauthorized},
		{"month set", func(r *RawEntry) { r.Month = "04,05" }, organizer(), ErrInvalidEventDate},
		{"month range", func(r *RawEntry) { r.Month = "04-05" }, organizer(), ErrInvalidEventDate},
		{"month wildcard", func(r *RawEntry) { r.Month = "*" }, organizer(), ErrInvalidEventDate},
		{"day range", func(r *RawEntry) { r.Day = "1-3" }, organizer(), ErrInvalidEventDate},
		{"time range", func(r *RawEntry) { r.TimeSlot = "0900-1000" }, organizer(), ErrInvalidEventTime},
		{"time short", func(r *RawEntry) { r.TimeSlot = "900" }, organizer(), ErrInvalidEventTime},
		{"time letters", func(r *RawEntry) { r.TimeSlot = "09h0" }, organizer(), ErrInvalidEventTime},
		{"empty note", func(r *RawEntry) { r.Note = "  " }, organizer(), ErrMissingTitle},
		{"placeholder note", func(r *RawEntry) { r.Note = "." }, organizer(), ErrMissingTitle},
		{"no tags", func(r *RawEntry) { r.Tags = "" }, organizer(), ErrMissingAudience},
		{"bare tags", func(r *RawEntry) { r.Tags = "team" }, organizer(), ErrMalformedAudience},
		{"half paren", func(r *RawEntry) { r.Tags = "(team" }, organizer(), ErrMalformedAudience},
		{"empty parens", func(r *RawEntry) { r.Tags = "( , )" }, organizer(), ErrMalformedAudience},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := validEvent()
			if tc.mutate != nil {
				tc.mutate(&raw)
			}
			_, err := ValidateEntry(raw, tc.actor)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestValidateEntry_EventMonthAlwaysSingle(t *testing.T) {
	for _, month := range []string{",", "-", "*", "1,2", "01-12", "*/2", "0*"} {
		raw := validEvent()
		raw.Month = month
		_, err := ValidateEntry(raw, organizer())
		assert.ErrorIs(t, err, ErrInvalidEventDate, month)
	}
}

func TestValidateEntry_Crons(t *testing.T) {
	for _, action := range []string{"A", "n", "R"} {
		e, err := ValidateEntry(RawEntry{
			Action: action, Month: "*", Day: "1-5", TimeSlot: "0900-*", Note: "office", Tags: "  work  ",
		}, nil)
		require.NoError(t, err, action)
		assert.Equal(t, "office.", e.Note)
		assert.Equal(t, "work", e.Tags)
		assert.Equal(t, "*", e.Month)
	}

	_, err := ValidateEntry(RawEntry{Action: "A", Month: "*", Day: "*", TimeSlot: "0900", Note: "."}, nil)
	require.ErrorIs(t, err, ErrInvalidTimeFormat)
}

func TestNormalizeNote(t *testing.T) {
	assert.Equal(t, "Hello.", NormalizeNote("Hello"))
	assert.Equal(t, "Hello.", NormalizeNote("Hello."))
	assert.Equal(t, "Ready?", NormalizeNote("Ready?"))
	assert.Equal(t, ".", NormalizeNote(""))
}

func TestEventWindow_RollsMinutesIntoHour(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	e := Entry{Action: ActionEvent, Month: "04", Day: "15", TimeSlot: "0930"}

	start, end, err := EventWindow(e, time.UTC, now)
	require.NoError(t, err)
	assert.Equal(t, "09:30", start.Format("15:04"))
	assert.Equal(t, "10:30", end.Format("15:04"))

	for _, clock := range []string{"0000", "0059", "0930", "1245", "2230", "2359"} {
		e.TimeSlot = clock
		_, end, err := EventWindow(e, time.UTC, now)
		require.NoError(t, err, clock)
		assert.Less(t, end.Minute(), 60, clock)
		assert.Equal(t, clock[2:], end.Format("04"), clock)
	}
}

func TestEventStart(t *testing.T) {
	loc, err := LoadLocation("PST")
	require.NoError(t, err)
	now := time.Date(2026, time.May, 1, 12, 0, 0, 0, loc)

	start, err := EventStart("04", "15", "0900", loc, now)
	require.NoError(t, err)
	assert.Equal(t, 2027, start.Year(), "past dates roll to next year")
	assert.Equal(t, loc, start.Location())

	start, err = EventStart("12", "31", "2300", loc, now)
	require.NoError(t, err)
	assert.Equal(t, 2026, start.Year())

	start, err = EventStart("02", "29", "1000", loc, now)
	require.NoError(t, err)
	assert.Equal(t, 2028, start.Year())

	_, err = EventStart("13", "01", "0900", loc, now)
	require.ErrorIs(t, err, ErrInvalidEventDate)
	_, err = EventStart("04", "31", "0900", loc, now)
	require.ErrorIs(t, err, ErrInvalidEventDate)
	_, err = EventStart("04", "15", "2460", loc, now)
	require.ErrorIs(t, err, ErrInvalidEventTime)
}

func TestParseTimezone(t *testing.T) {
	tz, err := ParseTimezone("pst")
	require.NoError(t, err)
	assert.Equal(t, "PST", tz)
	assert.Equal(t, "America/Los_Angeles", IANAName(tz))

	_, err = ParseTimezone("Europe/Moscow")
	require.ErrorIs(t, err, ErrInvalidTimezone)
}
