package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultTimezone is assigned to profiles created implicitly.
const DefaultTimezone = "UTC"

// EventDuration is the fixed length of a calendar event created for a K entry.
const EventDuration = 60 * time.Minute

// timezones maps the supported zone codes to IANA locations.
var timezones = map[string]string{
	"UTC": "UTC",
	"EST": "America/New_York",
	"CST": "America/Chicago",
	"MST": "America/Denver",
	"PST": "America/Los_Angeles",
}

// TimezoneCodes lists the accepted zone codes in display order.
func TimezoneCodes() []string {
	return []string{"UTC", "EST", "CST", "MST", "PST"}
}

// ParseTimezone validates a zone code case-insensitively and returns its
// canonical upper-case form.
func ParseTimezone(s string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if _, ok := timezones[code]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimezone, s)
	}
	return code, nil
}

// IANAName returns the IANA location name for a zone code, falling back to UTC.
func IANAName(code string) string {
	if name, ok := timezones[strings.ToUpper(code)]; ok {
		return name
	}
	return "UTC"
}

// LoadLocation resolves a zone code to a *time.Location.
func LoadLocation(code string) (*time.Location, error) {
	return time.LoadLocation(IANAName(code))
}

// ParseClock parses "HHMM" into hour and minute, rejecting out-of-range values.
func ParseClock(s string) (hour, minute int, err error) {
	if len(s) != 4 || !isAllDigits(s) {
		return 0, 0, fmt.Errorf("%w: %q is not HHMM", ErrInvalidEventTime, s)
	}
	hour, _ = strconv.Atoi(s[:2])
	minute, _ = strconv.Atoi(s[2:])
	if hour > 23 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q out of range", ErrInvalidEventTime, s)
	}
	return hour, minute, nil
}

// FormatClock renders "HHMM" as "HH:MM". Values that are not four digits are
// returned unchanged.
func FormatClock(s string) string {
	if len(s) != 4 || !isAllDigits(s) {
		return s
	}
	return s[:2] + ":" + s[2:]
}

// EventStart returns the next start of an event entry at or after now, in
// loc. Month and day carry no year, so the current year is tried first and
// later years after that (which also covers 29 February).
func EventStart(month, day, clock string, loc *time.Location, now time.Time) (time.Time, error) {
	m, err := strconv.Atoi(strings.TrimSpace(month))
	if err != nil || m < 1 || m > 12 {
		return time.Time{}, fmt.Errorf("%w: month %q", ErrInvalidEventDate, month)
	}
	d, err := strconv.Atoi(strings.TrimSpace(day))
	if err != nil || d < 1 || d > 31 {
		return time.Time{}, fmt.Errorf("%w: day %q", ErrInvalidEventDate, day)
	}
	hh, mm, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}

	localNow := now.In(loc)
	for year := localNow.Year(); year <= localNow.Year()+8; year++ {
		start := time.Date(year, time.Month(m), d, hh, mm, 0, 0, loc)
		// time.Date normalizes 31 April into 1 May; skip such years.
		if start.Month() != time.Month(m) || start.Day() != d {
			continue
		}
		if !start.Before(localNow) {
			return start, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s/%s does not exist", ErrInvalidEventDate, month, day)
}

// EventWindow returns the start and end of an event entry in loc.
// The end is always EventDuration after the start.
func EventWindow(e Entry, loc *time.Location, now time.Time) (start, end time.Time, err error) {
	start, err = EventStart(e.Month, e.Day, e.TimeSlot, loc, now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.Add(EventDuration), nil
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
