package domain

import (
	"fmt"
	"strings"
)

// SlotKind tells which of the supported time-slot shapes a TimeSlot holds.
type SlotKind int

const (
	// SlotRange is "HHMM-HHMM".
	SlotRange SlotKind = iota + 1
	// SlotOpenEnded is "HHMM-N+": starts at HHMM and lasts about N hours.
	SlotOpenEnded
	// SlotLeadIn is "-N-HHMM": ends at HHMM and starts N hours earlier.
	SlotLeadIn
	// SlotFromStartOfDay is "*-HHMM".
	SlotFromStartOfDay
	// SlotToEndOfDay is "HHMM-*".
	SlotToEndOfDay
)

func (k SlotKind) String() string {
	switch k {
	case SlotRange:
		return "range"
	case SlotOpenEnded:
		return "open-ended"
	case SlotLeadIn:
		return "lead-in"
	case SlotFromStartOfDay:
		return "from-start-of-day"
	case SlotToEndOfDay:
		return "to-end-of-day"
	default:
		return "unknown"
	}
}

// TimeSlot is a parsed time-slot expression. Start and End hold the raw
// 4-digit clock values ("" on the wildcard side); Hours holds the raw digits
// of N for SlotOpenEnded and SlotLeadIn.
//
// Only the shape is checked: "9999" is a valid clock value here.
type TimeSlot struct {
	Kind  SlotKind
	Start string
	End   string
	Hours string
}

// String renders the slot in its canonical textual form.
func (t TimeSlot) String() string {
	switch t.Kind {
	case SlotRange:
		return t.Start + "-" + t.End
	case SlotOpenEnded:
		return t.Start + "-" + t.Hours + "+"
	case SlotLeadIn:
		return "-" + t.Hours + "-" + t.End
	case SlotFromStartOfDay:
		return "*-" + t.End
	case SlotToEndOfDay:
		return t.Start + "-*"
	default:
		return ""
	}
}

// ParseTimeSlot classifies s into one of the five time-slot shapes.
// The whole string must match one shape; surrounding spaces are not trimmed.
func ParseTimeSlot(s string) (TimeSlot, error) {
	bad := func() (TimeSlot, error) {
		return TimeSlot{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	switch {
	case strings.HasPrefix(s, "*-"):
		end := s[2:]
		if !isClock(end) {
			return bad()
		}
		return TimeSlot{Kind: SlotFromStartOfDay, End: end}, nil

	case strings.HasPrefix(s, "-"):
		// -N-HHMM
		rest := s[1:]
		i := strings.IndexByte(rest, '-')
		if i <= 0 {
			return bad()
		}
		hours := rest[:i]
		if !isAllDigits(hours) || !isClock(rest[i+1:]) {
			return bad()
		}
		return TimeSlot{Kind: SlotLeadIn, End: rest[i+1:], Hours: hours}, nil
	}

	// Remaining shapes all begin with "HHMM-".
	if len(s) < 6 || !isClock(s[:4]) || s[4] != '-' {
		return bad()
	}
	start, tail := s[:4], s[5:]

	switch {
	case tail == "*":
		return TimeSlot{Kind: SlotToEndOfDay, Start: start}, nil
	case strings.HasSuffix(tail, "+"):
		hours := strings.TrimSuffix(tail, "+")
		if !isAllDigits(hours) {
			return bad()
		}
		return TimeSlot{Kind: SlotOpenEnded, Start: start, Hours: hours}, nil
	case isClock(tail):
		return TimeSlot{Kind: SlotRange, Start: start, End: tail}, nil
	}
	return bad()
}

// ValidateTimeSlot reports whether s is a well-formed time-slot expression.
func ValidateTimeSlot(s string) error {
	_, err := ParseTimeSlot(s)
	return err
}

// isClock reports whether s is exactly four ASCII digits.
func isClock(s string) bool {
	return len(s) == 4 && isAllDigits(s)
}
