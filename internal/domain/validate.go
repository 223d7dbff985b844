package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ValidateEntry checks a submission against the rules for its action and
// returns the normalized entry. actor is the submitting profile and may be
// nil for members without one. The first failing rule is returned.
func ValidateEntry(raw RawEntry, actor *Profile) (Entry, error) {
	action, ok := ParseAction(raw.Action)
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q (use A, N, R or K)", ErrInvalidAction, raw.Action)
	}

	if action == ActionEvent {
		if err := validateEvent(raw, actor); err != nil {
			return Entry{}, err
		}
	} else if err := ValidateTimeSlot(raw.TimeSlot); err != nil {
		return Entry{}, err
	}

	return Entry{
		ID:        uuid.NewString(),
		Action:    action,
		Month:     strings.TrimSpace(raw.Month),
		Day:       strings.TrimSpace(raw.Day),
		TimeSlot:  raw.TimeSlot,
		Note:      NormalizeNote(raw.Note),
		Tags:      strings.TrimSpace(raw.Tags),
		CreatedAt: time.Now().UTC(),
	}, nil
}

func validateEvent(raw RawEntry, actor *Profile) error {
	if !actor.HasTag(TagKord) {
		return fmt.Errorf("%w: the %q tag is required to create an event", ErrUnauthorized, TagKord)
	}
	if !isSingleValue(raw.Month) {
		return fmt.Errorf("%w: month %q must be a single value", ErrInvalidEventDate, raw.Month)
	}
	if !isSingleValue(raw.Day) {
		return fmt.Errorf("%w: day %q must be a single value", ErrInvalidEventDate, raw.Day)
	}
	if !isClock(raw.TimeSlot) {
		return fmt.Errorf("%w: %q is not HHMM", ErrInvalidEventTime, raw.TimeSlot)
	}
	if note := strings.TrimSpace(raw.Note); note == "" || note == "." {
		return fmt.Errorf("%w: note must hold the event title", ErrMissingTitle)
	}

	tags := strings.TrimSpace(raw.Tags)
	if tags == "" {
		return fmt.Errorf("%w: list invited tags as (tag1,tag2)", ErrMissingAudience)
	}
	if !strings.HasPrefix(tags, "(") || !strings.HasSuffix(tags, ")") {
		return fmt.Errorf("%w: %q must be in parentheses", ErrMalformedAudience, raw.Tags)
	}
	if len(ParseAudience(tags)) == 0 {
		return fmt.Errorf("%w: %q names no tags", ErrMalformedAudience, raw.Tags)
	}
	return nil
}

// NormalizeNote trims the note and makes sure it ends with a sentence
// terminator.
func NormalizeNote(note string) string {
	n := strings.TrimSpace(note)
	if strings.HasSuffix(n, ".") || strings.HasSuffix(n, "!") || strings.HasSuffix(n, "?") {
		return n
	}
	return n + "."
}

func isSingleValue(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && !strings.ContainsAny(s, ",-*")
}
