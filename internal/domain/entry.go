package domain

import (
	"strings"
	"time"
)

// Action is the kind of a stored entry.
type Action string

const (
	ActionAvailable   Action = "A"
	ActionUnavailable Action = "N"
	ActionRepeating   Action = "R"
	ActionEvent       Action = "K"
)

// ParseAction accepts A, N, R or K in any case.
func ParseAction(s string) (Action, bool) {
	switch a := Action(strings.ToUpper(strings.TrimSpace(s))); a {
	case ActionAvailable, ActionUnavailable, ActionRepeating, ActionEvent:
		return a, true
	}
	return "", false
}

// Label is a human-readable name for the action.
func (a Action) Label() string {
	switch a {
	case ActionAvailable:
		return "available"
	case ActionUnavailable:
		return "not available"
	case ActionRepeating:
		return "repeating"
	case ActionEvent:
		return "event"
	}
	return string(a)
}

// Entry is an immutable cron (A/N/R) or kron (K) statement owned by a profile.
type Entry struct {
	ID        string    `json:"id"`
	Action    Action    `json:"action"`
	Month     string    `json:"month"`
	Day       string    `json:"day"`
	TimeSlot  string    `json:"time_slot"`
	Note      string    `json:"note"`
	Tags      string    `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

// IsEvent reports whether the entry is a K entry.
func (e Entry) IsEvent() bool { return e.Action == ActionEvent }

// RawEntry carries the unvalidated fields of an entry submission.
type RawEntry struct {
	Action   string
	Month    string
	Day      string
	TimeSlot string
	Note     string
	Tags     string
}
