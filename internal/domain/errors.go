package domain

import "errors"

// Validation and authorization failures. Callers match them with errors.Is;
// the wrapped message names the field that failed.
var (
	ErrInvalidAction     = errors.New("invalid action")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidEventDate  = errors.New("invalid event date")
	ErrInvalidEventTime  = errors.New("invalid event time")
	ErrMissingTitle      = errors.New("missing event title")
	ErrMissingAudience   = errors.New("missing event audience")
	ErrMalformedAudience = errors.New("malformed event audience")
	ErrInvalidTimeFormat = errors.New("invalid time format")
	ErrInvalidTimezone   = errors.New("invalid timezone")
	ErrInvalidTag        = errors.New("invalid tag")
	ErrNotFound          = errors.New("not found")
)

// Fan-out failures. Both are reported to the organizer and never abort the
// surrounding event dispatch.
var (
	ErrDeliveryFailed = errors.New("delivery failed")
	ErrSyncFailed     = errors.New("calendar sync failed")
)
