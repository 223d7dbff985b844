// Package calendar provides the calendar backends used when an event is
// created: ICS invitation files, Google Calendar, and a circuit breaker that
// wraps either of them.
package calendar
