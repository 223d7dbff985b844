package calendar

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/ykvlv/freecron-bot/internal/fanout"
)

// Options selects and configures a backend.
type Options struct {
	Driver          string // none|ics|google
	ICSDir          string
	CredentialsFile string
	CalendarID      string
	Breaker         BreakerConfig
}

// Open returns the configured backend wrapped in a Breaker, or nil for "none".
func Open(ctx context.Context, opts Options, log *zap.Logger) (fanout.CalendarSync, error) {
	var (
		backend fanout.CalendarSync
		err     error
	)
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", "none":
		return nil, nil
	case "ics":
		backend, err = NewICSWriter(opts.ICSDir)
	case "google":
		backend, err = NewGoogle(ctx, opts.CredentialsFile, opts.CalendarID)
	default:
		return nil, errors.New("unknown calendar driver: " + opts.Driver)
	}
	if err != nil {
		return nil, err
	}
	return NewBreaker(backend, opts.Breaker, log), nil
}
