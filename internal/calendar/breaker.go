package calendar

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/ykvlv/freecron-bot/internal/fanout"
)

// BreakerConfig controls when the breaker opens.
type BreakerConfig struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
	CallTimeout         time.Duration
}

// Breaker stops calling a failing backend for a while. It never retries.
type Breaker struct {
	next    fanout.CalendarSync
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
}

// NewBreaker wraps next.
func NewBreaker(next fanout.CalendarSync, cfg BreakerConfig, log *zap.Logger) *Breaker {
	if log == nil {
		log = zap.NewNop()
	}
	failures := cfg.ConsecutiveFailures
	if failures == 0 {
		failures = 5
	}
	openTimeout := cfg.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = time.Minute
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "calendar",
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &Breaker{next: next, cb: cb, timeout: cfg.CallTimeout}
}

// CreateEvent calls the wrapped backend unless the breaker is open.
func (b *Breaker) CreateEvent(ctx context.Context, ev fanout.CalendarEvent) (string, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.CreateEvent(ctx, ev)
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

// State reports the breaker state for health output.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
