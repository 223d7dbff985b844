// Package fanout delivers a newly created event to its audience: direct
// notifications, one broadcast announcement and a calendar entry.
package fanout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ykvlv/freecron-bot/internal/domain"
)

// DirectNotifier sends a private message to one member.
type DirectNotifier interface {
	Send(ctx context.Context, to domain.UserID, text string) error
}

// Broadcaster posts a message to the shared channel.
type Broadcaster interface {
	Announce(ctx context.Context, text string) error
}

// CalendarEvent is what gets written to the external calendar.
type CalendarEvent struct {
	ID        string
	Title     string
	Start     time.Time
	End       time.Time
	TimeZone  string // IANA name
	Attendees []string
	Organizer string
}

// CalendarSync creates an event and returns a reference such as a link.
type CalendarSync interface {
	CreateEvent(ctx context.Context, ev CalendarEvent) (string, error)
}

// IdentityDirectory maps members to email addresses.
type IdentityDirectory interface {
	EmailFor(id domain.UserID) (string, bool)
}

// Config tunes delivery.
type Config struct {
	// NotifyTimeout bounds each direct notification.
	NotifyTimeout time.Duration
	// RatePerSec paces direct notifications. Zero disables pacing.
	RatePerSec int
	// Mention renders a recipient in the announcement.
	Mention func(domain.UserID) string
	// Escape is applied to free text in the announcement, for broadcasters
	// that send markup.
	Escape func(string) string
	// Now is used to pick the event's year.
	Now func() time.Time
}

// Engine dispatches events. It is safe for concurrent use.
type Engine struct {
	notifier  DirectNotifier
	broadcast Broadcaster
	calendar  CalendarSync
	directory IdentityDirectory
	log       *zap.Logger

	timeout time.Duration
	limiter *rate.Limiter
	mention func(domain.UserID) string
	escape  func(string) string
	now     func() time.Time
}

// New creates an Engine. calendar and directory may be nil.
func New(cfg Config, notifier DirectNotifier, broadcast Broadcaster, calendar CalendarSync, directory IdentityDirectory, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		notifier:  notifier,
		broadcast: broadcast,
		calendar:  calendar,
		directory: directory,
		log:       log,
		timeout:   cfg.NotifyTimeout,
		mention:   cfg.Mention,
		escape:    cfg.Escape,
		now:       cfg.Now,
	}
	if e.timeout <= 0 {
		e.timeout = 10 * time.Second
	}
	if cfg.RatePerSec > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec)
	}
	if e.mention == nil {
		e.mention = func(id domain.UserID) string { return fmt.Sprintf("<@%d>", id) }
	}
	if e.escape == nil {
		e.escape = func(s string) string { return s }
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Request describes one event to dispatch.
type Request struct {
	Organizer     *domain.Profile
	OrganizerName string
	Entry         domain.Entry
	// Profiles is every known profile; the audience is resolved from it.
	Profiles []*domain.Profile
	// Announce overrides the engine's Broadcaster for this request.
	Announce Broadcaster
}

// Delivery is the outcome of one direct notification.
type Delivery struct {
	Recipient domain.UserID
	Err       error
}

// Report summarizes a dispatch. Failures are recorded, not returned.
type Report struct {
	Recipients   []domain.UserID
	Deliveries   []Delivery
	Announcement string
	AnnounceErr  error
	CalendarRef  string
	CalendarErr  error
}

// Failed returns the recipients whose notification failed.
func (r Report) Failed() []domain.UserID {
	var out []domain.UserID
	for _, d := range r.Deliveries {
		if d.Err != nil {
			out = append(out, d.Recipient)
		}
	}
	return out
}

// Dispatch resolves the audience of req.Entry and runs every delivery step.
// A failing step never prevents the following ones.
func (e *Engine) Dispatch(ctx context.Context, req Request) Report {
	var rep Report
	rep.Recipients = domain.ResolveAudience(req.Profiles, domain.ParseAudience(req.Entry.Tags))

	log := e.log.With(
		zap.String("entry_id", req.Entry.ID),
		zap.Int("recipients", len(rep.Recipients)),
	)
	if req.Organizer != nil {
		log = log.With(zap.Int64("organizer", int64(req.Organizer.ID)))
	}

	tz := domain.DefaultTimezone
	if req.Organizer != nil {
		tz = req.Organizer.Timezone
	}
	when := describeStart(req.Entry, tz)

	rep.Deliveries = e.notifyAll(ctx, rep.Recipients,
		fmt.Sprintf("You have been invited to an event: %s Start Time: %s", req.Entry.Note, when))
	for _, d := range rep.Deliveries {
		if d.Err != nil {
			log.Warn("direct notification failed", zap.Int64("recipient", int64(d.Recipient)), zap.Error(d.Err))
		}
	}

	rep.Announcement = e.announcement(req, when, rep.Recipients)
	announcer := req.Announce
	if announcer == nil {
		announcer = e.broadcast
	}
	if announcer != nil {
		if err := announcer.Announce(ctx, rep.Announcement); err != nil {
			rep.AnnounceErr = err
			log.Warn("announcement failed", zap.Error(err))
		}
	}

	rep.CalendarRef, rep.CalendarErr = e.syncCalendar(ctx, req, tz, rep.Recipients)
	if rep.CalendarErr != nil {
		log.Warn("calendar sync failed", zap.Error(rep.CalendarErr))
	} else if rep.CalendarRef != "" {
		log.Info("calendar event created", zap.String("ref", rep.CalendarRef))
	}
	return rep
}

// notifyAll sends text to every recipient concurrently and returns one
// Delivery per recipient in input order.
func (e *Engine) notifyAll(ctx context.Context, recipients []domain.UserID, text string) []Delivery {
	out := make([]Delivery, len(recipients))
	var g errgroup.Group
	for i, id := range recipients {
		out[i].Recipient = id
		g.Go(func() error {
			out[i].Err = e.notifyOne(ctx, id, text)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// notifyOne gives up after the configured timeout even if the notifier
// ignores its context. Waiting for the rate limiter does not count against
// that timeout.
func (e *Engine) notifyOne(ctx context.Context, to domain.UserID, text string) error {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %d: %w", domain.ErrDeliveryFailed, to, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- e.notifier.Send(ctx, to, text) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: %d: %w", domain.ErrDeliveryFailed, to, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %d: %w", domain.ErrDeliveryFailed, to, ctx.Err())
	}
}

func (e *Engine) announcement(req Request, when string, recipients []domain.UserID) string {
	mentions := make([]string, 0, len(recipients))
	for _, id := range recipients {
		mentions = append(mentions, e.mention(id))
	}
	name := e.escape(req.OrganizerName)
	if name == "" && req.Organizer != nil {
		name = e.mention(req.Organizer.ID)
	}
	return fmt.Sprintf("New event created by %s: %s Start Time: %s.\nInvited: %s",
		name, e.escape(req.Entry.Note), e.escape(when), strings.Join(mentions, ", "))
}

func (e *Engine) syncCalendar(ctx context.Context, req Request, tz string, recipients []domain.UserID) (string, error) {
	if e.calendar == nil {
		return "", nil
	}
	loc, err := domain.LoadLocation(tz)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrSyncFailed, err)
	}
	start, end, err := domain.EventWindow(req.Entry, loc, e.now())
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrSyncFailed, err)
	}

	ev := CalendarEvent{
		ID:       req.Entry.ID,
		Title:    req.Entry.Note,
		Start:    start,
		End:      end,
		TimeZone: domain.IANAName(tz),
	}
	if e.directory != nil {
		for _, id := range recipients {
			if email, ok := e.directory.EmailFor(id); ok {
				ev.Attendees = append(ev.Attendees, email)
			}
		}
		if req.Organizer != nil {
			ev.Organizer, _ = e.directory.EmailFor(req.Organizer.ID)
		}
	}

	ref, err := e.calendar.CreateEvent(ctx, ev)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrSyncFailed, err)
	}
	return ref, nil
}

func describeStart(e domain.Entry, tz string) string {
	return fmt.Sprintf("%s %s/%s %s", domain.FormatClock(e.TimeSlot), e.Month, e.Day, tz)
}
