package fanout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ykvlv/freecron-bot/internal/domain"
)

type fakeNotifier struct {
	mu    sync.Mutex
	sent  map[domain.UserID]string
	fail  map[domain.UserID]error
	block map[domain.UserID]bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{sent: map[domain.UserID]string{}, fail: map[domain.UserID]error{}, block: map[domain.UserID]bool{}}
}

func (f *fakeNotifier) Send(_ context.Context, to domain.UserID, text string) error {
	f.mu.Lock()
	blocked, err := f.block[to], f.fail[to]
	f.mu.Unlock()
	if blocked {
		// Ignores its context on purpose.
		select {}
	}
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.sent[to] = text
	f.mu.Unlock()
	return nil
}

type fakeBroadcaster struct{ texts []string }

func (f *fakeBroadcaster) Announce(_ context.Context, text string) error {
	f.texts = append(f.texts, text)
	return nil
}

type fakeCalendar struct {
	events []CalendarEvent
	err    error
}

func (f *fakeCalendar) CreateEvent(_ context.Context, ev CalendarEvent) (string, error) {
	f.events = append(f.events, ev)
	if f.err != nil {
		return "", f.err
	}
	return "https://calendar.example/" + ev.ID, nil
}

type mapDirectory map[domain.UserID]string

func (m mapDirectory) EmailFor(id domain.UserID) (string, bool) {
	e, ok := m[id]
	return e, ok
}

type fixture struct {
	notifier  *fakeNotifier
	broadcast *fakeBroadcaster
	calendar  *fakeCalendar
	engine    *Engine
}

func newFixture(timeout time.Duration) *fixture {
	f := &fixture{
		notifier:  newFakeNotifier(),
		broadcast: &fakeBroadcaster{},
		calendar:  &fakeCalendar{},
	}
	dir := mapDirectory{1: "a@example.com", 2: "b@example.com", 100: "org@example.com"}
	f.engine = New(Config{
		NotifyTimeout: timeout,
		Mention:       func(id domain.UserID) string { return fmt.Sprintf("@%d", id) },
		Now:           func() time.Time { return time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC) },
	}, f.notifier, f.broadcast, f.calendar, dir, zap.NewNop())
	return f
}

func organizer() *domain.Profile {
	return &domain.Profile{ID: 100, Timezone: "PST", Tags: []string{"cron", "kord"}}
}

func meeting() domain.Entry {
	return domain.Entry{ID: "ev1", Action: domain.ActionEvent, Month: "04", Day: "15", TimeSlot: "0900", Note: "Meeting.", Tags: "(team)"}
}

func TestDispatch_EmptyAudienceStillBroadcastsAndSyncs(t *testing.T) {
	f := newFixture(time.Second)
	org := organizer()

	rep := f.engine.Dispatch(context.Background(), Request{
		Organizer: org, OrganizerName: "Org", Entry: meeting(), Profiles: []*domain.Profile{org},
	})

	assert.Empty(t, rep.Recipients)
	assert.Empty(t, rep.Deliveries)
	require.Len(t, f.broadcast.texts, 1)
	assert.Contains(t, f.broadcast.texts[0], "New event created by Org: Meeting.")
	assert.Contains(t, f.broadcast.texts[0], "Invited: ")
	require.Len(t, f.calendar.events, 1)
	assert.Empty(t, f.calendar.events[0].Attendees)
	assert.Equal(t, "org@example.com", f.calendar.events[0].Organizer)
	assert.Equal(t, "https://calendar.example/ev1", rep.CalendarRef)
	assert.NoError(t, rep.CalendarErr)
}

func TestDispatch_OnlyMatchingTagsReceive(t *testing.T) {
	f := newFixture(time.Second)
	org := organizer()
	a := &domain.Profile{ID: 1, Tags: []string{"cron", "team"}}
	b := &domain.Profile{ID: 2, Tags: []string{"cron"}}

	rep := f.engine.Dispatch(context.Background(), Request{
		Organizer: org, Entry: meeting(), Profiles: []*domain.Profile{org, a, b},
	})

	assert.Equal(t, []domain.UserID{1}, rep.Recipients)
	assert.Contains(t, f.notifier.sent, domain.UserID(1))
	assert.NotContains(t, f.notifier.sent, domain.UserID(2))
	assert.NotContains(t, f.notifier.sent, domain.UserID(100))
	assert.Contains(t, f.notifier.sent[1], "Meeting.")
	assert.Contains(t, f.notifier.sent[1], "09:00")
	assert.Equal(t, []string{"a@example.com"}, f.calendar.events[0].Attendees)
}

func TestDispatch_FailedNotificationDoesNotBlockTheRest(t *testing.T) {
	f := newFixture(time.Second)
	f.notifier.fail[2] = errors.New("user blocked the bot")
	org := organizer()
	a := &domain.Profile{ID: 1, Tags: []string{"cron", "team"}}
	b := &domain.Profile{ID: 2, Tags: []string{"cron", "team"}}

	rep := f.engine.Dispatch(context.Background(), Request{
		Organizer: org, Entry: meeting(), Profiles: []*domain.Profile{org, a, b},
	})

	assert.Equal(t, []domain.UserID{1, 2}, rep.Recipients)
	assert.Equal(t, []domain.UserID{2}, rep.Failed())
	for _, d := range rep.Deliveries {
		if d.Recipient == 2 {
			assert.ErrorIs(t, d.Err, domain.ErrDeliveryFailed)
		}
	}
	require.Len(t, f.broadcast.texts, 1)
	assert.Contains(t, f.broadcast.texts[0], "Invited: @1, @2")
	require.Len(t, f.calendar.events, 1)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, f.calendar.events[0].Attendees)
}

func TestDispatch_StuckRecipientTimesOut(t *testing.T) {
	f := newFixture(50 * time.Millisecond)
	f.notifier.block[1] = true
	org := organizer()
	a := &domain.Profile{ID: 1, Tags: []string{"cron", "team"}}
	b := &domain.Profile{ID: 2, Tags: []string{"cron", "team"}}

	start := time.Now()
	rep := f.engine.Dispatch(context.Background(), Request{
		Organizer: org, Entry: meeting(), Profiles: []*domain.Profile{org, a, b},
	})

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, []domain.UserID{1}, rep.Failed())
	assert.ErrorIs(t, rep.Deliveries[0].Err, context.DeadlineExceeded)
	assert.Len(t, f.broadcast.texts, 1)
	assert.Len(t, f.calendar.events, 1)
}

func TestDispatch_CalendarWindowUsesOrganizerZone(t *testing.T) {
	f := newFixture(time.Second)
	org := organizer()
	e := meeting()
	e.TimeSlot = "0930"

	f.engine.Dispatch(context.Background(), Request{Organizer: org, Entry: e})

	require.Len(t, f.calendar.events, 1)
	ev := f.calendar.events[0]
	assert.Equal(t, "America/Los_Angeles", ev.TimeZone)
	assert.Equal(t, "09:30", ev.Start.Format("15:04"))
	assert.Equal(t, "10:30", ev.End.Format("15:04"))
	assert.Equal(t, time.April, ev.Start.Month())
	assert.Equal(t, 2026, ev.Start.Year())
	assert.Equal(t, "Meeting.", ev.Title)
}

func TestDispatch_SyncFailureIsReported(t *testing.T) {
	f := newFixture(time.Second)
	f.calendar.err = errors.New("quota exceeded")

	rep := f.engine.Dispatch(context.Background(), Request{Organizer: organizer(), Entry: meeting()})

	require.ErrorIs(t, rep.CalendarErr, domain.ErrSyncFailed)
	assert.Empty(t, rep.CalendarRef)
	assert.Len(t, f.broadcast.texts, 1)
}

func TestDispatch_InvalidDateIsSyncFailure(t *testing.T) {
	f := newFixture(time.Second)
	e := meeting()
	e.Month = "13"

	rep := f.engine.Dispatch(context.Background(), Request{Organizer: organizer(), Entry: e})

	require.ErrorIs(t, rep.CalendarErr, domain.ErrSyncFailed)
	assert.ErrorIs(t, rep.CalendarErr, domain.ErrInvalidEventDate)
	assert.Empty(t, f.calendar.events)
}

func TestDispatch_RequestBroadcasterOverridesDefault(t *testing.T) {
	f := newFixture(time.Second)
	override := &fakeBroadcaster{}

	f.engine.Dispatch(context.Background(), Request{Organizer: organizer(), Entry: meeting(), Announce: override})

	assert.Empty(t, f.broadcast.texts)
	assert.Len(t, override.texts, 1)
}

func TestDispatch_PacingDoesNotEatTheSendTimeout(t *testing.T) {
	notifier := newFakeNotifier()
	engine := New(Config{
		NotifyTimeout: 200 * time.Millisecond,
		RatePerSec:    5,
		Now:           func() time.Time { return time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC) },
	}, notifier, &fakeBroadcaster{}, nil, nil, zap.NewNop())

	profiles := []*domain.Profile{organizer()}
	for id := domain.UserID(1); id <= 12; id++ {
		profiles = append(profiles, &domain.Profile{ID: id, Tags: []string{"cron", "team"}})
	}

	rep := engine.Dispatch(context.Background(), Request{Organizer: organizer(), Entry: meeting(), Profiles: profiles})

	require.Len(t, rep.Recipients, 12)
	assert.Empty(t, rep.Failed())
	assert.Len(t, notifier.sent, 12)
}
