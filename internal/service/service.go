// Package service implements the member commands on top of the entry store
// and the event fan-out engine. It knows nothing about the chat platform.
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ykvlv/freecron-bot/internal/domain"
	"github.com/ykvlv/freecron-bot/internal/fanout"
	"github.com/ykvlv/freecron-bot/internal/state"
)

// Actor is the member issuing a command.
type Actor struct {
	ID   domain.UserID
	Name string
	Caps domain.Capabilities
}

// Dispatcher delivers an event to its audience.
type Dispatcher interface {
	Dispatch(ctx context.Context, req fanout.Request) fanout.Report
}

// Service runs commands. Each call completes its state change, including
// the save, before returning.
type Service struct {
	store    *state.Store
	dispatch Dispatcher
	log      *zap.Logger
}

// New creates a Service.
func New(store *state.Store, dispatch Dispatcher, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, dispatch: dispatch, log: log}
}

// SetConfig sets the actor's timezone and off-limit windows.
func (s *Service) SetConfig(ctx context.Context, a Actor, timezone, weekdays, weekends string) (*domain.Profile, error) {
	p, err := s.store.Configure(ctx, a.ID, timezone, weekdays, weekends)
	if err != nil {
		return nil, err
	}
	s.log.Info("config updated", zap.Int64("user_id", int64(a.ID)), zap.String("timezone", p.Timezone))
	return p, nil
}

// AddTag adds a tag to the actor's profile.
func (s *Service) AddTag(ctx context.Context, a Actor, tag string) (domain.TagResult, error) {
	return s.store.AddTag(ctx, a.ID, tag, a.Caps)
}

// RemoveTag removes a tag from the actor's profile. Removing "cron" purges
// the profile; callers must warn the member first.
func (s *Service) RemoveTag(ctx context.Context, a Actor, tag string) (domain.TagResult, error) {
	return s.store.RemoveTag(ctx, a.ID, tag, a.Caps)
}

// AddEntryResult is the outcome of AddEntry. Report is set for events.
type AddEntryResult struct {
	Entry  domain.Entry
	Report *fanout.Report
}

// AddEntry validates and stores an entry. Events are then dispatched; a
// dispatch problem never undoes the stored entry.
func (s *Service) AddEntry(ctx context.Context, a Actor, raw domain.RawEntry, announce fanout.Broadcaster) (AddEntryResult, error) {
	actor, _ := s.store.Profile(a.ID)

	e, err := domain.ValidateEntry(raw, actor)
	if err != nil {
		return AddEntryResult{}, err
	}
	if err := s.store.AddEntry(ctx, a.ID, e); err != nil {
		return AddEntryResult{}, err
	}
	s.log.Info("entry added",
		zap.Int64("user_id", int64(a.ID)),
		zap.String("entry_id", e.ID),
		zap.String("action", string(e.Action)),
	)

	res := AddEntryResult{Entry: e}
	if !e.IsEvent() || s.dispatch == nil {
		return res, nil
	}

	if organizer, ok := s.store.Profile(a.ID); ok {
		actor = organizer
	}
	rep := s.dispatch.Dispatch(ctx, fanout.Request{
		Organizer:     actor,
		OrganizerName: a.Name,
		Entry:         e,
		Profiles:      s.store.Profiles(),
		Announce:      announce,
	})
	res.Report = &rep
	return res, nil
}

// Entries lists the actor's entries.
func (s *Service) Entries(a Actor) []domain.Entry {
	return s.store.Entries(a.ID)
}

// Profile returns the actor's profile.
func (s *Service) Profile(a Actor) (*domain.Profile, bool) {
	return s.store.Profile(a.ID)
}

// Reconcile prunes profiles that lost the cron tag.
func (s *Service) Reconcile(ctx context.Context) (int, error) {
	return s.store.Reconcile(ctx)
}
