// Package state holds member profiles and their entries in memory and saves
// the whole state after every change.
package state

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/ykvlv/freecron-bot/internal/domain"
	"github.com/ykvlv/freecron-bot/internal/store"
)

// Store is the entry store. Each mutation is applied to a copy of the state,
// saved, and only then made visible; a failed save changes nothing.
type Store struct {
	persist store.Persistence
	log     *zap.Logger

	mu   sync.RWMutex
	snap store.Snapshot
}

// Open loads the saved state. If nothing was saved yet, an empty state is
// written immediately. Profiles without the cron tag are pruned.
func Open(ctx context.Context, persist store.Persistence, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	snap, err := persist.Load(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		snap = store.NewSnapshot()
		if err := persist.Save(ctx, snap); err != nil {
			return nil, fmt.Errorf("initialize store: %w", err)
		}
		log.Info("initialized empty store")
	case err != nil:
		return nil, fmt.Errorf("load store: %w", err)
	}

	s := &Store{persist: persist, log: log, snap: snap}
	if _, err := s.Reconcile(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Profile returns a copy of the profile for id.
func (s *Store) Profile(id domain.UserID) (*domain.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.snap.Config[id]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// Profiles returns copies of all profiles ordered by ID.
func (s *Store) Profiles() []*domain.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Profile, 0, len(s.snap.Config))
	for _, p := range s.snap.Config {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Entries returns a copy of id's entries in submission order.
func (s *Store) Entries(id domain.UserID) []domain.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Entry(nil), s.snap.Crons[id]...)
}

// Configure creates or updates id's timezone and off-limit windows.
func (s *Store) Configure(ctx context.Context, id domain.UserID, timezone, weekdays, weekends string) (*domain.Profile, error) {
	var out *domain.Profile
	err := s.update(ctx, func(next *store.Snapshot) (bool, error) {
		p := profileFor(next, id)
		if err := p.Configure(timezone, weekdays, weekends); err != nil {
			return false, err
		}
		out = p.Clone()
		return true, nil
	})
	return out, err
}

// AddTag adds tag to id's profile, creating the profile when needed.
func (s *Store) AddTag(ctx context.Context, id domain.UserID, tag string, caps domain.Capabilities) (domain.TagResult, error) {
	var res domain.TagResult
	err := s.update(ctx, func(next *store.Snapshot) (bool, error) {
		_, existed := next.Config[id]
		p := profileFor(next, id)
		r, err := domain.AddTag(p, tag, caps)
		if err != nil {
			return false, err
		}
		res = r
		return r == domain.TagAdded || !existed, nil
	})
	return res, err
}

// RemoveTag removes tag from id's profile. Removing cron deletes the profile
// and every entry it owns.
func (s *Store) RemoveTag(ctx context.Context, id domain.UserID, tag string, caps domain.Capabilities) (domain.TagResult, error) {
	var res domain.TagResult
	err := s.update(ctx, func(next *store.Snapshot) (bool, error) {
		p := next.Config[id]
		r, err := domain.RemoveTag(p, tag, caps)
		if err != nil {
			return false, err
		}
		if r == domain.TagCascadeDeleted {
			delete(next.Config, id)
			delete(next.Crons, id)
		}
		res = r
		return true, nil
	})
	if err == nil && res == domain.TagCascadeDeleted {
		s.log.Info("profile purged", zap.Int64("user_id", int64(id)))
	}
	return res, err
}

// AddEntry appends a validated entry to id's list, creating a default
// profile when the member has none.
func (s *Store) AddEntry(ctx context.Context, id domain.UserID, e domain.Entry) error {
	return s.update(ctx, func(next *store.Snapshot) (bool, error) {
		profileFor(next, id)
		next.Crons[id] = append(next.Crons[id], e)
		return true, nil
	})
}

// Reconcile drops profiles without the cron tag and entry lists without a
// profile. It returns the number of members removed.
func (s *Store) Reconcile(ctx context.Context) (int, error) {
	removed := 0
	err := s.update(ctx, func(next *store.Snapshot) (bool, error) {
		removed = 0
		for id, p := range next.Config {
			if !p.HasTag(domain.TagCron) {
				delete(next.Config, id)
				delete(next.Crons, id)
				removed++
			}
		}
		for id := range next.Crons {
			if _, ok := next.Config[id]; !ok {
				delete(next.Crons, id)
				removed++
			}
		}
		return removed > 0, nil
	})
	if err != nil {
		return 0, fmt.Errorf("reconcile: %w", err)
	}
	if removed > 0 {
		s.log.Info("reconciled store", zap.Int("removed", removed))
	}
	return removed, nil
}

// update runs fn on a copy of the state and commits it after a successful
// save. fn reports whether it changed anything.
func (s *Store) update(ctx context.Context, fn func(next *store.Snapshot) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := clone(s.snap)
	changed, err := fn(&next)
	if err != nil || !changed {
		return err
	}
	if err := s.persist.Save(ctx, next); err != nil {
		s.log.Error("save failed", zap.Error(err))
		return fmt.Errorf("save: %w", err)
	}
	s.snap = next
	return nil
}

func profileFor(snap *store.Snapshot, id domain.UserID) *domain.Profile {
	p, ok := snap.Config[id]
	if !ok {
		p = domain.NewProfile(id)
		snap.Config[id] = p
	}
	return p
}

func clone(s store.Snapshot) store.Snapshot {
	out := store.NewSnapshot()
	out.Version = s.Version
	for id, p := range s.Config {
		out.Config[id] = p.Clone()
	}
	for id, entries := range s.Crons {
		out.Crons[id] = append([]domain.Entry(nil), entries...)
	}
	return out
}
