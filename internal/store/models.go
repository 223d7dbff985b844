package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ykvlv/freecron-bot/internal/domain"
)

// Entry timestamps are stored as Unix nanoseconds so both drivers keep the
// same precision.
func toUnixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixNano()
}

func fromUnixNano(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns).UTC()
}

// normalize fills nil maps and profile IDs after decoding and checks the version.
func normalize(s *Snapshot) error {
	if s.Version > SchemaVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, s.Version)
	}
	s.Version = SchemaVersion
	if s.Config == nil {
		s.Config = make(map[domain.UserID]*domain.Profile)
	}
	if s.Crons == nil {
		s.Crons = make(map[domain.UserID][]domain.Entry)
	}
	for id, p := range s.Config {
		if p == nil {
			delete(s.Config, id)
			continue
		}
		p.ID = id
	}
	// Documents written before entries carried IDs get fresh ones.
	for _, entries := range s.Crons {
		for i := range entries {
			if entries[i].ID == "" {
				entries[i].ID = uuid.NewString()
			}
		}
	}
	return nil
}
