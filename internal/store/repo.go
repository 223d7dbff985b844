package store

import (
	"context"
	"errors"

	"github.com/ykvlv/freecron-bot/internal/domain"
)

// SchemaVersion is the version written with every snapshot.
const SchemaVersion = 1

// ErrNotFound is returned by Load when nothing has been saved yet.
var ErrNotFound = errors.New("store: no saved data")

// ErrUnsupportedVersion is returned by Load for data written by a newer build.
var ErrUnsupportedVersion = errors.New("store: unsupported schema version")

// Snapshot is the whole persisted state: profiles under "config" and entry
// lists under "crons", both keyed by user.
type Snapshot struct {
	Version int                               `json:"version"`
	Config  map[domain.UserID]*domain.Profile `json:"config"`
	Crons   map[domain.UserID][]domain.Entry  `json:"crons"`
}

// NewSnapshot returns an empty snapshot at the current schema version.
func NewSnapshot() Snapshot {
	return Snapshot{
		Version: SchemaVersion,
		Config:  make(map[domain.UserID]*domain.Profile),
		Crons:   make(map[domain.UserID][]domain.Entry),
	}
}

// Persistence loads and saves the state as one unit.
type Persistence interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, s Snapshot) error
	Close() error
}
