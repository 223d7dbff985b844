package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileRepo implements Persistence as a single JSON document:
//
//	{"version": 1, "config": {"<id>": {...}}, "crons": {"<id>": [...]}}
//
// Writes go to a temp file that is renamed over the document.
type FileRepo struct {
	path string
	mu   sync.Mutex
}

// OpenFile returns a repository backed by the document at path. The file is
// not touched until Load or Save.
func OpenFile(path string) (*FileRepo, error) {
	if path == "" {
		return nil, errors.New("store: file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &FileRepo{path: path}, nil
}

// Load decodes the document. A missing file yields ErrNotFound.
func (r *FileRepo) Load(ctx context.Context) (Snapshot, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return Snapshot{}, err
	}
	if err := normalize(&snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Save writes s atomically.
func (r *FileRepo) Save(ctx context.Context, s Snapshot) error {
	_ = ctx
	s.Version = SchemaVersion

	r.mu.Lock()
	defer r.mu.Unlock()

	tmp := r.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

// Close is a no-op; the file is opened per call.
func (r *FileRepo) Close() error { return nil }
