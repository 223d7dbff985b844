// Package directory maps members to email addresses for calendar invites.
//
// The mapping lives in a YAML file:
//
//	users:
//	  123456789: alice@example.com
//	  987654321: bob@example.com
//
// Watch reloads it whenever the file changes.
package directory

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ykvlv/freecron-bot/internal/domain"
)

type document struct {
	Users map[int64]string `yaml:"users"`
}

// File is an IdentityDirectory backed by a YAML file.
type File struct {
	path string
	log  *zap.Logger

	mu     sync.RWMutex
	emails map[domain.UserID]string
}

// Open loads path. A missing file yields an empty directory.
func Open(path string, log *zap.Logger) (*File, error) {
	if log == nil {
		log = zap.NewNop()
	}
	d := &File{path: path, log: log, emails: map[domain.UserID]string{}}
	if path == "" {
		return d, nil
	}
	if err := d.Reload(); err != nil {
		return nil, err
	}
	return d, nil
}

// EmailFor returns the email registered for id.
func (d *File) EmailFor(id domain.UserID) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.emails[id]
	return e, ok
}

// Len returns the number of known members.
func (d *File) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.emails)
}

// Reload re-reads the file. On error the previous mapping stays in place.
func (d *File) Reload() error {
	b, err := os.ReadFile(d.path)
	if errors.Is(err, fs.ErrNotExist) {
		d.log.Info("identity directory not found, starting empty", zap.String("path", d.path))
		d.swap(map[domain.UserID]string{})
		return nil
	}
	if err != nil {
		return err
	}

	var doc document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", d.path, err)
	}
	emails := make(map[domain.UserID]string, len(doc.Users))
	for id, email := range doc.Users {
		email = strings.TrimSpace(email)
		if email == "" || !strings.Contains(email, "@") {
			d.log.Warn("skipping invalid email", zap.Int64("user_id", id), zap.String("email", email))
			continue
		}
		emails[domain.UserID(id)] = email
	}
	d.swap(emails)
	d.log.Info("identity directory loaded", zap.Int("users", len(emails)))
	return nil
}

func (d *File) swap(m map[domain.UserID]string) {
	d.mu.Lock()
	d.emails = m
	d.mu.Unlock()
}

// Watch reloads the file on change until ctx is canceled. The parent
// directory is watched so editors that replace the file are handled.
func (d *File) Watch(ctx context.Context) error {
	if d.path == "" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(d.path)); err != nil {
		return err
	}
	target := filepath.Clean(d.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			if err := d.Reload(); err != nil {
				d.log.Warn("identity directory reload failed", zap.Error(err))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			d.log.Warn("identity directory watch error", zap.Error(err))
		}
	}
}
