package directory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ykvlv/freecron-bot/internal/domain"
)

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestOpen_LoadsEmails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "directory.yaml")
	write(t, path, "users:\n  1: a@example.com\n  2: ' b@example.com '\n  3: not-an-email\n")

	d, err := Open(path, zap.NewNop())
	require.NoError(t, err)

	email, ok := d.EmailFor(1)
	assert.True(t, ok)
	assert.Equal(t, "a@example.com", email)
	email, _ = d.EmailFor(2)
	assert.Equal(t, "b@example.com", email)
	_, ok = d.EmailFor(3)
	assert.False(t, ok)
	assert.Equal(t, 2, d.Len())
}

func TestOpen_MissingFileIsEmpty(t *testing.T) {
	d, err := Open(filepath.Join(t.TempDir(), "none.yaml"), zap.NewNop())
	require.NoError(t, err)
	assert.Zero(t, d.Len())
}

func TestReload_KeepsPreviousOnParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "directory.yaml")
	write(t, path, "users:\n  1: a@example.com\n")
	d, err := Open(path, zap.NewNop())
	require.NoError(t, err)

	write(t, path, "users: [unclosed\n")
	require.Error(t, d.Reload())
	_, ok := d.EmailFor(domain.UserID(1))
	assert.True(t, ok)
}

func TestWatch_PicksUpChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "directory.yaml")
	write(t, path, "users:\n  1: a@example.com\n")
	d, err := Open(path, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Watch(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	write(t, path, "users:\n  1: a@example.com\n  2: b@example.com\n")

	assert.Eventually(t, func() bool {
		_, ok := d.EmailFor(2)
		return ok
	}, 3*time.Second, 20*time.Millisecond)
}
