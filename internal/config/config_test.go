package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.Equal(t, 10*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, "none", cfg.CalendarDriver)
	assert.Equal(t, "@every 1h", cfg.ReconcileSchedule)
	assert.Empty(t, cfg.AdminIDs)
}

func TestLoad_AdminIDs(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("ADMIN_IDS", "10,20")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsAdmin(20))
	assert.False(t, cfg.IsAdmin(30))
}

func TestLoad_RequiresToken(t *testing.T) {
	// t.Setenv restores the variable after the test.
	t.Setenv("BOT_TOKEN", "")
	require.NoError(t, os.Unsetenv("BOT_TOKEN"))

	_, err := Load()
	require.Error(t, err)
}
