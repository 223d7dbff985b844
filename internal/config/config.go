package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken string `envconfig:"BOT_TOKEN" required:"true"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`  // debug|info|warn|error
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"` // healthz

	StoreDriver string `envconfig:"STORE_DRIVER" default:"sqlite"` // sqlite|file
	DBPath      string `envconfig:"DB_PATH" default:"./data/freecron.db"`
	DataPath    string `envconfig:"DATA_PATH" default:"./data/user_data.json"`

	// AdminIDs always hold the admin capability, in addition to group admins.
	AdminIDs       []int64 `envconfig:"ADMIN_IDS"`
	AnnounceChatID int64   `envconfig:"ANNOUNCE_CHAT_ID"` // 0 = chat the command came from

	NotifyTimeout    time.Duration `envconfig:"NOTIFY_TIMEOUT" default:"10s"`
	NotifyRatePerSec int           `envconfig:"NOTIFY_RATE_PER_SEC" default:"20"`

	CalendarDriver          string        `envconfig:"CALENDAR_DRIVER" default:"none"` // none|ics|google
	CalendarICSDir          string        `envconfig:"CALENDAR_ICS_DIR" default:"./data/events"`
	GoogleCredentialsFile   string        `envconfig:"GOOGLE_CREDENTIALS_FILE"`
	GoogleCalendarID        string        `envconfig:"GOOGLE_CALENDAR_ID" default:"primary"`
	CalendarTimeout         time.Duration `envconfig:"CALENDAR_TIMEOUT" default:"15s"`
	CalendarBreakerFailures uint32        `envconfig:"CALENDAR_BREAKER_FAILURES" default:"5"`

	DirectoryPath     string `envconfig:"DIRECTORY_PATH" default:"./data/directory.yaml"`
	ReconcileSchedule string `envconfig:"RECONCILE_SCHEDULE" default:"@every 1h"`
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// IsAdmin reports whether id is listed in ADMIN_IDS.
func (c Config) IsAdmin(id int64) bool {
	for _, a := range c.AdminIDs {
		if a == id {
			return true
		}
	}
	return false
}
