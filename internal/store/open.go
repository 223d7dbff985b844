package store

import (
	"context"
	"errors"
	"strings"
)

// Open returns the Persistence selected by driver ("sqlite" or "file").
func Open(ctx context.Context, driver, dbPath, docPath string) (Persistence, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		return OpenSQLite(ctx, dbPath)
	case "file", "json":
		return OpenFile(docPath)
	default:
		return nil, errors.New("unknown store driver: " + driver)
	}
}
