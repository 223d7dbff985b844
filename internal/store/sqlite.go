package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/ykvlv/freecron-bot/internal/domain"
)

const metaSchemaVersion = "schema_version"

// SQLiteRepo implements Persistence using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// Load reads every profile and entry. It returns ErrNotFound until the
// first Save.
func (r *SQLiteRepo) Load(ctx context.Context) (Snapshot, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, metaSchemaVersion).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, err
	}
	version, err := strconv.Atoi(raw)
	if err != nil {
		return Snapshot{}, fmt.Errorf("schema version %q: %w", raw, err)
	}

	snap := Snapshot{Version: version}
	if err := normalize(&snap); err != nil {
		return Snapshot{}, err
	}
	if err := r.loadProfiles(ctx, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("load profiles: %w", err)
	}
	if err := r.loadEntries(ctx, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("load entries: %w", err)
	}
	return snap, nil
}

func (r *SQLiteRepo) loadProfiles(ctx context.Context, snap *Snapshot) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, timezone, off_limit_weekdays, off_limit_weekends
		FROM profiles`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		p := &domain.Profile{}
		if err := rows.Scan(&p.ID, &p.Timezone, &p.OffLimitWeekdays, &p.OffLimitWeekends); err != nil {
			return err
		}
		snap.Config[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return err
	}

	tagRows, err := r.db.QueryContext(ctx, `
		SELECT user_id, tag FROM profile_tags
		ORDER BY user_id, position`)
	if err != nil {
		return err
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var (
			id  domain.UserID
			tag string
		)
		if err := tagRows.Scan(&id, &tag); err != nil {
			return err
		}
		if p, ok := snap.Config[id]; ok {
			p.Tags = append(p.Tags, tag)
		}
	}
	return tagRows.Err()
}

func (r *SQLiteRepo) loadEntries(ctx context.Context, snap *Snapshot) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, action, month, day, time_slot, note, tags, created_at
		FROM entries
		ORDER BY user_id, position`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e       domain.Entry
			id      domain.UserID
			action  string
			created int64
		)
		if err := rows.Scan(&e.ID, &id, &action, &e.Month, &e.Day, &e.TimeSlot, &e.Note, &e.Tags, &created); err != nil {
			return err
		}
		e.Action = domain.Action(action)
		e.CreatedAt = fromUnixNano(created)
		snap.Crons[id] = append(snap.Crons[id], e)
	}
	return rows.Err()
}

// Save replaces the stored state with s in a single transaction.
func (r *SQLiteRepo) Save(ctx context.Context, s Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := saveTx(ctx, tx, s); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func saveTx(ctx context.Context, tx *sql.Tx, s Snapshot) error {
	for _, stmt := range []string{
		`DELETE FROM entries`,
		`DELETE FROM profile_tags`,
		`DELETE FROM profiles`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	for id, p := range s.Config {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO profiles (user_id, timezone, off_limit_weekdays, off_limit_weekends)
			VALUES (?, ?, ?, ?)`,
			int64(id), p.Timezone, p.OffLimitWeekdays, p.OffLimitWeekends,
		); err != nil {
			return fmt.Errorf("insert profile %d: %w", id, err)
		}
		for pos, tag := range p.Tags {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO profile_tags (user_id, position, tag) VALUES (?, ?, ?)`,
				int64(id), pos, tag,
			); err != nil {
				return fmt.Errorf("insert tag %q for %d: %w", tag, id, err)
			}
		}
	}

	for id, entries := range s.Crons {
		for pos, e := range entries {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO entries (
					id, user_id, position, action, month, day, time_slot, note, tags, created_at
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				e.ID, int64(id), pos, string(e.Action), e.Month, e.Day, e.TimeSlot, e.Note, e.Tags, toUnixNano(e.CreatedAt),
			); err != nil {
				return fmt.Errorf("insert entry %s: %w", e.ID, err)
			}
		}
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		metaSchemaVersion, strconv.Itoa(SchemaVersion),
	)
	return err
}
