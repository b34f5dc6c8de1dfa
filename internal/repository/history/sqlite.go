package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/oshokin/security-zone/internal/domain/zone"
)

const (
	// DefaultLimit is the number of entries returned when no limit is given.
	DefaultLimit = 50
	// MaxLimit caps the number of entries returned at once.
	MaxLimit = 200

	// dirPermissions is the permission mode for the database directory.
	dirPermissions = 0o750

	// busyTimeoutMillis is how long SQLite waits for a lock.
	busyTimeoutMillis = 5000

	// connectionTimeout is the timeout for verifying database connectivity.
	connectionTimeout = 5 * time.Second

	// timeLayout is fixed width so created_at sorts as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// schema creates the events table on first use.
const schema = `
CREATE TABLE IF NOT EXISTS zone_events (
	id         TEXT PRIMARY KEY,
	zone       TEXT NOT NULL,
	output     TEXT NOT NULL,
	value      INTEGER NOT NULL,
	source     TEXT NOT NULL,
	phase      TEXT NOT NULL,
	actor      TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_zone_events_created_at ON zone_events (zone, created_at DESC);
`

// errEventIDRequired is returned when an event without id is recorded.
var errEventIDRequired = errors.New("event id is required")

// Repository stores zone events in SQLite.
type Repository struct {
	db *sql.DB
}

// Open creates the database file if needed, applies the schema and verifies the connection.
func Open(ctx context.Context, path string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL", path, busyTimeoutMillis)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	if err = db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err = db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Repository{db: db}, nil
}

// Name identifies the publisher in logs.
func (r *Repository) Name() string {
	return "history"
}

// Publish records the event.
func (r *Repository) Publish(ctx context.Context, event *zone.Event) error {
	if event.ID == "" {
		return errEventIDRequired
	}

	actor := ""
	if event.Actor != nil {
		actor = event.Actor.String()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO zone_events (id, zone, output, value, source, phase, actor, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.Zone,
		event.Output.String(),
		event.Value(),
		string(event.Source),
		event.Phase,
		actor,
		event.At.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting zone event: %w", err)
	}

	return nil
}

// Entry is one stored event.
type Entry struct {
	ID     string    `json:"id"`
	Zone   string    `json:"zone"`
	Output string    `json:"output"`
	On     bool      `json:"on"`
	Source string    `json:"source"`
	Phase  string    `json:"phase"`
	Actor  string    `json:"actor,omitempty"`
	At     time.Time `json:"at"`
}

// Recent returns the newest events of a zone, newest first.
// limit defaults to DefaultLimit and is capped at MaxLimit.
func (r *Repository) Recent(ctx context.Context, zoneName string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	if limit > MaxLimit {
		limit = MaxLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, zone, output, value, source, phase, actor, created_at
		 FROM zone_events
		 WHERE zone = ?
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		zoneName,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying zone events: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	entries := make([]Entry, 0, limit)

	for rows.Next() {
		var (
			entry     Entry
			value     int
			createdAt string
		)

		if err := rows.Scan(
			&entry.ID, &entry.Zone, &entry.Output, &value, &entry.Source, &entry.Phase, &entry.Actor, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scanning zone event: %w", err)
		}

		entry.On = value == 1

		entry.At, err = time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing event time: %w", err)
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating zone events: %w", err)
	}

	return entries, nil
}

// Close closes the database.
func (r *Repository) Close() error {
	return r.db.Close()
}
