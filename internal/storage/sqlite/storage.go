// Package sqlite provides a SQLite-backed notification store.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cristianoliveira/appfeed/internal/domain"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notifications (
	id          TEXT NOT NULL,
	account     TEXT NOT NULL DEFAULT '',
	app_domain  TEXT NOT NULL,
	type        TEXT NOT NULL DEFAULT '',
	title       TEXT NOT NULL DEFAULT '',
	body        TEXT NOT NULL DEFAULT '',
	url         TEXT NOT NULL DEFAULT '',
	sent_at     INTEGER NOT NULL,
	is_read     INTEGER NOT NULL DEFAULT 0,
	read_at     TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL,
	PRIMARY KEY (account, app_domain, id)
);

CREATE INDEX IF NOT EXISTS idx_notifications_feed
	ON notifications (account, app_domain, sent_at DESC, id DESC);

CREATE INDEX IF NOT EXISTS idx_notifications_read_at
	ON notifications (is_read, read_at);

CREATE TABLE IF NOT EXISTS subscriptions (
	account     TEXT NOT NULL DEFAULT '',
	app_domain  TEXT NOT NULL,
	name        TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	icons       TEXT NOT NULL DEFAULT '[]',
	scope       TEXT NOT NULL DEFAULT '{}',
	updated_at  TEXT NOT NULL,
	PRIMARY KEY (account, app_domain)
);
`

const timestampLayout = "2006-01-02T15:04:05Z"

// SQLiteStorage stores notifications and subscriptions in a SQLite database.
type SQLiteStorage struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ domain.FeedBackend = (*SQLiteStorage)(nil)
)

// NewSQLiteStorage creates a SQLite-backed storage at the provided path.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("sqlite storage: db path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite storage: create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite storage: open db: %w", err)
	}

	storage := &SQLiteStorage{db: db, now: time.Now}
	if err := storage.init(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return storage, nil
}

// Close closes the underlying SQLite connection.
func (s *SQLiteStorage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStorage) init() error {
	if _, err := s.db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return fmt.Errorf("sqlite storage: set busy timeout: %w", err)
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("sqlite storage: create schema: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) utcNow() string {
	return s.now().UTC().Format(timestampLayout)
}
