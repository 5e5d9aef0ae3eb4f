// Package store is the persistence boundary: events, badge/panel templates
// and participant records in SQLite. Templates are stored as their JSON
// export format, so the database, file export and file import all share one
// codec and a template round-trips unchanged.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"credential-service/internal/layout"
	"credential-service/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned for lookups of rows that do not exist. Callers
// surface it as a recoverable condition, never a crash.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			custom_fields TEXT NOT NULL DEFAULT '[]',
			created_at    TIMESTAMP NOT NULL,
			updated_at    TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS templates (
			id         TEXT PRIMARY KEY,
			event_id   TEXT NOT NULL,
			name       TEXT NOT NULL,
			document   TEXT NOT NULL,
			is_default INTEGER NOT NULL DEFAULT 0,
			created_by TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_templates_event ON templates(event_id)`,
		`CREATE TABLE IF NOT EXISTS participants (
			id         TEXT PRIMARY KEY,
			event_id   TEXT NOT NULL,
			fields     TEXT NOT NULL,
			status     TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_participants_event ON participants(event_id)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ============ EVENTS ============

func (s *Store) CreateEvent(e *models.Event) (string, error) {
	if e.ID == "" {
		e.ID = layout.NewID()
	}
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now

	fields, err := json.Marshal(e.CustomFields)
	if err != nil {
		return "", fmt.Errorf("marshal custom fields: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO events (id, name, custom_fields, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Name, string(fields), e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}
	return e.ID, nil
}

func (s *Store) GetEvent(id string) (*models.Event, error) {
	var e models.Event
	var fields string
	err := s.db.QueryRow(
		`SELECT id, name, custom_fields, created_at, updated_at FROM events WHERE id = ?`, id,
	).Scan(&e.ID, &e.Name, &fields, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select event: %w", err)
	}
	if err := json.Unmarshal([]byte(fields), &e.CustomFields); err != nil {
		return nil, fmt.Errorf("decode custom fields: %w", err)
	}
	return &e, nil
}

// BindableFields lists the field names the editor's binding dropdown offers
// for an event: the standard participant fields plus the event's custom ones.
func (s *Store) BindableFields(eventID string) ([]string, error) {
	e, err := s.GetEvent(eventID)
	if err != nil {
		return nil, err
	}
	return append(append([]string{}, layout.StandardFields...), e.CustomFields...), nil
}
