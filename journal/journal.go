// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: journal/journal.go
// Summary: SQLite journal of launch and artwork outcomes.
//
// The journal is an operator-facing record of what the launcher did: every
// launch attempt and every artwork assignment, with the error text when the
// operation failed. It never stores registry entries.

package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp INTEGER NOT NULL,
	kind      TEXT NOT NULL,
	subject   TEXT NOT NULL,
	error     TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);
`

// Event is one recorded outcome.
type Event struct {
	ID        int64
	Timestamp time.Time
	Kind      string
	Subject   string
	Error     string
}

// Failed reports whether the event records a failure.
func (e Event) Failed() bool {
	return e.Error != ""
}

// Journal appends events to a SQLite database.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the journal database at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(2000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Journal{db: db, now: time.Now}, nil
}

// Record appends an event. cause is nil for successful operations.
func (j *Journal) Record(kind, subject string, cause error) error {
	errText := ""
	if cause != nil {
		errText = cause.Error()
	}
	_, err := j.db.Exec(
		"INSERT INTO events (timestamp, kind, subject, error) VALUES (?, ?, ?, ?)",
		j.now().UnixNano(), kind, subject, errText,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first. An empty kind matches
// every kind.
func (j *Journal) Recent(kind string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}

	var (
		rows *sql.Rows
		err  error
	)
	if kind == "" {
		rows, err = j.db.Query(
			"SELECT id, timestamp, kind, subject, error FROM events ORDER BY id DESC LIMIT ?",
			limit,
		)
	} else {
		rows, err = j.db.Query(
			"SELECT id, timestamp, kind, subject, error FROM events WHERE kind = ? ORDER BY id DESC LIMIT ?",
			kind, limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			ev Event
			ts int64
		)
		if err := rows.Scan(&ev.ID, &ts, &ev.Kind, &ev.Subject, &ev.Error); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Timestamp = time.Unix(0, ts)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}
