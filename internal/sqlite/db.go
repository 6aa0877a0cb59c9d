package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations creates the schema. The process hosting this store may be
// torn down and recreated between geofence deliveries, so every decision the
// engine makes is read from and written back to these tables.
func (db *DB) RunMigrations() error {
	migration := `
-- Attendance sessions, one open row per location at most
CREATE TABLE IF NOT EXISTS tracking_sessions (
    id TEXT PRIMARY KEY,
    location_id TEXT NOT NULL,
    state TEXT NOT NULL CHECK(state IN ('active', 'pending_exit', 'completed')),
    clock_in TIMESTAMP NOT NULL,
    checkin_accuracy REAL,
    pending_exit_at TIMESTAMP,
    exit_accuracy REAL,
    clock_out TIMESTAMP,
    duration_minutes INTEGER
);
CREATE INDEX IF NOT EXISTS idx_location_sessions ON tracking_sessions(location_id);
CREATE INDEX IF NOT EXISTS idx_session_state ON tracking_sessions(state);
CREATE INDEX IF NOT EXISTS idx_session_clock_in ON tracking_sessions(clock_in);

-- Backstop for the one-open-session-per-location invariant. The engine's
-- per-location lock should make this unreachable; tripping it is a bug.
CREATE UNIQUE INDEX IF NOT EXISTS idx_one_open_session_per_location
    ON tracking_sessions(location_id) WHERE state != 'completed';

-- Append-only audit log of every observed geofence event
CREATE TABLE IF NOT EXISTS geofence_events (
    id TEXT PRIMARY KEY,
    location_id TEXT NOT NULL,
    event_type TEXT NOT NULL CHECK(event_type IN ('enter', 'exit')),
    timestamp TIMESTAMP NOT NULL,
    accuracy REAL,
    accuracy_source TEXT CHECK(accuracy_source IN ('event', 'active_fetch')),
    ignored INTEGER NOT NULL DEFAULT 0,
    ignore_reason TEXT CHECK(ignore_reason IN
        ('poor_accuracy', 'signal_degradation', 'debounced', 'no_session'))
);
CREATE INDEX IF NOT EXISTS idx_location_events ON geofence_events(location_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_event_timestamp ON geofence_events(timestamp);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
