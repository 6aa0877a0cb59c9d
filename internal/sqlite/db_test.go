package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestMigrations verifies that migrations run successfully
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	tables := []string{
		"tracking_sessions",
		"geofence_events",
	}

	for _, table := range tables {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}
}

// TestMigrationsIdempotent verifies migrations can run twice
func TestMigrationsIdempotent(t *testing.T) {
	db := NewTestDB(t)
	require.NoError(t, db.RunMigrations())
}

// TestOneOpenSessionPerLocation verifies the partial unique index backstop
func TestOneOpenSessionPerLocation(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	insert := `INSERT INTO tracking_sessions (id, location_id, state, clock_in) VALUES (?, ?, ?, ?)`
	now := time.Now()

	_, err := db.ExecContext(ctx, insert, "s1", "loc1", "active", now)
	require.NoError(t, err)

	// second open session for the same location must be rejected
	_, err = db.ExecContext(ctx, insert, "s2", "loc1", "pending_exit", now)
	require.Error(t, err)
	require.True(t, isUniqueViolation(err))

	// completed sessions don't count toward the invariant
	_, err = db.ExecContext(ctx,
		`INSERT INTO tracking_sessions (id, location_id, state, clock_in, clock_out, duration_minutes)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		"s3", "loc1", "completed", now, now, 0)
	require.NoError(t, err)

	// a different location is unaffected
	_, err = db.ExecContext(ctx, insert, "s4", "loc2", "active", now)
	require.NoError(t, err)
}
