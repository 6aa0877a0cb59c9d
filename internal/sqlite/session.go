package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/feldzeit/geoattend/internal/domain/session"
	"github.com/feldzeit/geoattend/internal/repository"
)

// SessionRepository implements session.Repository for SQLite
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new tracking session
func (r *SessionRepository) Create(ctx context.Context, sess *session.TrackingSession) error {
	query := `
		INSERT INTO tracking_sessions (
			id, location_id, state, clock_in, checkin_accuracy,
			pending_exit_at, exit_accuracy, clock_out, duration_minutes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		sess.ID,
		sess.LocationID,
		sess.State,
		sess.ClockIn,
		sess.CheckinAccuracy,
		sess.PendingExitAt,
		sess.ExitAccuracy,
		sess.ClockOut,
		sess.DurationMinutes,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(ctx context.Context, id string) (*session.TrackingSession, error) {
	query := selectSessionColumns + ` WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return sess, nil
}

// GetOpenByLocation retrieves the single non-completed session for a location
func (r *SessionRepository) GetOpenByLocation(ctx context.Context, locationID string) (*session.TrackingSession, error) {
	query := selectSessionColumns + ` WHERE location_id = ? AND state != 'completed'`

	row := r.db.QueryRowContext(ctx, query, locationID)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get open session: %w", err)
	}

	return sess, nil
}

// Update persists a session mutation
func (r *SessionRepository) Update(ctx context.Context, sess *session.TrackingSession) error {
	query := `
		UPDATE tracking_sessions
		SET state = ?, pending_exit_at = ?, exit_accuracy = ?,
		    clock_out = ?, duration_minutes = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		sess.State,
		sess.PendingExitAt,
		sess.ExitAccuracy,
		sess.ClockOut,
		sess.DurationMinutes,
		sess.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListStalePending returns pending-exit sessions older than the cutoff
func (r *SessionRepository) ListStalePending(ctx context.Context, cutoff time.Time) ([]session.TrackingSession, error) {
	query := selectSessionColumns + `
		WHERE state = 'pending_exit' AND pending_exit_at < ?
		ORDER BY pending_exit_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale sessions: %w", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

// ListRecent returns recent sessions matching the given filters
func (r *SessionRepository) ListRecent(ctx context.Context, opts session.ListOptions) ([]session.TrackingSession, error) {
	query := selectSessionColumns + ` WHERE 1=1`
	var args []interface{}

	if opts.LocationID != "" {
		query += " AND location_id = ?"
		args = append(args, opts.LocationID)
	}
	if len(opts.States) > 0 {
		placeholders := make([]string, len(opts.States))
		for i, state := range opts.States {
			placeholders[i] = "?"
			args = append(args, state)
		}
		query += " AND state IN (" + strings.Join(placeholders, ", ") + ")"
	}

	query += " ORDER BY clock_in DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

// DailyTotals aggregates completed sessions into per-day totals keyed by the
// clock-in date
func (r *SessionRepository) DailyTotals(ctx context.Context, start, end time.Time) ([]session.DailyTotal, error) {
	query := `
		SELECT date(clock_in), SUM(duration_minutes), COUNT(*)
		FROM tracking_sessions
		WHERE state = 'completed' AND date(clock_in) >= date(?) AND date(clock_in) <= date(?)
		GROUP BY date(clock_in)
		ORDER BY date(clock_in) ASC
	`

	rows, err := r.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily totals: %w", err)
	}
	defer rows.Close()

	var totals []session.DailyTotal
	for rows.Next() {
		var total session.DailyTotal
		if err := rows.Scan(&total.Date, &total.TotalMinutes, &total.Sessions); err != nil {
			return nil, fmt.Errorf("failed to scan daily total: %w", err)
		}
		totals = append(totals, total)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily totals: %w", err)
	}

	return totals, nil
}

const selectSessionColumns = `
	SELECT
		id, location_id, state, clock_in, checkin_accuracy,
		pending_exit_at, exit_accuracy, clock_out, duration_minutes
	FROM tracking_sessions
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*session.TrackingSession, error) {
	var sess session.TrackingSession
	var checkinAccuracy sql.NullFloat64
	var pendingExitAt sql.NullTime
	var exitAccuracy sql.NullFloat64
	var clockOut sql.NullTime
	var durationMinutes sql.NullInt64

	err := row.Scan(
		&sess.ID,
		&sess.LocationID,
		&sess.State,
		&sess.ClockIn,
		&checkinAccuracy,
		&pendingExitAt,
		&exitAccuracy,
		&clockOut,
		&durationMinutes,
	)
	if err != nil {
		return nil, err
	}

	if checkinAccuracy.Valid {
		sess.CheckinAccuracy = &checkinAccuracy.Float64
	}
	if pendingExitAt.Valid {
		sess.PendingExitAt = &pendingExitAt.Time
	}
	if exitAccuracy.Valid {
		sess.ExitAccuracy = &exitAccuracy.Float64
	}
	if clockOut.Valid {
		sess.ClockOut = &clockOut.Time
	}
	if durationMinutes.Valid {
		sess.DurationMinutes = &durationMinutes.Int64
	}

	return &sess, nil
}

func collectSessions(rows *sql.Rows) ([]session.TrackingSession, error) {
	var sessions []session.TrackingSession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}
	return sessions, nil
}
