package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/feldzeit/geoattend/internal/domain/event"
	"github.com/feldzeit/geoattend/internal/repository"
)

// EventRepository implements event.Repository for SQLite. The table is
// append-only: there is deliberately no update or delete here.
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// Append inserts a new geofence event entry
func (r *EventRepository) Append(ctx context.Context, ev *event.GeofenceEvent) error {
	query := `
		INSERT INTO geofence_events (
			id, location_id, event_type, timestamp,
			accuracy, accuracy_source, ignored, ignore_reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		ev.ID,
		ev.LocationID,
		ev.EventType,
		ev.Timestamp,
		ev.Accuracy,
		ev.AccuracySource,
		ev.Ignored,
		ev.IgnoreReason,
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	return nil
}

// LatestForLocation returns the most recent event for a location, of any
// type, ignored or not
func (r *EventRepository) LatestForLocation(ctx context.Context, locationID string) (*event.GeofenceEvent, error) {
	query := selectEventColumns + `
		WHERE location_id = ?
		ORDER BY timestamp DESC
		LIMIT 1
	`

	row := r.db.QueryRowContext(ctx, query, locationID)
	ev, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest event: %w", err)
	}

	return ev, nil
}

// List returns recent events matching the given filters
func (r *EventRepository) List(ctx context.Context, opts event.ListOptions) ([]event.GeofenceEvent, error) {
	query := selectEventColumns + ` WHERE 1=1`
	var args []interface{}

	if opts.LocationID != "" {
		query += " AND location_id = ?"
		args = append(args, opts.LocationID)
	}

	query += " ORDER BY timestamp DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []event.GeofenceEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

// Summary aggregates accuracy statistics and ignore counts over the event log
func (r *EventRepository) Summary(ctx context.Context, opts event.ListOptions) (*event.Summary, error) {
	where := ""
	var args []interface{}
	if opts.LocationID != "" {
		where = " WHERE location_id = ?"
		args = append(args, opts.LocationID)
	}

	statsQuery := `
		SELECT COUNT(*), COALESCE(SUM(ignored), 0),
		       MIN(accuracy), MAX(accuracy), AVG(accuracy)
		FROM geofence_events
	` + where

	summary := &event.Summary{
		IgnoredByReason: make(map[event.IgnoreReason]int),
	}
	var minAcc, maxAcc, avgAcc sql.NullFloat64
	err := r.db.QueryRowContext(ctx, statsQuery, args...).Scan(
		&summary.TotalEvents,
		&summary.IgnoredEvents,
		&minAcc,
		&maxAcc,
		&avgAcc,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query event stats: %w", err)
	}
	if minAcc.Valid {
		summary.MinAccuracy = &minAcc.Float64
	}
	if maxAcc.Valid {
		summary.MaxAccuracy = &maxAcc.Float64
	}
	if avgAcc.Valid {
		summary.AvgAccuracy = &avgAcc.Float64
	}

	reasonQuery := `
		SELECT ignore_reason, COUNT(*)
		FROM geofence_events
	` + where
	if where == "" {
		reasonQuery += " WHERE ignore_reason IS NOT NULL"
	} else {
		reasonQuery += " AND ignore_reason IS NOT NULL"
	}
	reasonQuery += " GROUP BY ignore_reason"

	rows, err := r.db.QueryContext(ctx, reasonQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ignore reasons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var reason event.IgnoreReason
		var count int
		if err := rows.Scan(&reason, &count); err != nil {
			return nil, fmt.Errorf("failed to scan ignore reason: %w", err)
		}
		summary.IgnoredByReason[reason] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ignore reasons: %w", err)
	}

	return summary, nil
}

const selectEventColumns = `
	SELECT
		id, location_id, event_type, timestamp,
		accuracy, accuracy_source, ignored, ignore_reason
	FROM geofence_events
`

func scanEvent(row rowScanner) (*event.GeofenceEvent, error) {
	var ev event.GeofenceEvent
	var accuracy sql.NullFloat64
	var source sql.NullString
	var reason sql.NullString

	err := row.Scan(
		&ev.ID,
		&ev.LocationID,
		&ev.EventType,
		&ev.Timestamp,
		&accuracy,
		&source,
		&ev.Ignored,
		&reason,
	)
	if err != nil {
		return nil, err
	}

	if accuracy.Valid {
		ev.Accuracy = &accuracy.Float64
	}
	if source.Valid {
		s := event.AccuracySource(source.String)
		ev.AccuracySource = &s
	}
	if reason.Valid {
		rr := event.IgnoreReason(reason.String)
		ev.IgnoreReason = &rr
	}

	return &ev, nil
}
