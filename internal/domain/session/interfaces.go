package session

import (
	"context"
	"time"
)

// Repository provides persistence for tracking sessions.
type Repository interface {
	Create(ctx context.Context, sess *TrackingSession) error
	Get(ctx context.Context, id string) (*TrackingSession, error)
	// GetOpenByLocation returns the single active or pending-exit session for
	// a location, or repository.ErrNotFound when the location is unoccupied.
	GetOpenByLocation(ctx context.Context, locationID string) (*TrackingSession, error)
	Update(ctx context.Context, sess *TrackingSession) error
	// ListStalePending returns pending-exit sessions whose pending_exit_at is
	// older than the cutoff.
	ListStalePending(ctx context.Context, cutoff time.Time) ([]TrackingSession, error)
	ListRecent(ctx context.Context, opts ListOptions) ([]TrackingSession, error)
	// DailyTotals aggregates completed sessions into per-day totals over
	// [start, end], keyed by the clock-in date.
	DailyTotals(ctx context.Context, start, end time.Time) ([]DailyTotal, error)
}
