package event

import "context"

// Repository provides append-only persistence for geofence events.
type Repository interface {
	Append(ctx context.Context, ev *GeofenceEvent) error
	// LatestForLocation returns the most recent event for a location, of any
	// type and whether or not it was ignored, or repository.ErrNotFound.
	// The debounce gate compares against this, so it must hit durable
	// storage rather than anything cached in process memory.
	LatestForLocation(ctx context.Context, locationID string) (*GeofenceEvent, error)
	List(ctx context.Context, opts ListOptions) ([]GeofenceEvent, error)
	Summary(ctx context.Context, opts ListOptions) (*Summary, error)
}
