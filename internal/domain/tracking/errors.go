package tracking

import "errors"

var (
	// ErrInvalidEvent indicates a malformed geofence callback.
	ErrInvalidEvent = errors.New("invalid geofence event")
)
