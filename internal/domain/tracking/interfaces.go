package tracking

import (
	"context"

	"github.com/feldzeit/geoattend/internal/domain/session"
)

// PositionFetcher supplies an accuracy reading when the OS event carries
// none. Implementations are expected to honor context cancellation; the
// service bounds every call with PositionFetchTimeout.
type PositionFetcher interface {
	CurrentAccuracy(ctx context.Context) (float64, error)
}

// Notifier delivers user-facing notifications for state transitions.
// Dispatch is fire and forget: a delivery failure is logged and never rolls
// back the transition that triggered it.
type Notifier interface {
	LeavingArea(ctx context.Context, sess *session.TrackingSession) error
	WelcomeBack(ctx context.Context, sess *session.TrackingSession) error
	ClockedOut(ctx context.Context, sess *session.TrackingSession) error
}
