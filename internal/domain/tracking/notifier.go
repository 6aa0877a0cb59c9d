package tracking

import (
	"context"
	"log/slog"

	"github.com/feldzeit/geoattend/internal/domain/session"
)

// LogNotifier writes notifications to the log. It stands in for the push
// delivery channel, which lives outside this core.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) LeavingArea(ctx context.Context, sess *session.TrackingSession) error {
	n.logger.Info("notify: leaving area", "location_id", sess.LocationID)
	return nil
}

func (n *LogNotifier) WelcomeBack(ctx context.Context, sess *session.TrackingSession) error {
	n.logger.Info("notify: welcome back", "location_id", sess.LocationID)
	return nil
}

func (n *LogNotifier) ClockedOut(ctx context.Context, sess *session.TrackingSession) error {
	n.logger.Info("notify: clocked out",
		"location_id", sess.LocationID, "duration_minutes", *sess.DurationMinutes)
	return nil
}
