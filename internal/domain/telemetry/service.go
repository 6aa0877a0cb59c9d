package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/feldzeit/geoattend/internal/domain/event"
	"github.com/feldzeit/geoattend/internal/domain/session"
	"github.com/feldzeit/geoattend/internal/repository"
)

const defaultLimit = 50

// Service exposes the read-only diagnostic surface: the event log summary
// used for threshold tuning, recent sessions, and the per-day totals the
// daily-submission pipeline consumes.
type Service struct {
	sessions session.Repository
	events   event.Repository
	logger   *slog.Logger
}

// NewService creates a new telemetry service.
func NewService(sessions session.Repository, events event.Repository, logger *slog.Logger) *Service {
	return &Service{sessions: sessions, events: events, logger: logger}
}

// Export bundles the event summary with the most recent raw entries.
type Export struct {
	Summary      event.Summary         `json:"summary"`
	RecentEvents []event.GeofenceEvent `json:"recent_events"`
}

// EventSummary returns accuracy statistics, ignore counts by reason, and the
// recent N events, optionally scoped to one location.
func (s *Service) EventSummary(ctx context.Context, opts event.ListOptions) (*Export, error) {
	if opts.Limit <= 0 {
		opts.Limit = defaultLimit
	}

	summary, err := s.events.Summary(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("summarizing events: %w", err)
	}

	recent, err := s.events.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}

	return &Export{Summary: *summary, RecentEvents: recent}, nil
}

// RecentSessions lists recent sessions for diagnostics.
func (s *Service) RecentSessions(ctx context.Context, opts session.ListOptions) ([]session.TrackingSession, error) {
	if opts.Limit <= 0 {
		opts.Limit = defaultLimit
	}
	sessions, err := s.sessions.ListRecent(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return sessions, nil
}

// DailyTotals aggregates completed sessions into per-day confirmed totals
// over [start, end].
func (s *Service) DailyTotals(ctx context.Context, start, end time.Time) ([]session.DailyTotal, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end before start", repository.ErrInvalidInput)
	}
	totals, err := s.sessions.DailyTotals(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("aggregating daily totals: %w", err)
	}
	return totals, nil
}
