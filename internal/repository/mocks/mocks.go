package mocks

import (
	"context"
	"time"

	"github.com/feldzeit/geoattend/internal/domain/event"
	"github.com/feldzeit/geoattend/internal/domain/session"
	"github.com/stretchr/testify/mock"
)

// SessionRepository is a mock for session.Repository.
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Create(ctx context.Context, sess *session.TrackingSession) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *SessionRepository) Get(ctx context.Context, id string) (*session.TrackingSession, error) {
	args := m.Called(ctx, id)
	if sess, ok := args.Get(0).(*session.TrackingSession); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) GetOpenByLocation(ctx context.Context, locationID string) (*session.TrackingSession, error) {
	args := m.Called(ctx, locationID)
	if sess, ok := args.Get(0).(*session.TrackingSession); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) Update(ctx context.Context, sess *session.TrackingSession) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *SessionRepository) ListStalePending(ctx context.Context, cutoff time.Time) ([]session.TrackingSession, error) {
	args := m.Called(ctx, cutoff)
	if sessions, ok := args.Get(0).([]session.TrackingSession); ok {
		return sessions, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) ListRecent(ctx context.Context, opts session.ListOptions) ([]session.TrackingSession, error) {
	args := m.Called(ctx, opts)
	if sessions, ok := args.Get(0).([]session.TrackingSession); ok {
		return sessions, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) DailyTotals(ctx context.Context, start, end time.Time) ([]session.DailyTotal, error) {
	args := m.Called(ctx, start, end)
	if totals, ok := args.Get(0).([]session.DailyTotal); ok {
		return totals, args.Error(1)
	}
	return nil, args.Error(1)
}

// EventRepository is a mock for event.Repository.
type EventRepository struct {
	mock.Mock
}

func (m *EventRepository) Append(ctx context.Context, ev *event.GeofenceEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *EventRepository) LatestForLocation(ctx context.Context, locationID string) (*event.GeofenceEvent, error) {
	args := m.Called(ctx, locationID)
	if ev, ok := args.Get(0).(*event.GeofenceEvent); ok {
		return ev, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EventRepository) List(ctx context.Context, opts event.ListOptions) ([]event.GeofenceEvent, error) {
	args := m.Called(ctx, opts)
	if events, ok := args.Get(0).([]event.GeofenceEvent); ok {
		return events, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EventRepository) Summary(ctx context.Context, opts event.ListOptions) (*event.Summary, error) {
	args := m.Called(ctx, opts)
	if summary, ok := args.Get(0).(*event.Summary); ok {
		return summary, args.Error(1)
	}
	return nil, args.Error(1)
}

// PositionFetcher is a mock for tracking.PositionFetcher.
type PositionFetcher struct {
	mock.Mock
}

func (m *PositionFetcher) CurrentAccuracy(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

// Notifier is a mock for tracking.Notifier.
type Notifier struct {
	mock.Mock
}

func (m *Notifier) LeavingArea(ctx context.Context, sess *session.TrackingSession) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *Notifier) WelcomeBack(ctx context.Context, sess *session.TrackingSession) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *Notifier) ClockedOut(ctx context.Context, sess *session.TrackingSession) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}
