package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/feldzeit/geoattend/internal/domain/event"
	"github.com/feldzeit/geoattend/internal/domain/session"
	"github.com/feldzeit/geoattend/internal/domain/telemetry"
	"github.com/feldzeit/geoattend/internal/repository"
	"github.com/feldzeit/geoattend/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEventSummary(t *testing.T) {
	ctx := context.Background()
	events := &mocks.EventRepository{}
	svc := telemetry.NewService(&mocks.SessionRepository{}, events, nil)

	summary := &event.Summary{TotalEvents: 3, IgnoredEvents: 1}
	recent := []event.GeofenceEvent{{ID: "e1"}, {ID: "e2"}}

	events.On("Summary", ctx, event.ListOptions{LocationID: "loc1", Limit: 10}).Return(summary, nil)
	events.On("List", ctx, event.ListOptions{LocationID: "loc1", Limit: 10}).Return(recent, nil)

	export, err := svc.EventSummary(ctx, event.ListOptions{LocationID: "loc1", Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 3, export.Summary.TotalEvents)
	require.Len(t, export.RecentEvents, 2)
}

func TestEventSummary_DefaultLimit(t *testing.T) {
	ctx := context.Background()
	events := &mocks.EventRepository{}
	svc := telemetry.NewService(&mocks.SessionRepository{}, events, nil)

	events.On("Summary", ctx, event.ListOptions{Limit: 50}).Return(&event.Summary{}, nil)
	events.On("List", ctx, event.ListOptions{Limit: 50}).Return([]event.GeofenceEvent{}, nil)

	_, err := svc.EventSummary(ctx, event.ListOptions{})
	require.NoError(t, err)
	events.AssertExpectations(t)
}

func TestEventSummary_StorageError(t *testing.T) {
	ctx := context.Background()
	events := &mocks.EventRepository{}
	svc := telemetry.NewService(&mocks.SessionRepository{}, events, nil)

	dbErr := errors.New("disk gone")
	events.On("Summary", ctx, mock.Anything).Return(nil, dbErr)

	_, err := svc.EventSummary(ctx, event.ListOptions{})
	require.ErrorIs(t, err, dbErr)
}

func TestRecentSessions_DefaultLimit(t *testing.T) {
	ctx := context.Background()
	sessions := &mocks.SessionRepository{}
	svc := telemetry.NewService(sessions, &mocks.EventRepository{}, nil)

	sessions.On("ListRecent", ctx, session.ListOptions{Limit: 50}).
		Return([]session.TrackingSession{{ID: "s1"}}, nil)

	got, err := svc.RecentSessions(ctx, session.ListOptions{})
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestDailyTotals(t *testing.T) {
	ctx := context.Background()
	sessions := &mocks.SessionRepository{}
	svc := telemetry.NewService(sessions, &mocks.EventRepository{}, nil)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	sessions.On("DailyTotals", ctx, start, end).
		Return([]session.DailyTotal{{Date: "2026-03-02", TotalMinutes: 420, Sessions: 2}}, nil)

	totals, err := svc.DailyTotals(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	require.Equal(t, int64(420), totals[0].TotalMinutes)
}

func TestDailyTotals_InvalidRange(t *testing.T) {
	ctx := context.Background()
	sessions := &mocks.SessionRepository{}
	svc := telemetry.NewService(sessions, &mocks.EventRepository{}, nil)

	start := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	_, err := svc.DailyTotals(ctx, start, start.AddDate(0, 0, -1))
	require.ErrorIs(t, err, repository.ErrInvalidInput)
	sessions.AssertNotCalled(t, "DailyTotals", mock.Anything, mock.Anything, mock.Anything)
}
