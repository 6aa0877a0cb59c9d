package session_test

import (
	"testing"
	"time"

	"github.com/feldzeit/geoattend/internal/domain/session"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestLifecycle_CancelPath(t *testing.T) {
	clockIn := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	sess := session.New("s1", "loc1", clockIn, floatPtr(8))
	require.Equal(t, session.StateActive, sess.State)
	require.True(t, sess.Open())
	require.NoError(t, sess.Validate())

	exitAt := clockIn.Add(5 * time.Minute)
	require.NoError(t, sess.BeginPendingExit(exitAt, floatPtr(12)))
	require.Equal(t, session.StatePendingExit, sess.State)
	require.True(t, sess.Open())
	require.NoError(t, sess.Validate())

	require.NoError(t, sess.CancelPendingExit())
	require.Equal(t, session.StateActive, sess.State)
	require.Nil(t, sess.PendingExitAt)
	require.Nil(t, sess.ExitAccuracy)
	require.NoError(t, sess.Validate())
}

func TestLifecycle_FinalizeFromPendingExit(t *testing.T) {
	clockIn := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	sess := session.New("s1", "loc1", clockIn, nil)

	exitAt := clockIn.Add(5 * time.Minute)
	require.NoError(t, sess.BeginPendingExit(exitAt, nil))
	require.NoError(t, sess.Finalize(exitAt))

	require.Equal(t, session.StateCompleted, sess.State)
	require.False(t, sess.Open())
	require.Nil(t, sess.PendingExitAt)
	require.True(t, sess.ClockOut.Equal(exitAt))
	require.Equal(t, int64(5), *sess.DurationMinutes)
	require.NoError(t, sess.Validate())
}

func TestLifecycle_DurationTruncatesToMinutes(t *testing.T) {
	clockIn := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	sess := session.New("s1", "loc1", clockIn, nil)

	require.NoError(t, sess.Finalize(clockIn.Add(7*time.Minute+59*time.Second)))
	require.Equal(t, int64(7), *sess.DurationMinutes)
}

func TestRefreshPendingExit_KeepsNewerTimestamp(t *testing.T) {
	clockIn := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	sess := session.New("s1", "loc1", clockIn, nil)

	first := clockIn.Add(5 * time.Minute)
	require.NoError(t, sess.BeginPendingExit(first, floatPtr(60)))

	newer := first.Add(2 * time.Minute)
	require.NoError(t, sess.RefreshPendingExit(newer, floatPtr(70)))
	require.True(t, sess.PendingExitAt.Equal(newer))
	require.Equal(t, 70.0, *sess.ExitAccuracy)

	// an older signal must not move the marker back
	require.NoError(t, sess.RefreshPendingExit(first, floatPtr(55)))
	require.True(t, sess.PendingExitAt.Equal(newer))
	require.Equal(t, 70.0, *sess.ExitAccuracy)
}

func TestInvalidTransitions(t *testing.T) {
	clockIn := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	active := session.New("s1", "loc1", clockIn, nil)
	require.ErrorIs(t, active.CancelPendingExit(), session.ErrInvalidTransition)
	require.ErrorIs(t, active.RefreshPendingExit(clockIn, nil), session.ErrInvalidTransition)

	pending := session.New("s2", "loc1", clockIn, nil)
	require.NoError(t, pending.BeginPendingExit(clockIn.Add(time.Minute), nil))
	require.ErrorIs(t, pending.BeginPendingExit(clockIn.Add(2*time.Minute), nil), session.ErrInvalidTransition)

	done := session.New("s3", "loc1", clockIn, nil)
	require.NoError(t, done.Finalize(clockIn.Add(time.Minute)))
	require.ErrorIs(t, done.Finalize(clockIn.Add(2*time.Minute)), session.ErrInvalidTransition)
	require.ErrorIs(t, done.BeginPendingExit(clockIn.Add(2*time.Minute), nil), session.ErrInvalidTransition)
}

func TestValidate_CorruptCombinations(t *testing.T) {
	clockIn := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	exitAt := clockIn.Add(time.Minute)

	activeWithExit := session.New("s1", "loc1", clockIn, nil)
	activeWithExit.PendingExitAt = &exitAt
	require.ErrorIs(t, activeWithExit.Validate(), session.ErrCorruptState)

	pendingWithoutMarker := session.New("s2", "loc1", clockIn, nil)
	pendingWithoutMarker.State = session.StatePendingExit
	require.ErrorIs(t, pendingWithoutMarker.Validate(), session.ErrCorruptState)

	completedWithoutClockOut := session.New("s3", "loc1", clockIn, nil)
	completedWithoutClockOut.State = session.StateCompleted
	require.ErrorIs(t, completedWithoutClockOut.Validate(), session.ErrCorruptState)

	unknown := session.New("s4", "loc1", clockIn, nil)
	unknown.State = session.State("limbo")
	require.ErrorIs(t, unknown.Validate(), session.ErrCorruptState)
}
