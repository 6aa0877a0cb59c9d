package session

import (
	"fmt"
	"time"
)

// State represents the lifecycle state of a tracking session
type State string

const (
	StateActive      State = "active"
	StatePendingExit State = "pending_exit"
	StateCompleted   State = "completed"
)

// TrackingSession is one location's current or most recently closed
// attendance record. At most one non-completed session exists per location.
//
// PendingExitAt/ExitAccuracy are only set while State is pending_exit, and
// ClockOut/DurationMinutes only once State is completed. All mutation goes
// through the transition methods below so those combinations stay legal.
type TrackingSession struct {
	ID              string     `json:"id"`
	LocationID      string     `json:"location_id"`
	State           State      `json:"state"`
	ClockIn         time.Time  `json:"clock_in"`
	CheckinAccuracy *float64   `json:"checkin_accuracy,omitempty"`
	PendingExitAt   *time.Time `json:"pending_exit_at,omitempty"`
	ExitAccuracy    *float64   `json:"exit_accuracy,omitempty"`
	ClockOut        *time.Time `json:"clock_out,omitempty"`
	DurationMinutes *int64     `json:"duration_minutes,omitempty"`
}

// New creates an active session clocked in at the given time.
func New(id, locationID string, clockIn time.Time, checkinAccuracy *float64) *TrackingSession {
	return &TrackingSession{
		ID:              id,
		LocationID:      locationID,
		State:           StateActive,
		ClockIn:         clockIn,
		CheckinAccuracy: checkinAccuracy,
	}
}

// Open reports whether the session still counts toward the one open session
// per location invariant.
func (s *TrackingSession) Open() bool {
	return s.State == StateActive || s.State == StatePendingExit
}

// BeginPendingExit moves an active session into the hysteresis window.
func (s *TrackingSession) BeginPendingExit(at time.Time, exitAccuracy *float64) error {
	if s.State != StateActive {
		return fmt.Errorf("%w: begin pending exit from %s", ErrInvalidTransition, s.State)
	}
	s.State = StatePendingExit
	s.PendingExitAt = &at
	s.ExitAccuracy = exitAccuracy
	return nil
}

// RefreshPendingExit advances the pending exit marker to a newer exit
// signal. Older signals are ignored.
func (s *TrackingSession) RefreshPendingExit(at time.Time, exitAccuracy *float64) error {
	if s.State != StatePendingExit {
		return fmt.Errorf("%w: refresh pending exit in %s", ErrInvalidTransition, s.State)
	}
	if s.PendingExitAt != nil && !at.After(*s.PendingExitAt) {
		return nil
	}
	s.PendingExitAt = &at
	s.ExitAccuracy = exitAccuracy
	return nil
}

// CancelPendingExit returns a pending-exit session to active after a timely
// re-entry.
func (s *TrackingSession) CancelPendingExit() error {
	if s.State != StatePendingExit {
		return fmt.Errorf("%w: cancel pending exit in %s", ErrInvalidTransition, s.State)
	}
	s.State = StateActive
	s.PendingExitAt = nil
	s.ExitAccuracy = nil
	return nil
}

// Finalize completes the session at the given clock-out time and freezes the
// derived duration. The duration is never recomputed afterward.
func (s *TrackingSession) Finalize(clockOut time.Time) error {
	if s.State == StateCompleted {
		return fmt.Errorf("%w: finalize completed session", ErrInvalidTransition)
	}
	duration := int64(clockOut.Sub(s.ClockIn) / time.Minute)
	s.State = StateCompleted
	s.PendingExitAt = nil
	s.ClockOut = &clockOut
	s.DurationMinutes = &duration
	return nil
}

// Validate checks the field/state combinations the transition methods
// guarantee. A failure means the row was mutated outside this package and is
// a programming error, not a recoverable condition.
func (s *TrackingSession) Validate() error {
	switch s.State {
	case StateActive:
		if s.PendingExitAt != nil || s.ClockOut != nil || s.DurationMinutes != nil {
			return fmt.Errorf("%w: active session %s carries exit fields", ErrCorruptState, s.ID)
		}
	case StatePendingExit:
		if s.PendingExitAt == nil {
			return fmt.Errorf("%w: pending-exit session %s has no pending_exit_at", ErrCorruptState, s.ID)
		}
		if s.ClockOut != nil || s.DurationMinutes != nil {
			return fmt.Errorf("%w: pending-exit session %s carries clock-out fields", ErrCorruptState, s.ID)
		}
	case StateCompleted:
		if s.ClockOut == nil || s.DurationMinutes == nil {
			return fmt.Errorf("%w: completed session %s missing clock-out fields", ErrCorruptState, s.ID)
		}
	default:
		return fmt.Errorf("%w: session %s has unknown state %q", ErrCorruptState, s.ID, s.State)
	}
	return nil
}
