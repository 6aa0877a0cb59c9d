package tracking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/feldzeit/geoattend/internal/domain/event"
	"github.com/feldzeit/geoattend/internal/domain/session"
	"github.com/feldzeit/geoattend/internal/repository"
	"github.com/google/uuid"
)

// Service is the geofence-to-attendance state machine. Every decision reads
// its inputs from durable storage and writes its outputs back before
// returning; the hosting process may be recreated between callbacks, so
// nothing here survives in memory across calls except the location locks of
// one process lifetime.
type Service struct {
	sessions session.Repository
	events   event.Repository
	position PositionFetcher
	notifier Notifier
	th       Thresholds
	logger   *slog.Logger
	locks    *locationLocks
}

// NewService creates a new tracking service. position and notifier may be
// nil; the service then skips the accuracy fallback and notification
// dispatch.
func NewService(
	sessions session.Repository,
	events event.Repository,
	position PositionFetcher,
	notifier Notifier,
	th Thresholds,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sessions: sessions,
		events:   events,
		position: position,
		notifier: notifier,
		th:       th,
		logger:   logger,
		locks:    newLocationLocks(),
	}
}

// Callback is one raw enter/exit delivery from the OS geofence API.
type Callback struct {
	LocationID string
	EventType  event.Type
	Timestamp  time.Time
	Accuracy   *float64
}

// Transition names the state change an event caused, if any.
type Transition string

const (
	TransitionNone        Transition = "none"
	TransitionClockIn     Transition = "clock_in"
	TransitionPendingExit Transition = "pending_exit"
	TransitionCancelled   Transition = "cancelled"
	TransitionRefreshed   Transition = "refreshed"
	TransitionCompleted   Transition = "completed"
)

// Outcome reports what processing one callback did.
type Outcome struct {
	Event      event.GeofenceEvent      `json:"event"`
	Session    *session.TrackingSession `json:"session,omitempty"`
	Transition Transition               `json:"transition"`
	// StaleConfirmed is how many other sessions the post-event reconcile
	// sweep force-confirmed.
	StaleConfirmed int `json:"stale_confirmed"`
}

// ProcessEvent runs the whole per-event pipeline: accuracy fallback,
// debounce, classification, state transition, event append, notification
// dispatch, then a stale-session sweep. The pipeline is idempotent against
// the same durable state, so a storage failure is safe to retry by
// redelivering the callback.
func (s *Service) ProcessEvent(ctx context.Context, cb Callback) (*Outcome, error) {
	if cb.LocationID == "" || cb.Timestamp.IsZero() {
		return nil, ErrInvalidEvent
	}
	if cb.EventType != event.TypeEnter && cb.EventType != event.TypeExit {
		return nil, fmt.Errorf("%w: event type %q", ErrInvalidEvent, cb.EventType)
	}

	outcome, err := s.processLocked(ctx, cb)
	if err != nil {
		return nil, err
	}

	// Cheap bounded sweep; mobile schedulers don't guarantee timers fire
	// while backgrounded, so every delivery doubles as a reconcile trigger.
	confirmed, err := s.Reconcile(ctx, time.Now())
	if err != nil {
		s.logger.Warn("post-event reconcile failed", "error", err)
	} else {
		outcome.StaleConfirmed = confirmed
	}

	return outcome, nil
}

func (s *Service) processLocked(ctx context.Context, cb Callback) (*Outcome, error) {
	unlock := s.locks.lock(cb.LocationID)
	defer unlock()

	accuracy, source := s.resolveAccuracy(ctx, cb)

	ev := &event.GeofenceEvent{
		ID:             uuid.NewString(),
		LocationID:     cb.LocationID,
		EventType:      cb.EventType,
		Timestamp:      cb.Timestamp,
		Accuracy:       accuracy,
		AccuracySource: source,
	}

	debounced, err := s.shouldDebounce(ctx, cb)
	if err != nil {
		return nil, err
	}
	if debounced {
		return s.logIgnored(ctx, ev, event.IgnoreDebounced)
	}

	sess, err := s.sessions.GetOpenByLocation(ctx, cb.LocationID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("loading open session: %w", err)
	}
	if sess != nil {
		// An illegal persisted combination is a programming error, not
		// something to silently repair.
		if err := sess.Validate(); err != nil {
			return nil, err
		}
	}

	switch {
	case sess == nil:
		return s.handleNoSession(ctx, ev)
	case sess.State == session.StateActive:
		return s.handleActive(ctx, ev, sess)
	default:
		return s.handlePendingExit(ctx, ev, sess)
	}
}

// resolveAccuracy uses the callback's own reading when present and falls
// back to an active position fetch with a bounded timeout. A timeout is not
// a failure: processing continues with no accuracy.
func (s *Service) resolveAccuracy(ctx context.Context, cb Callback) (*float64, *event.AccuracySource) {
	if cb.Accuracy != nil {
		src := event.SourceEvent
		return cb.Accuracy, &src
	}
	if s.position == nil {
		return nil, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.th.PositionFetchTimeout)
	defer cancel()

	reading, err := s.position.CurrentAccuracy(fetchCtx)
	if err != nil {
		s.logger.Debug("active position fetch unavailable",
			"location_id", cb.LocationID, "error", err)
		return nil, nil
	}
	src := event.SourceActiveFetch
	return &reading, &src
}

func (s *Service) shouldDebounce(ctx context.Context, cb Callback) (bool, error) {
	last, err := s.events.LatestForLocation(ctx, cb.LocationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("loading latest event: %w", err)
	}

	gap := cb.Timestamp.Sub(last.Timestamp)
	if gap < 0 {
		gap = -gap
	}
	return gap < s.th.DebounceWindow, nil
}

func (s *Service) handleNoSession(ctx context.Context, ev *event.GeofenceEvent) (*Outcome, error) {
	if ev.EventType == event.TypeExit {
		return s.logIgnored(ctx, ev, event.IgnoreNoSession)
	}

	if err := s.events.Append(ctx, ev); err != nil {
		return nil, fmt.Errorf("appending event: %w", err)
	}

	sess := session.New(uuid.NewString(), ev.LocationID, ev.Timestamp, ev.Accuracy)
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	s.logger.Info("clocked in",
		"location_id", ev.LocationID, "session_id", sess.ID)
	return &Outcome{Event: *ev, Session: sess, Transition: TransitionClockIn}, nil
}

func (s *Service) handleActive(ctx context.Context, ev *event.GeofenceEvent, sess *session.TrackingSession) (*Outcome, error) {
	if ev.EventType == event.TypeEnter {
		// Already clocked in; duplicate enter is noise but still logged.
		if err := s.events.Append(ctx, ev); err != nil {
			return nil, fmt.Errorf("appending event: %w", err)
		}
		return &Outcome{Event: *ev, Session: sess, Transition: TransitionNone}, nil
	}

	cls := ClassifyExit(ev.Accuracy, sess.CheckinAccuracy, s.th)
	switch cls.Verdict {
	case VerdictUntrustworthy:
		return s.logIgnoredWithSession(ctx, ev, *cls.Reason, sess)

	case VerdictHighConfidence:
		if err := s.events.Append(ctx, ev); err != nil {
			return nil, fmt.Errorf("appending event: %w", err)
		}
		if err := sess.Finalize(ev.Timestamp); err != nil {
			return nil, err
		}
		if err := s.sessions.Update(ctx, sess); err != nil {
			return nil, fmt.Errorf("updating session: %w", err)
		}
		s.logger.Info("clocked out on high-confidence exit",
			"session_id", sess.ID, "duration_minutes", *sess.DurationMinutes)
		s.notifyClockedOut(ctx, sess)
		return &Outcome{Event: *ev, Session: sess, Transition: TransitionCompleted}, nil

	default:
		if err := s.events.Append(ctx, ev); err != nil {
			return nil, fmt.Errorf("appending event: %w", err)
		}
		if err := sess.BeginPendingExit(ev.Timestamp, ev.Accuracy); err != nil {
			return nil, err
		}
		if err := s.sessions.Update(ctx, sess); err != nil {
			return nil, fmt.Errorf("updating session: %w", err)
		}
		s.logger.Info("pending exit opened", "session_id", sess.ID)
		if s.notifier != nil {
			if err := s.notifier.LeavingArea(ctx, sess); err != nil {
				s.logger.Warn("leaving-area notification failed", "error", err)
			}
		}
		return &Outcome{Event: *ev, Session: sess, Transition: TransitionPendingExit}, nil
	}
}

func (s *Service) handlePendingExit(ctx context.Context, ev *event.GeofenceEvent, sess *session.TrackingSession) (*Outcome, error) {
	if ev.EventType == event.TypeEnter {
		elapsed := ev.Timestamp.Sub(*sess.PendingExitAt)
		if elapsed < s.th.HysteresisWindow {
			if err := s.events.Append(ctx, ev); err != nil {
				return nil, fmt.Errorf("appending event: %w", err)
			}
			if err := sess.CancelPendingExit(); err != nil {
				return nil, err
			}
			if err := s.sessions.Update(ctx, sess); err != nil {
				return nil, fmt.Errorf("updating session: %w", err)
			}
			s.logger.Info("pending exit cancelled", "session_id", sess.ID)
			if s.notifier != nil {
				if err := s.notifier.WelcomeBack(ctx, sess); err != nil {
					s.logger.Warn("welcome-back notification failed", "error", err)
				}
			}
			return &Outcome{Event: *ev, Session: sess, Transition: TransitionCancelled}, nil
		}

		// The hysteresis window expired: bias toward logging out. The late
		// enter is treated as return-after-the-fact, and the clock-out
		// already implied by the pending state is honored.
		if err := s.events.Append(ctx, ev); err != nil {
			return nil, fmt.Errorf("appending event: %w", err)
		}
		clockOut := *sess.PendingExitAt
		if err := sess.Finalize(clockOut); err != nil {
			return nil, err
		}
		if err := s.sessions.Update(ctx, sess); err != nil {
			return nil, fmt.Errorf("updating session: %w", err)
		}
		s.logger.Info("pending exit confirmed on late re-entry",
			"session_id", sess.ID, "duration_minutes", *sess.DurationMinutes)
		s.notifyClockedOut(ctx, sess)
		return &Outcome{Event: *ev, Session: sess, Transition: TransitionCompleted}, nil
	}

	cls := ClassifyExit(ev.Accuracy, sess.CheckinAccuracy, s.th)
	if cls.Verdict == VerdictUntrustworthy {
		return s.logIgnoredWithSession(ctx, ev, *cls.Reason, sess)
	}

	if err := s.events.Append(ctx, ev); err != nil {
		return nil, fmt.Errorf("appending event: %w", err)
	}
	if err := sess.RefreshPendingExit(ev.Timestamp, ev.Accuracy); err != nil {
		return nil, err
	}
	if err := s.sessions.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("updating session: %w", err)
	}
	return &Outcome{Event: *ev, Session: sess, Transition: TransitionRefreshed}, nil
}

func (s *Service) logIgnored(ctx context.Context, ev *event.GeofenceEvent, reason event.IgnoreReason) (*Outcome, error) {
	return s.logIgnoredWithSession(ctx, ev, reason, nil)
}

func (s *Service) logIgnoredWithSession(ctx context.Context, ev *event.GeofenceEvent, reason event.IgnoreReason, sess *session.TrackingSession) (*Outcome, error) {
	ev.Ignored = true
	ev.IgnoreReason = &reason
	if err := s.events.Append(ctx, ev); err != nil {
		return nil, fmt.Errorf("appending event: %w", err)
	}
	s.logger.Debug("event ignored",
		"location_id", ev.LocationID, "event_type", ev.EventType, "reason", reason)
	return &Outcome{Event: *ev, Session: sess, Transition: TransitionNone}, nil
}

func (s *Service) notifyClockedOut(ctx context.Context, sess *session.TrackingSession) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.ClockedOut(ctx, sess); err != nil {
		s.logger.Warn("clocked-out notification failed",
			"session_id", sess.ID, "error", err)
	}
}
