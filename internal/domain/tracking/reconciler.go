package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/feldzeit/geoattend/internal/domain/session"
	"github.com/feldzeit/geoattend/internal/repository"
)

// Reconcile force-confirms sessions stuck in pending exit beyond the stale
// threshold, exactly as an expired re-entry would: clock-out is the moment
// the trusted exit signal arrived, not now. It is the authoritative fallback
// for timers the mobile OS never fired, invoked at process start, on the
// resume hook, and after every processed event.
//
// Running it twice over the same data performs no additional mutation.
func (s *Service) Reconcile(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-s.th.StaleThreshold)

	stale, err := s.sessions.ListStalePending(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("listing stale sessions: %w", err)
	}

	confirmed := 0
	for i := range stale {
		ok, err := s.confirmStale(ctx, stale[i].ID, cutoff)
		if err != nil {
			return confirmed, err
		}
		if ok {
			confirmed++
		}
	}

	return confirmed, nil
}

// confirmStale re-checks one candidate under its location lock; the session
// may have been cancelled or confirmed by an event processed since the scan.
func (s *Service) confirmStale(ctx context.Context, id string, cutoff time.Time) (bool, error) {
	candidate, err := s.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("loading stale candidate: %w", err)
	}

	unlock := s.locks.lock(candidate.LocationID)
	defer unlock()

	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("loading stale candidate: %w", err)
	}
	if sess.State != session.StatePendingExit || sess.PendingExitAt == nil {
		return false, nil
	}
	if !sess.PendingExitAt.Before(cutoff) {
		return false, nil
	}

	clockOut := *sess.PendingExitAt
	if err := sess.Finalize(clockOut); err != nil {
		return false, err
	}
	if err := s.sessions.Update(ctx, sess); err != nil {
		return false, fmt.Errorf("updating stale session: %w", err)
	}

	s.logger.Info("stale pending exit confirmed",
		"session_id", sess.ID, "duration_minutes", *sess.DurationMinutes)
	s.notifyClockedOut(ctx, sess)

	return true, nil
}
