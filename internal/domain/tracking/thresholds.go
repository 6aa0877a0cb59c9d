package tracking

import "time"

// Thresholds are the tuning constants of the state machine. They were
// calibrated empirically from the event log and are injected from
// configuration rather than fixed.
type Thresholds struct {
	// DebounceWindow rejects a new event when any prior event for the same
	// location was logged this recently.
	DebounceWindow time.Duration
	// ImmediateThresholdM is the exit accuracy (meters) below which an exit
	// is trusted outright and finalizes the session with no hysteresis wait.
	ImmediateThresholdM float64
	// PoorThresholdM is the accuracy above which an exit is discarded.
	PoorThresholdM float64
	// DegradationFactor discards an exit whose accuracy exceeds the check-in
	// accuracy by this ratio.
	DegradationFactor float64
	// HysteresisWindow is how long a re-entry can still cancel a pending exit.
	HysteresisWindow time.Duration
	// StaleThreshold is the pending-exit age beyond which the reconciler
	// force-confirms the session.
	StaleThreshold time.Duration
	// PositionFetchTimeout bounds the active position fallback.
	PositionFetchTimeout time.Duration
}

// DefaultThresholds returns the production defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DebounceWindow:       10 * time.Second,
		ImmediateThresholdM:  50,
		PoorThresholdM:       100,
		DegradationFactor:    3,
		HysteresisWindow:     5 * time.Minute,
		StaleThreshold:       10 * time.Minute,
		PositionFetchTimeout: 2 * time.Second,
	}
}
