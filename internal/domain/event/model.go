package event

import "time"

// Type is the direction of a geofence crossing.
type Type string

const (
	TypeEnter Type = "enter"
	TypeExit  Type = "exit"
)

// AccuracySource records where an event's accuracy reading came from.
type AccuracySource string

const (
	// SourceEvent means the OS callback carried the reading itself.
	SourceEvent AccuracySource = "event"
	// SourceActiveFetch means the reading came from the active position
	// fallback because the callback carried none.
	SourceActiveFetch AccuracySource = "active_fetch"
)

// IgnoreReason explains why an observed event caused no state change.
type IgnoreReason string

const (
	IgnorePoorAccuracy      IgnoreReason = "poor_accuracy"
	IgnoreSignalDegradation IgnoreReason = "signal_degradation"
	IgnoreDebounced         IgnoreReason = "debounced"
	IgnoreNoSession         IgnoreReason = "no_session"
)

// GeofenceEvent is one append-only audit entry. Every raw event the system
// observes produces exactly one entry, whether or not it changed session
// state, and entries are never mutated once written. Threshold tuning
// depends on this log being complete.
type GeofenceEvent struct {
	ID             string          `json:"id"`
	LocationID     string          `json:"location_id"`
	EventType      Type            `json:"event_type"`
	Timestamp      time.Time       `json:"timestamp"`
	Accuracy       *float64        `json:"accuracy,omitempty"`
	AccuracySource *AccuracySource `json:"accuracy_source,omitempty"`
	Ignored        bool            `json:"ignored"`
	IgnoreReason   *IgnoreReason   `json:"ignore_reason,omitempty"`
}
