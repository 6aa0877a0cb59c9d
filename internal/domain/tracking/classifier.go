package tracking

import "github.com/feldzeit/geoattend/internal/domain/event"

// Verdict is the classifier's trust level for an exit signal.
type Verdict string

const (
	// VerdictHighConfidence finalizes the session immediately.
	VerdictHighConfidence Verdict = "high_confidence"
	// VerdictPlausible opens (or refreshes) the hysteresis window.
	VerdictPlausible Verdict = "plausible"
	// VerdictUntrustworthy discards the signal.
	VerdictUntrustworthy Verdict = "untrustworthy"
)

// ExitClassification carries the verdict plus the ignore reason for
// untrustworthy signals.
type ExitClassification struct {
	Verdict Verdict
	Reason  *event.IgnoreReason
}

// ClassifyExit decides how much to trust an exit signal given its accuracy
// and the session's check-in accuracy baseline.
//
// A very accurate reading is trusted even when it exceeds the degradation
// ratio: absolute accuracy beats a ratio against a possibly stale baseline.
// A missing reading is never untrustworthy by itself; lacking signal-quality
// data falls through to plausible, so richer data can only make the system
// more cautious, never less.
func ClassifyExit(accuracy, checkinAccuracy *float64, th Thresholds) ExitClassification {
	if accuracy == nil {
		return ExitClassification{Verdict: VerdictPlausible}
	}

	if *accuracy < th.ImmediateThresholdM {
		return ExitClassification{Verdict: VerdictHighConfidence}
	}

	if *accuracy > th.PoorThresholdM {
		reason := event.IgnorePoorAccuracy
		return ExitClassification{Verdict: VerdictUntrustworthy, Reason: &reason}
	}

	if checkinAccuracy != nil && *accuracy > *checkinAccuracy*th.DegradationFactor {
		reason := event.IgnoreSignalDegradation
		return ExitClassification{Verdict: VerdictUntrustworthy, Reason: &reason}
	}

	return ExitClassification{Verdict: VerdictPlausible}
}
