package event

// ListOptions provides filtering options for listing and summarizing events.
type ListOptions struct {
	LocationID string
	Limit      int
}

// Summary is the read-only telemetry export over the event log.
type Summary struct {
	TotalEvents     int                  `json:"total_events"`
	IgnoredEvents   int                  `json:"ignored_events"`
	MinAccuracy     *float64             `json:"min_accuracy,omitempty"`
	MaxAccuracy     *float64             `json:"max_accuracy,omitempty"`
	AvgAccuracy     *float64             `json:"avg_accuracy,omitempty"`
	IgnoredByReason map[IgnoreReason]int `json:"ignored_by_reason"`
}
