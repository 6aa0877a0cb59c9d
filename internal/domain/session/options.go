package session

// ListOptions provides filtering options for listing sessions.
type ListOptions struct {
	LocationID string
	States     []State
	Limit      int
}

// DailyTotal is one day's confirmed attendance, derived from completed
// sessions. This is the shape the daily-submission pipeline consumes.
type DailyTotal struct {
	Date         string `json:"date"` // YYYY-MM-DD, from clock-in
	TotalMinutes int64  `json:"total_minutes"`
	Sessions     int    `json:"sessions"`
}
