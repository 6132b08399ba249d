package pipeline

import "time"

// Per-source health statuses.
const (
	StatusHealthy = "healthy"
	StatusEmpty   = "empty"
	StatusError   = "error"
)

// SourceHealth records the outcome of a source's most recent fetch.
type SourceHealth struct {
	Status     string    `json:"status"`
	LastCheck  time.Time `json:"lastCheck"`
	EventCount int       `json:"eventCount"`
	Error      string    `json:"error,omitempty"`
}
