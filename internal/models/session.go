package models

import "time"

// SessionState is the lifecycle state of a tracking session.
type SessionState string

const (
	SessionActive SessionState = "ACTIVE"
	SessionEnded  SessionState = "ENDED"
)

// Session is a bounded window of tracked activity.
type Session struct {
	ID        string       `json:"id"`
	StartedAt time.Time    `json:"startedAt"`
	EndedAt   *time.Time   `json:"endedAt,omitempty"`
	State     SessionState `json:"state"`
}

// SessionStats is the rollup computed when a session ends. It is always
// derived from raw events for the session, never mutated incrementally.
type SessionStats struct {
	SessionID      string        `json:"sessionId"`
	Duration       time.Duration `json:"durationNs"`
	UniqueConcepts int           `json:"uniqueConcepts"`
	Encounters     int           `json:"encounters"`
	// AvgAttention is nil when no attention samples were recorded.
	// It is never defaulted to a nonzero floor.
	AvgAttention    *float64     `json:"avgAttention"`
	AttentionCount  int          `json:"attentionCount"`
	DominantIntent  *IntentLabel `json:"dominantIntent,omitempty"`
	PredictionCount int          `json:"predictionCount"`
}

// DailySummary aggregates one calendar day from raw events.
type DailySummary struct {
	Date           string  `json:"date"` // YYYY-MM-DD
	Encounters     int     `json:"encounters"`
	UniqueConcepts int     `json:"uniqueConcepts"`
	Reviews        int     `json:"reviews"`
	Sessions       int     `json:"sessions"`
	AvgQuality     float64 `json:"avgQuality"`
}

// WeeklySummary is a trend of daily summaries over a trailing range.
type WeeklySummary struct {
	Days            []DailySummary `json:"days"`
	TotalEncounters int            `json:"totalEncounters"`
	TotalReviews    int            `json:"totalReviews"`
	ActiveDays      int            `json:"activeDays"`
}
