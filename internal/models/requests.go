package models

import "time"

// SubmitReviewRequest is the payload for POST /reviews.
type SubmitReviewRequest struct {
	ConceptKey string `json:"conceptKey"`
	Quality    int    `json:"quality"`
}

// ReviewResult is returned from POST /reviews.
type ReviewResult struct {
	ConceptKey   string    `json:"conceptKey"`
	Quality      int       `json:"quality"`
	IntervalDays float64   `json:"intervalDays"`
	Ease         float64   `json:"ease"`
	Repetitions  int       `json:"repetitions"`
	NextReviewAt time.Time `json:"nextReviewAt"`
}

// AddEncounterRequest is the payload for POST /encounters (explicit add).
type AddEncounterRequest struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Context    string  `json:"context,omitempty"`
}

// AddEncounterResponse is returned from POST /encounters.
type AddEncounterResponse struct {
	ConceptKey string `json:"conceptKey"`
	Accepted   bool   `json:"accepted"`
}

// DueConceptsResponse is returned from GET /concepts/due.
type DueConceptsResponse struct {
	AsOf     time.Time  `json:"asOf"`
	Concepts []*Concept `json:"concepts"`
}

// RecordPredictionRequest is the payload for POST /intent/predictions.
type RecordPredictionRequest struct {
	Label      IntentLabel `json:"label"`
	Confidence float64     `json:"confidence"`
}

// RecordPredictionResponse is returned from POST /intent/predictions.
type RecordPredictionResponse struct {
	ID string `json:"id"`
}

// PredictionFeedbackRequest is the payload for
// POST /intent/predictions/{id}/feedback.
type PredictionFeedbackRequest struct {
	Correct bool `json:"correct"`
}

// StartSessionResponse is returned from POST /sessions/start.
type StartSessionResponse struct {
	SessionID string    `json:"sessionId"`
	StartedAt time.Time `json:"startedAt"`
}

// StopSessionResponse is returned from POST /sessions/stop.
type StopSessionResponse struct {
	SessionID string        `json:"sessionId"`
	Stats     *SessionStats `json:"stats"`
}

// RecordAttentionRequest is the payload for POST /sessions/attention.
type RecordAttentionRequest struct {
	Score float64 `json:"score"`
}

// Snapshot is the serializable export of engine state for backup and
// import tooling.
type Snapshot struct {
	ExportedAt  time.Time          `json:"exportedAt"`
	Concepts    []*Concept         `json:"concepts"`
	Sessions    []*Session         `json:"sessions"`
	Predictions []IntentPrediction `json:"predictions"`
	Accuracy    *AccuracyReport    `json:"accuracy"`
}

// IngestCounters exposes ingester drop/reject/coalesce totals for the
// health endpoint.
type IngestCounters struct {
	Enqueued  uint64 `json:"enqueued"`
	Applied   uint64 `json:"applied"`
	Dropped   uint64 `json:"dropped"`
	Rejected  uint64 `json:"rejected"`
	Coalesced uint64 `json:"coalesced"`
}

// HealthResponse is returned from GET /health.
type HealthResponse struct {
	Status       string         `json:"status"`
	DB           ServiceCheck   `json:"db"`
	ConceptCount int            `json:"conceptCount"`
	Ingest       IngestCounters `json:"ingest"`
	MemoryOnly   bool           `json:"memoryOnly"`
}

type ServiceCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
