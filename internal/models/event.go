package models

import (
	"fmt"
	"time"
)

// Source identifies which producer observed an encounter.
type Source string

const (
	SourceOCR    Source = "passive-ocr"
	SourceAudio  Source = "passive-audio"
	SourceWebcam Source = "passive-webcam"
	SourceReview Source = "explicit-review"
)

var validSources = map[Source]bool{
	SourceOCR:    true,
	SourceAudio:  true,
	SourceWebcam: true,
	SourceReview: true,
}

func (s Source) IsValid() bool {
	return validSources[s]
}

// EncounterEvent records one observation of a concept. Events are immutable
// and append-only; they are written exactly once by the ingester.
type EncounterEvent struct {
	ConceptKey string    `json:"conceptKey"`
	Timestamp  time.Time `json:"timestamp"`
	Source     Source    `json:"source"`
	Confidence float64   `json:"confidence"`
	Context    string    `json:"context,omitempty"`
	SessionID  string    `json:"sessionId,omitempty"`
}

// Validate rejects malformed events at the boundary before any state is
// touched.
func (e *EncounterEvent) Validate() error {
	if e.ConceptKey == "" {
		return fmt.Errorf("%w: encounter event", ErrEmptyConceptKey)
	}
	if !e.Source.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidSource, e.Source)
	}
	if e.Confidence < 0 || e.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v", ErrInvalidConfidence, e.Confidence)
	}
	return nil
}

// EncounterCandidate is what a producer emits from one poll: raw text plus
// the producer's confidence in the detection. The core never sees image or
// audio buffers.
type EncounterCandidate struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Source     Source  `json:"source"`
	Context    string  `json:"context,omitempty"`
}

// AttentionSample is a passively observed attention reading in [0,1],
// recorded against the active session.
type AttentionSample struct {
	Timestamp time.Time `json:"timestamp"`
	Score     float64   `json:"score"`
	SessionID string    `json:"sessionId,omitempty"`
}
