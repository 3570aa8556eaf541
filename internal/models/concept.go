package models

import "time"

// Concept is a normalized unit of knowledge tracked for review.
type Concept struct {
	Key            string    `json:"key"`
	DisplayText    string    `json:"displayText"`
	FirstSeen      time.Time `json:"firstSeen"`
	LastSeen       time.Time `json:"lastSeen"`
	EncounterCount int       `json:"encounterCount"`
	IntervalDays   float64   `json:"intervalDays"`
	Ease           float64   `json:"ease"`
	Repetitions    int       `json:"repetitions"`
	NextReviewAt   time.Time `json:"nextReviewAt"`
	// RelevanceScore is a UI-priority heuristic in [0,1]. It ranks concepts
	// for display and is not a recall-probability estimate.
	RelevanceScore float64 `json:"relevanceScore"`
}

// Clone returns a copy of the concept.
func (c *Concept) Clone() *Concept {
	out := *c
	return &out
}

// Overdue returns how far past its review time the concept is at asOf.
// Negative when the concept is not yet due.
func (c *Concept) Overdue(asOf time.Time) time.Duration {
	return asOf.Sub(c.NextReviewAt)
}

// ReviewOutcome records the result of one explicit review.
type ReviewOutcome struct {
	ConceptKey   string    `json:"conceptKey"`
	Timestamp    time.Time `json:"timestamp"`
	Quality      int       `json:"quality"`
	IntervalDays float64   `json:"intervalDays"`
	Ease         float64   `json:"ease"`
	Repetitions  int       `json:"repetitions"`
}
