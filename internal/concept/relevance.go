package concept

import (
	"math"
	"time"

	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/models"
)

// relevanceDecayDays is the time constant of the recency decay: a concept
// untouched for this many days loses ~63% of its recency weight.
const relevanceDecayDays = 7.0

// relevanceScore ranks a concept for display. It is a UI-priority
// heuristic, not a recall-probability estimate: monotonic in encounter
// count, decaying with time since last seen, nudged by the confidence of
// the latest detection. Always in [0,1].
func relevanceScore(c *models.Concept, latestConfidence float64, now time.Time) float64 {
	count := 1.0 - 1.0/(1.0+math.Log1p(float64(c.EncounterCount)))

	idleDays := now.Sub(c.LastSeen).Hours() / 24
	if idleDays < 0 {
		idleDays = 0
	}
	recency := math.Exp(-idleDays / relevanceDecayDays)

	// Confidence contributes a 20% band so low-confidence detections do
	// not dominate the ranking.
	score := count * recency * (0.8 + 0.2*latestConfidence)
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}
