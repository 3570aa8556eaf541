// Package analytics derives session, daily and weekly rollups from the raw
// event log. Summaries are always recomputed on demand from immutable
// events; nothing here mutates aggregates in place, so concurrent writers
// cannot corrupt them.
package analytics

import (
	"fmt"
	"time"

	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/models"
)

// EventSource reads raw events back out of the event log.
type EventSource interface {
	EncountersBySession(sessionID string) ([]*models.EncounterEvent, error)
	AttentionBySession(sessionID string) ([]*models.AttentionSample, error)
	EncountersInRange(from, to time.Time) ([]*models.EncounterEvent, error)
	ReviewsInRange(from, to time.Time) ([]*models.ReviewOutcome, error)
}

// PredictionSource reads intent predictions for a session.
type PredictionSource interface {
	BySession(sessionID string) ([]models.IntentPrediction, error)
}

// SessionCounter counts sessions started in a range.
type SessionCounter interface {
	CountInRange(from, to time.Time) (int, error)
}

// Analytics computes rollups over raw events.
type Analytics struct {
	events      EventSource
	predictions PredictionSource
	sessions    SessionCounter
}

// New creates an Analytics over the given sources.
func New(events EventSource, predictions PredictionSource, sessions SessionCounter) *Analytics {
	return &Analytics{events: events, predictions: predictions, sessions: sessions}
}

// SessionStats computes the rollup for an ended session from its raw
// events.
func (a *Analytics) SessionStats(sess *models.Session, endedAt time.Time) (*models.SessionStats, error) {
	encounters, err := a.events.EncountersBySession(sess.ID)
	if err != nil {
		return nil, fmt.Errorf("session encounters: %w", err)
	}
	attention, err := a.events.AttentionBySession(sess.ID)
	if err != nil {
		return nil, fmt.Errorf("session attention: %w", err)
	}
	var predictions []models.IntentPrediction
	if a.predictions != nil {
		predictions, err = a.predictions.BySession(sess.ID)
		if err != nil {
			return nil, fmt.Errorf("session predictions: %w", err)
		}
	}
	return ComputeSessionStats(sess, endedAt, encounters, attention, predictions), nil
}

// ComputeSessionStats is the pure rollup over already-loaded events.
func ComputeSessionStats(
	sess *models.Session,
	endedAt time.Time,
	encounters []*models.EncounterEvent,
	attention []*models.AttentionSample,
	predictions []models.IntentPrediction,
) *models.SessionStats {
	stats := &models.SessionStats{
		SessionID:       sess.ID,
		Duration:        endedAt.Sub(sess.StartedAt),
		Encounters:      len(encounters),
		AttentionCount:  len(attention),
		PredictionCount: len(predictions),
	}

	unique := make(map[string]struct{}, len(encounters))
	for _, ev := range encounters {
		unique[ev.ConceptKey] = struct{}{}
	}
	stats.UniqueConcepts = len(unique)

	// Average attention stays nil when no samples were recorded. An empty
	// session reports "no data", not a fabricated floor value.
	if len(attention) > 0 {
		sum := 0.0
		for _, s := range attention {
			sum += s.Score
		}
		avg := sum / float64(len(attention))
		stats.AvgAttention = &avg
	}

	if label, ok := dominantIntent(predictions); ok {
		stats.DominantIntent = &label
	}
	return stats
}

// dominantIntent returns the mode of the predicted labels. Ties break
// toward the label seen first, which keeps the result stable for a fixed
// event order.
func dominantIntent(predictions []models.IntentPrediction) (models.IntentLabel, bool) {
	if len(predictions) == 0 {
		return models.IntentUnknown, false
	}
	counts := make(map[models.IntentLabel]int)
	var best models.IntentLabel
	bestCount := 0
	for _, p := range predictions {
		counts[p.Label]++
		if counts[p.Label] > bestCount {
			best = p.Label
			bestCount = counts[p.Label]
		}
	}
	return best, true
}

// Daily derives the summary for one calendar day (UTC).
func (a *Analytics) Daily(date time.Time) (*models.DailySummary, error) {
	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	encounters, err := a.events.EncountersInRange(from, to)
	if err != nil {
		return nil, fmt.Errorf("daily encounters: %w", err)
	}
	reviews, err := a.events.ReviewsInRange(from, to)
	if err != nil {
		return nil, fmt.Errorf("daily reviews: %w", err)
	}
	sessionCount := 0
	if a.sessions != nil {
		sessionCount, err = a.sessions.CountInRange(from, to)
		if err != nil {
			return nil, fmt.Errorf("daily sessions: %w", err)
		}
	}

	summary := &models.DailySummary{
		Date:       from.Format("2006-01-02"),
		Encounters: len(encounters),
		Reviews:    len(reviews),
		Sessions:   sessionCount,
	}

	unique := make(map[string]struct{}, len(encounters))
	for _, ev := range encounters {
		unique[ev.ConceptKey] = struct{}{}
	}
	summary.UniqueConcepts = len(unique)

	if len(reviews) > 0 {
		sum := 0
		for _, r := range reviews {
			sum += r.Quality
		}
		summary.AvgQuality = float64(sum) / float64(len(reviews))
	}
	return summary, nil
}

// WeeklyTrend derives daily summaries for the trailing days ending at
// asOf's day, oldest first.
func (a *Analytics) WeeklyTrend(asOf time.Time, days int) (*models.WeeklySummary, error) {
	if days <= 0 {
		days = 7
	}
	trend := &models.WeeklySummary{}
	for d := days - 1; d >= 0; d-- {
		daily, err := a.Daily(asOf.AddDate(0, 0, -d))
		if err != nil {
			return nil, err
		}
		trend.Days = append(trend.Days, *daily)
		trend.TotalEncounters += daily.Encounters
		trend.TotalReviews += daily.Reviews
		if daily.Encounters > 0 || daily.Reviews > 0 {
			trend.ActiveDays++
		}
	}
	return trend, nil
}
