package analytics

import (
	"testing"
	"time"

	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/models"
)

func TestComputeSessionStats(t *testing.T) {
	start := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	end := start.Add(45 * time.Minute)
	sess := &models.Session{ID: "s1", StartedAt: start, State: models.SessionActive}

	encounters := []*models.EncounterEvent{
		{ConceptKey: "python", Timestamp: start.Add(time.Minute), Source: models.SourceOCR, Confidence: 0.9},
		{ConceptKey: "python", Timestamp: start.Add(2 * time.Minute), Source: models.SourceAudio, Confidence: 0.7},
		{ConceptKey: "sql", Timestamp: start.Add(3 * time.Minute), Source: models.SourceOCR, Confidence: 0.8},
		{ConceptKey: "docker", Timestamp: start.Add(4 * time.Minute), Source: models.SourceOCR, Confidence: 0.8},
	}
	attention := []*models.AttentionSample{
		{Timestamp: start.Add(time.Minute), Score: 0.8},
		{Timestamp: start.Add(10 * time.Minute), Score: 0.4},
	}
	predictions := []models.IntentPrediction{
		{ID: "p1", Label: models.IntentCoding},
		{ID: "p2", Label: models.IntentCoding},
		{ID: "p3", Label: models.IntentBrowsing},
	}

	stats := ComputeSessionStats(sess, end, encounters, attention, predictions)

	if stats.Duration != 45*time.Minute {
		t.Errorf("duration = %v, want 45m", stats.Duration)
	}
	if stats.UniqueConcepts != 3 {
		t.Errorf("unique concepts = %d, want 3", stats.UniqueConcepts)
	}
	if stats.Encounters != 4 {
		t.Errorf("encounters = %d, want 4", stats.Encounters)
	}
	if stats.AvgAttention == nil {
		t.Fatal("avg attention should be set")
	}
	if diff := *stats.AvgAttention - 0.6; diff < -1e-9 || diff > 1e-9 {
		t.Errorf("avg attention = %v, want 0.6", *stats.AvgAttention)
	}
	if stats.DominantIntent == nil || *stats.DominantIntent != models.IntentCoding {
		t.Errorf("dominant intent = %v, want coding", stats.DominantIntent)
	}
}

func TestSessionStatsNoAttentionSamples(t *testing.T) {
	start := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	sess := &models.Session{ID: "s2", StartedAt: start}

	encounters := []*models.EncounterEvent{
		{ConceptKey: "a", Timestamp: start, Source: models.SourceOCR, Confidence: 1},
		{ConceptKey: "b", Timestamp: start, Source: models.SourceOCR, Confidence: 1},
		{ConceptKey: "c", Timestamp: start, Source: models.SourceOCR, Confidence: 1},
	}

	stats := ComputeSessionStats(sess, start.Add(time.Hour), encounters, nil, nil)
	if stats.UniqueConcepts != 3 {
		t.Errorf("unique concepts = %d, want 3", stats.UniqueConcepts)
	}
	// No samples means no average, not a floor value.
	if stats.AvgAttention != nil {
		t.Errorf("avg attention = %v, want nil", *stats.AvgAttention)
	}
	if stats.DominantIntent != nil {
		t.Errorf("dominant intent = %v, want nil", stats.DominantIntent)
	}
}

type fakeEvents struct {
	encounters []*models.EncounterEvent
	reviews    []*models.ReviewOutcome
}

func (f *fakeEvents) EncountersBySession(string) ([]*models.EncounterEvent, error) {
	return f.encounters, nil
}

func (f *fakeEvents) AttentionBySession(string) ([]*models.AttentionSample, error) {
	return nil, nil
}

func (f *fakeEvents) EncountersInRange(from, to time.Time) ([]*models.EncounterEvent, error) {
	var out []*models.EncounterEvent
	for _, ev := range f.encounters {
		if !ev.Timestamp.Before(from) && ev.Timestamp.Before(to) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeEvents) ReviewsInRange(from, to time.Time) ([]*models.ReviewOutcome, error) {
	var out []*models.ReviewOutcome
	for _, r := range f.reviews {
		if !r.Timestamp.Before(from) && r.Timestamp.Before(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestDailySummary(t *testing.T) {
	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	events := &fakeEvents{
		encounters: []*models.EncounterEvent{
			{ConceptKey: "go", Timestamp: day.Add(9 * time.Hour)},
			{ConceptKey: "go", Timestamp: day.Add(10 * time.Hour)},
			{ConceptKey: "sql", Timestamp: day.Add(11 * time.Hour)},
			{ConceptKey: "offday", Timestamp: day.Add(30 * time.Hour)}, // next day
		},
		reviews: []*models.ReviewOutcome{
			{ConceptKey: "go", Timestamp: day.Add(12 * time.Hour), Quality: 5},
			{ConceptKey: "sql", Timestamp: day.Add(13 * time.Hour), Quality: 3},
		},
	}

	a := New(events, nil, nil)
	summary, err := a.Daily(day)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Date != "2026-03-05" {
		t.Errorf("date = %s, want 2026-03-05", summary.Date)
	}
	if summary.Encounters != 3 {
		t.Errorf("encounters = %d, want 3", summary.Encounters)
	}
	if summary.UniqueConcepts != 2 {
		t.Errorf("unique = %d, want 2", summary.UniqueConcepts)
	}
	if summary.Reviews != 2 {
		t.Errorf("reviews = %d, want 2", summary.Reviews)
	}
	if summary.AvgQuality != 4 {
		t.Errorf("avg quality = %v, want 4", summary.AvgQuality)
	}
}

func TestWeeklyTrend(t *testing.T) {
	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	events := &fakeEvents{
		encounters: []*models.EncounterEvent{
			{ConceptKey: "go", Timestamp: day.Add(-2*24*time.Hour + 9*time.Hour)},
			{ConceptKey: "go", Timestamp: day.Add(9 * time.Hour)},
		},
	}

	a := New(events, nil, nil)
	trend, err := a.WeeklyTrend(day, 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(trend.Days) != 7 {
		t.Fatalf("days = %d, want 7", len(trend.Days))
	}
	if trend.TotalEncounters != 2 {
		t.Errorf("total encounters = %d, want 2", trend.TotalEncounters)
	}
	if trend.ActiveDays != 2 {
		t.Errorf("active days = %d, want 2", trend.ActiveDays)
	}
	// Oldest day first.
	if trend.Days[0].Date != "2026-02-27" {
		t.Errorf("first day = %s, want 2026-02-27", trend.Days[0].Date)
	}
	if trend.Days[6].Date != "2026-03-05" {
		t.Errorf("last day = %s, want 2026-03-05", trend.Days[6].Date)
	}
}
