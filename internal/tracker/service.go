// Package tracker is the main facade over the memory and scheduling
// engine. The API layer and any embedding caller talk only to Service;
// the packages underneath never see each other directly.
package tracker

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/analytics"
	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/concept"
	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/export"
	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/ingest"
	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/intent"
	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/models"
	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/schedule"
	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/session"
	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/store"
)

// Service wires the concept store, ingester, intent tracker, session
// lifecycle, analytics and export behind one surface.
type Service struct {
	concepts  *concept.Store
	ingester  *ingest.Ingester
	intents   *intent.Tracker
	lifecycle *session.Manager
	analytics *analytics.Analytics
	exporter  *export.Exporter
	sessions  *store.SessionStore
	db        *store.DB
	logger    *slog.Logger
}

// NewService creates a service over already-constructed components.
// sessions and db may be nil for in-memory use.
func NewService(
	concepts *concept.Store,
	ingester *ingest.Ingester,
	intents *intent.Tracker,
	lifecycle *session.Manager,
	an *analytics.Analytics,
	exporter *export.Exporter,
	sessions *store.SessionStore,
	db *store.DB,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		concepts:  concepts,
		ingester:  ingester,
		intents:   intents,
		lifecycle: lifecycle,
		analytics: an,
		exporter:  exporter,
		sessions:  sessions,
		db:        db,
		logger:    logger,
	}
}

// AddEncounter validates and enqueues one explicit encounter.
func (s *Service) AddEncounter(req *models.AddEncounterRequest) (*models.AddEncounterResponse, error) {
	key, err := concept.NormalizeKey(req.Text)
	if err != nil {
		return nil, err
	}
	err = s.ingester.Ingest(models.EncounterCandidate{
		Text:       req.Text,
		Confidence: req.Confidence,
		Source:     models.SourceReview,
		Context:    req.Context,
	})
	if err != nil {
		return nil, err
	}
	return &models.AddEncounterResponse{ConceptKey: key, Accepted: true}, nil
}

// SubmitReview applies an explicit review to a tracked concept.
func (s *Service) SubmitReview(req *models.SubmitReviewRequest) (*models.ReviewResult, error) {
	key, err := concept.NormalizeKey(req.ConceptKey)
	if err != nil {
		return nil, err
	}
	outcome, c, err := s.concepts.ApplyReview(key, schedule.Quality(req.Quality))
	if err != nil {
		return nil, err
	}
	s.logger.Info("review applied",
		"concept", key, "quality", req.Quality, "interval_days", outcome.IntervalDays)
	return &models.ReviewResult{
		ConceptKey:   key,
		Quality:      outcome.Quality,
		IntervalDays: outcome.IntervalDays,
		Ease:         outcome.Ease,
		Repetitions:  outcome.Repetitions,
		NextReviewAt: c.NextReviewAt,
	}, nil
}

// DueConcepts returns the review queue as of the given time.
func (s *Service) DueConcepts(asOf time.Time, limit int) *models.DueConceptsResponse {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	return &models.DueConceptsResponse{
		AsOf:     asOf,
		Concepts: s.concepts.GetDue(asOf, limit),
	}
}

// GetConcept returns one concept by key.
func (s *Service) GetConcept(key string) (*models.Concept, error) {
	normalized, err := concept.NormalizeKey(key)
	if err != nil {
		return nil, err
	}
	return s.concepts.Get(normalized)
}

// StartSession begins a tracking session.
func (s *Service) StartSession() (*models.StartSessionResponse, error) {
	sess, err := s.lifecycle.Start()
	if err != nil {
		return nil, err
	}
	return &models.StartSessionResponse{SessionID: sess.ID, StartedAt: sess.StartedAt}, nil
}

// StopSession ends the active session and returns its rollup.
func (s *Service) StopSession() (*models.StopSessionResponse, error) {
	stats, err := s.lifecycle.Stop()
	if err != nil {
		return nil, err
	}
	return &models.StopSessionResponse{SessionID: stats.SessionID, Stats: stats}, nil
}

// RecordAttention appends one attention sample to the active session.
func (s *Service) RecordAttention(score float64) error {
	return s.lifecycle.RecordAttention(score)
}

// SessionStats returns the persisted rollup for an ended session, or the
// live rollup for the active one.
func (s *Service) SessionStats(id string) (*models.SessionStats, error) {
	if current := s.lifecycle.Current(); current != nil && current.ID == id {
		return s.analytics.SessionStats(current, time.Now().UTC())
	}
	if s.sessions == nil {
		return nil, fmt.Errorf("session store unavailable")
	}
	return s.sessions.Stats(id)
}

// RecordPrediction stores one intent classifier output.
func (s *Service) RecordPrediction(req *models.RecordPredictionRequest) (*models.RecordPredictionResponse, error) {
	id, err := s.intents.RecordPrediction(req.Label, req.Confidence)
	if err != nil {
		return nil, err
	}
	return &models.RecordPredictionResponse{ID: id}, nil
}

// RecordPredictionFeedback resolves a prediction with the user's verdict.
func (s *Service) RecordPredictionFeedback(id string, correct bool) error {
	return s.intents.RecordFeedback(id, correct)
}

// IntentAccuracy returns the rolling accuracy report.
func (s *Service) IntentAccuracy() *models.AccuracyReport {
	return s.intents.AccuracyReport()
}

// DailySummary returns the rollup for one calendar day.
func (s *Service) DailySummary(date time.Time) (*models.DailySummary, error) {
	return s.analytics.Daily(date)
}

// WeeklyTrend returns per-day rollups for the trailing window.
func (s *Service) WeeklyTrend(days int) (*models.WeeklySummary, error) {
	return s.analytics.WeeklyTrend(time.Now().UTC(), days)
}

// Export captures all tracked state as a snapshot.
func (s *Service) Export() (*models.Snapshot, error) {
	return s.exporter.Snapshot()
}

// Import replaces tracked state with the snapshot's contents.
func (s *Service) Import(snap *models.Snapshot) error {
	return s.exporter.Restore(snap)
}

// Health reports store reachability, concept count and ingest counters.
func (s *Service) Health() *models.HealthResponse {
	resp := &models.HealthResponse{
		Status:       "ok",
		DB:           models.ServiceCheck{Status: "ok"},
		ConceptCount: s.concepts.Count(),
		Ingest:       s.ingester.Counters(),
		MemoryOnly:   s.concepts.MemoryOnly(),
	}
	if s.db == nil {
		resp.DB = models.ServiceCheck{Status: "disabled"}
	} else if _, err := s.db.ConceptCount(); err != nil {
		// A real query, not a ping, so a corrupt or locked file shows up.
		resp.Status = "degraded"
		resp.DB = models.ServiceCheck{Status: "error", Message: err.Error()}
	}
	if resp.MemoryOnly {
		resp.Status = "degraded"
	}
	return resp
}

// Close flushes in-flight work and stops background components.
func (s *Service) Close() {
	if s.lifecycle.Current() != nil {
		if _, err := s.lifecycle.Stop(); err != nil {
			s.logger.Warn("stop session on close failed", "error", err)
		}
	}
	s.ingester.Stop()
}
