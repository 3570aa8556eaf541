// Package intent tracks how well the intent classifier's predictions match
// explicit user feedback. It is fully independent of the concept store.
package intent

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/models"
)

// ErrPredictionNotFound is returned when feedback references an unknown
// prediction id.
var ErrPredictionNotFound = errors.New("prediction not found")

// PredictionLog persists predictions and feedback.
type PredictionLog interface {
	Insert(p *models.IntentPrediction) error
	SetFeedback(id string, correct bool) error
}

// Options tunes a Tracker.
type Options struct {
	// SessionID, when set, tags every prediction with the active session.
	SessionID func() string
	Logger    *slog.Logger
	Now       func() time.Time
}

// Tracker is a rolling accuracy tracker for predicted intent labels.
type Tracker struct {
	mu    sync.Mutex
	byID  map[string]*models.IntentPrediction
	order []string // insertion order, for stable exports
	log   PredictionLog
	opts  Options
}

// NewTracker creates a tracker backed by the given prediction log
// (nil for in-memory only).
func NewTracker(log PredictionLog, opts Options) *Tracker {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Tracker{
		byID: make(map[string]*models.IntentPrediction),
		log:  log,
		opts: opts,
	}
}

// RecordPrediction stores one classifier output and returns its id.
func (t *Tracker) RecordPrediction(label models.IntentLabel, confidence float64) (string, error) {
	if !label.IsValid() {
		return "", fmt.Errorf("%w: %d", models.ErrInvalidLabel, int(label))
	}
	if confidence < 0 || confidence > 1 {
		return "", fmt.Errorf("%w: confidence %v", models.ErrInvalidConfidence, confidence)
	}

	p := &models.IntentPrediction{
		ID:         uuid.New().String(),
		Timestamp:  t.opts.Now().UTC().Truncate(time.Second),
		Label:      label,
		Confidence: confidence,
	}
	if t.opts.SessionID != nil {
		p.SessionID = t.opts.SessionID()
	}

	t.mu.Lock()
	t.byID[p.ID] = p
	t.order = append(t.order, p.ID)
	t.mu.Unlock()

	if t.log != nil {
		if err := t.log.Insert(p); err != nil {
			t.opts.Logger.Error("persist prediction failed", "id", p.ID, "error", err)
		}
	}
	return p.ID, nil
}

// RecordFeedback resolves a prediction with the user's verdict.
func (t *Tracker) RecordFeedback(id string, correct bool) error {
	t.mu.Lock()
	p, ok := t.byID[id]
	if ok {
		v := correct
		p.Feedback = &v
	}
	t.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrPredictionNotFound, id)
	}

	if t.log != nil {
		if err := t.log.SetFeedback(id, correct); err != nil {
			t.opts.Logger.Error("persist feedback failed", "id", id, "error", err)
		}
	}
	return nil
}

// Hydrate seeds the tracker from persisted predictions. Call once at
// startup, before any producer runs.
func (t *Tracker) Hydrate(preds []models.IntentPrediction) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range preds {
		p := preds[i]
		if _, ok := t.byID[p.ID]; ok {
			continue
		}
		t.byID[p.ID] = &p
		t.order = append(t.order, p.ID)
	}
}

// Predictions returns all predictions in insertion order.
func (t *Tracker) Predictions() []models.IntentPrediction {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.IntentPrediction, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.byID[id])
	}
	return out
}

// AccuracyReport computes per-label accuracy over resolved predictions,
// the overall average, and the best and worst performing labels.
func (t *Tracker) AccuracyReport() *models.AccuracyReport {
	t.mu.Lock()
	defer t.mu.Unlock()

	type tally struct{ total, correct int }
	tallies := make(map[models.IntentLabel]*tally)
	resolved, unresolved, correct := 0, 0, 0

	for _, p := range t.byID {
		if p.Feedback == nil {
			unresolved++
			continue
		}
		resolved++
		tl := tallies[p.Label]
		if tl == nil {
			tl = &tally{}
			tallies[p.Label] = tl
		}
		tl.total++
		if *p.Feedback {
			tl.correct++
			correct++
		}
	}

	report := &models.AccuracyReport{Resolved: resolved, Unresolved: unresolved}
	if resolved > 0 {
		report.Overall = float64(correct) / float64(resolved)
	}

	for label, tl := range tallies {
		report.PerLabel = append(report.PerLabel, models.LabelAccuracy{
			Label:    label,
			Total:    tl.total,
			Correct:  tl.correct,
			Accuracy: float64(tl.correct) / float64(tl.total),
		})
	}
	sort.Slice(report.PerLabel, func(i, j int) bool {
		return report.PerLabel[i].Label < report.PerLabel[j].Label
	})

	// Best/worst over labels with at least one resolved prediction.
	var best, worst *models.LabelAccuracy
	for i := range report.PerLabel {
		la := &report.PerLabel[i]
		if best == nil || la.Accuracy > best.Accuracy {
			best = la
		}
		if worst == nil || la.Accuracy < worst.Accuracy {
			worst = la
		}
	}
	if best != nil {
		report.BestLabel = &best.Label
	}
	if worst != nil {
		report.WorstLabel = &worst.Label
	}
	return report
}
