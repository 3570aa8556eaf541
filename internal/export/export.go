// Package export serializes engine state to a snapshot and restores it.
// A restored engine reproduces the same due ordering the exporting engine
// would have produced.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/models"
)

// exportSessionLimit bounds how many recent sessions a snapshot carries.
const exportSessionLimit = 1000

// ConceptSource exposes the concept state for export and restore.
type ConceptSource interface {
	All() []*models.Concept
	Replace(concepts []*models.Concept)
}

// SessionLister reads persisted sessions for export.
type SessionLister interface {
	List(limit int) ([]*models.Session, error)
}

// IntentSource exposes intent predictions and accuracy for export and
// restore.
type IntentSource interface {
	Predictions() []models.IntentPrediction
	AccuracyReport() *models.AccuracyReport
	Hydrate(preds []models.IntentPrediction)
}

// Exporter builds and applies snapshots.
type Exporter struct {
	concepts ConceptSource
	sessions SessionLister
	intent   IntentSource
	now      func() time.Time
}

// New creates an exporter. sessions and intent may be nil.
func New(concepts ConceptSource, sessions SessionLister, intent IntentSource, now func() time.Time) *Exporter {
	if now == nil {
		now = time.Now
	}
	return &Exporter{concepts: concepts, sessions: sessions, intent: intent, now: now}
}

// Snapshot captures all tracked state. Concepts are ordered by key so two
// exports of the same state are byte-identical.
func (e *Exporter) Snapshot() (*models.Snapshot, error) {
	snap := &models.Snapshot{
		ExportedAt: e.now().UTC(),
		Concepts:   e.concepts.All(),
	}
	if e.sessions != nil {
		sessions, err := e.sessions.List(exportSessionLimit)
		if err != nil {
			return nil, fmt.Errorf("export sessions: %w", err)
		}
		snap.Sessions = sessions
	}
	if e.intent != nil {
		snap.Predictions = e.intent.Predictions()
		snap.Accuracy = e.intent.AccuracyReport()
	}
	return snap, nil
}

// Restore replaces the engine's concept and prediction state with the
// snapshot's contents. Scheduling fields round-trip exactly, so the due
// queue after a restore matches the exporting engine's.
func (e *Exporter) Restore(snap *models.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("restore: nil snapshot")
	}
	e.concepts.Replace(snap.Concepts)
	if e.intent != nil && len(snap.Predictions) > 0 {
		e.intent.Hydrate(snap.Predictions)
	}
	return nil
}

// WriteJSON streams the snapshot as indented JSON.
func (e *Exporter) WriteJSON(w io.Writer) error {
	snap, err := e.Snapshot()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// ReadJSON decodes a snapshot and restores it.
func (e *Exporter) ReadJSON(r io.Reader) error {
	var snap models.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	return e.Restore(&snap)
}
