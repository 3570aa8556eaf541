package intent

import (
	"errors"
	"sync"
	"testing"

	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/models"
)

func TestRecordPredictionValidation(t *testing.T) {
	tr := NewTracker(nil, Options{})

	if _, err := tr.RecordPrediction(models.IntentLabel(99), 0.5); !errors.Is(err, models.ErrInvalidLabel) {
		t.Errorf("bad label: expected ErrInvalidLabel, got %v", err)
	}
	if _, err := tr.RecordPrediction(models.IntentCoding, 1.5); !errors.Is(err, models.ErrInvalidConfidence) {
		t.Errorf("bad confidence: expected ErrInvalidConfidence, got %v", err)
	}

	id, err := tr.RecordPrediction(models.IntentCoding, 0.8)
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("expected non-empty prediction id")
	}
}

func TestRecordFeedbackUnknownID(t *testing.T) {
	tr := NewTracker(nil, Options{})
	if err := tr.RecordFeedback("no-such-id", true); !errors.Is(err, ErrPredictionNotFound) {
		t.Errorf("expected ErrPredictionNotFound, got %v", err)
	}
}

func TestAccuracyReport(t *testing.T) {
	tr := NewTracker(nil, Options{})

	record := func(label models.IntentLabel, correct bool) {
		t.Helper()
		id, err := tr.RecordPrediction(label, 0.9)
		if err != nil {
			t.Fatal(err)
		}
		if err := tr.RecordFeedback(id, correct); err != nil {
			t.Fatal(err)
		}
	}

	// coding: 3/4 correct, browsing: 1/2, idle: 0/1
	record(models.IntentCoding, true)
	record(models.IntentCoding, true)
	record(models.IntentCoding, true)
	record(models.IntentCoding, false)
	record(models.IntentBrowsing, true)
	record(models.IntentBrowsing, false)
	record(models.IntentIdle, false)

	// One unresolved prediction; excluded from accuracy.
	if _, err := tr.RecordPrediction(models.IntentWriting, 0.5); err != nil {
		t.Fatal(err)
	}

	report := tr.AccuracyReport()
	if report.Resolved != 7 || report.Unresolved != 1 {
		t.Errorf("resolved/unresolved = %d/%d, want 7/1", report.Resolved, report.Unresolved)
	}
	wantOverall := 4.0 / 7.0
	if diff := report.Overall - wantOverall; diff < -1e-9 || diff > 1e-9 {
		t.Errorf("overall = %v, want %v", report.Overall, wantOverall)
	}
	if report.BestLabel == nil || *report.BestLabel != models.IntentCoding {
		t.Errorf("best label = %v, want coding", report.BestLabel)
	}
	if report.WorstLabel == nil || *report.WorstLabel != models.IntentIdle {
		t.Errorf("worst label = %v, want idle", report.WorstLabel)
	}

	byLabel := make(map[models.IntentLabel]models.LabelAccuracy)
	for _, la := range report.PerLabel {
		byLabel[la.Label] = la
	}
	if la := byLabel[models.IntentCoding]; la.Total != 4 || la.Correct != 3 {
		t.Errorf("coding tally = %d/%d, want 3/4", la.Correct, la.Total)
	}
}

func TestEmptyReport(t *testing.T) {
	tr := NewTracker(nil, Options{})
	report := tr.AccuracyReport()
	if report.Overall != 0 || report.Resolved != 0 {
		t.Errorf("empty report should have zero overall, got %+v", report)
	}
	if report.BestLabel != nil || report.WorstLabel != nil {
		t.Error("empty report should have no best/worst labels")
	}
}

func TestConcurrentRecording(t *testing.T) {
	tr := NewTracker(nil, Options{})
	labels := []models.IntentLabel{
		models.IntentStudying, models.IntentCoding, models.IntentWriting, models.IntentBrowsing,
	}

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for n := 0; n < 250; n++ {
				id, err := tr.RecordPrediction(labels[p], 0.7)
				if err != nil {
					t.Error(err)
					return
				}
				if err := tr.RecordFeedback(id, n%2 == 0); err != nil {
					t.Error(err)
					return
				}
			}
		}(p)
	}
	wg.Wait()

	report := tr.AccuracyReport()
	if report.Resolved != 1000 {
		t.Errorf("resolved = %d, want 1000", report.Resolved)
	}
	if len(tr.Predictions()) != 1000 {
		t.Errorf("predictions = %d, want 1000", len(tr.Predictions()))
	}
}

func TestSessionTagging(t *testing.T) {
	tr := NewTracker(nil, Options{SessionID: func() string { return "sess-7" }})
	id, err := tr.RecordPrediction(models.IntentStudying, 0.6)
	if err != nil {
		t.Fatal(err)
	}
	preds := tr.Predictions()
	if len(preds) != 1 || preds[0].ID != id {
		t.Fatal("prediction missing")
	}
	if preds[0].SessionID != "sess-7" {
		t.Errorf("session id = %q, want sess-7", preds[0].SessionID)
	}
}

func TestParseIntentLabelTable(t *testing.T) {
	for _, name := range []string{"studying", "coding", "writing", "browsing", "idle", "unknown"} {
		label, err := models.ParseIntentLabel(name)
		if err != nil {
			t.Fatalf("parse %q: %v", name, err)
		}
		if label.String() != name {
			t.Errorf("round-trip %q -> %q", name, label.String())
		}
	}
	if _, err := models.ParseIntentLabel("daydreaming"); !errors.Is(err, models.ErrInvalidLabel) {
		t.Errorf("expected ErrInvalidLabel, got %v", err)
	}
}
