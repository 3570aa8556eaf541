package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/models"
)

// PredictionStore persists intent predictions and their feedback.
type PredictionStore struct {
	db *DB
}

// NewPredictionStore creates a new prediction store.
func NewPredictionStore(db *DB) *PredictionStore {
	return &PredictionStore{db: db}
}

// Insert writes one prediction.
func (s *PredictionStore) Insert(p *models.IntentPrediction) error {
	_, err := s.db.Exec(`
		INSERT INTO intent_predictions (id, ts, label, confidence, session_id)
		VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.Timestamp.Unix(), p.Label.String(), p.Confidence, nullable(p.SessionID))
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

// SetFeedback resolves a prediction with user feedback.
func (s *PredictionStore) SetFeedback(id string, correct bool) error {
	feedback := 0
	if correct {
		feedback = 1
	}
	_, err := s.db.Exec(`
		UPDATE intent_predictions SET feedback = ? WHERE id = ?
	`, feedback, id)
	if err != nil {
		return fmt.Errorf("set prediction feedback: %w", err)
	}
	return nil
}

// BySession returns the predictions tagged with a session, oldest first.
func (s *PredictionStore) BySession(sessionID string) ([]models.IntentPrediction, error) {
	rows, err := s.db.Query(`
		SELECT id, ts, label, confidence, feedback, session_id
		FROM intent_predictions WHERE session_id = ? ORDER BY ts
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query session predictions: %w", err)
	}
	defer rows.Close()
	return collectPredictions(rows)
}

// All returns every stored prediction, oldest first.
func (s *PredictionStore) All() ([]models.IntentPrediction, error) {
	rows, err := s.db.Query(`
		SELECT id, ts, label, confidence, feedback, session_id
		FROM intent_predictions ORDER BY ts
	`)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()
	return collectPredictions(rows)
}

func collectPredictions(rows *sql.Rows) ([]models.IntentPrediction, error) {
	var preds []models.IntentPrediction
	for rows.Next() {
		var p models.IntentPrediction
		var ts int64
		var label string
		var feedback sql.NullInt64
		var sessID sql.NullString
		if err := rows.Scan(&p.ID, &ts, &label, &p.Confidence, &feedback, &sessID); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		p.Timestamp = time.Unix(ts, 0).UTC()
		if parsed, err := models.ParseIntentLabel(label); err == nil {
			p.Label = parsed
		}
		if feedback.Valid {
			v := feedback.Int64 == 1
			p.Feedback = &v
		}
		p.SessionID = sessID.String
		preds = append(preds, p)
	}
	return preds, rows.Err()
}
