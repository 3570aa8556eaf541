package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/models"
)

// EventLog is the append-only log of encounter events, review outcomes and
// attention samples. Rows are written once and never mutated; summaries are
// always derived by re-reading them.
type EventLog struct {
	db *DB
}

// NewEventLog creates a new event log.
func NewEventLog(db *DB) *EventLog {
	return &EventLog{db: db}
}

// AppendEncounter writes one encounter event.
func (l *EventLog) AppendEncounter(ev *models.EncounterEvent) error {
	_, err := l.db.Exec(`
		INSERT INTO encounter_events (concept_key, ts, source, confidence, context, session_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`, ev.ConceptKey, ev.Timestamp.Unix(), string(ev.Source), ev.Confidence,
		nullable(ev.Context), nullable(ev.SessionID))
	if err != nil {
		return fmt.Errorf("append encounter: %w", err)
	}
	return nil
}

// AppendReview writes one review outcome.
func (l *EventLog) AppendReview(ro *models.ReviewOutcome) error {
	_, err := l.db.Exec(`
		INSERT INTO review_outcomes (concept_key, ts, quality, interval_days, ease, repetitions)
		VALUES (?, ?, ?, ?, ?, ?)
	`, ro.ConceptKey, ro.Timestamp.Unix(), ro.Quality, ro.IntervalDays, ro.Ease, ro.Repetitions)
	if err != nil {
		return fmt.Errorf("append review: %w", err)
	}
	return nil
}

// AppendAttention writes one attention sample.
func (l *EventLog) AppendAttention(s *models.AttentionSample) error {
	_, err := l.db.Exec(`
		INSERT INTO attention_samples (ts, score, session_id)
		VALUES (?, ?, ?)
	`, s.Timestamp.Unix(), s.Score, nullable(s.SessionID))
	if err != nil {
		return fmt.Errorf("append attention: %w", err)
	}
	return nil
}

// EncountersBySession returns all encounter events tagged with a session.
func (l *EventLog) EncountersBySession(sessionID string) ([]*models.EncounterEvent, error) {
	rows, err := l.db.Query(`
		SELECT concept_key, ts, source, confidence, context, session_id
		FROM encounter_events WHERE session_id = ? ORDER BY ts
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query session encounters: %w", err)
	}
	defer rows.Close()
	return collectEncounters(rows)
}

// EncountersInRange returns encounter events with from <= ts < to.
func (l *EventLog) EncountersInRange(from, to time.Time) ([]*models.EncounterEvent, error) {
	rows, err := l.db.Query(`
		SELECT concept_key, ts, source, confidence, context, session_id
		FROM encounter_events WHERE ts >= ? AND ts < ? ORDER BY ts
	`, from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("query encounters in range: %w", err)
	}
	defer rows.Close()
	return collectEncounters(rows)
}

// ReviewsInRange returns review outcomes with from <= ts < to.
func (l *EventLog) ReviewsInRange(from, to time.Time) ([]*models.ReviewOutcome, error) {
	rows, err := l.db.Query(`
		SELECT concept_key, ts, quality, interval_days, ease, repetitions
		FROM review_outcomes WHERE ts >= ? AND ts < ? ORDER BY ts
	`, from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("query reviews in range: %w", err)
	}
	defer rows.Close()

	var outcomes []*models.ReviewOutcome
	for rows.Next() {
		var ro models.ReviewOutcome
		var ts int64
		if err := rows.Scan(&ro.ConceptKey, &ts, &ro.Quality, &ro.IntervalDays,
			&ro.Ease, &ro.Repetitions); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		ro.Timestamp = time.Unix(ts, 0).UTC()
		outcomes = append(outcomes, &ro)
	}
	return outcomes, rows.Err()
}

// ReviewHistory returns the review outcomes for one concept, oldest first.
func (l *EventLog) ReviewHistory(conceptKey string) ([]*models.ReviewOutcome, error) {
	rows, err := l.db.Query(`
		SELECT concept_key, ts, quality, interval_days, ease, repetitions
		FROM review_outcomes WHERE concept_key = ? ORDER BY ts
	`, conceptKey)
	if err != nil {
		return nil, fmt.Errorf("query review history: %w", err)
	}
	defer rows.Close()

	var outcomes []*models.ReviewOutcome
	for rows.Next() {
		var ro models.ReviewOutcome
		var ts int64
		if err := rows.Scan(&ro.ConceptKey, &ts, &ro.Quality, &ro.IntervalDays,
			&ro.Ease, &ro.Repetitions); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		ro.Timestamp = time.Unix(ts, 0).UTC()
		outcomes = append(outcomes, &ro)
	}
	return outcomes, rows.Err()
}

// AttentionBySession returns all attention samples tagged with a session.
func (l *EventLog) AttentionBySession(sessionID string) ([]*models.AttentionSample, error) {
	rows, err := l.db.Query(`
		SELECT ts, score, session_id
		FROM attention_samples WHERE session_id = ? ORDER BY ts
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query attention samples: %w", err)
	}
	defer rows.Close()

	var samples []*models.AttentionSample
	for rows.Next() {
		var s models.AttentionSample
		var ts int64
		var sessID sql.NullString
		if err := rows.Scan(&ts, &s.Score, &sessID); err != nil {
			return nil, fmt.Errorf("scan attention sample: %w", err)
		}
		s.Timestamp = time.Unix(ts, 0).UTC()
		s.SessionID = sessID.String
		samples = append(samples, &s)
	}
	return samples, rows.Err()
}

func collectEncounters(rows *sql.Rows) ([]*models.EncounterEvent, error) {
	var events []*models.EncounterEvent
	for rows.Next() {
		var ev models.EncounterEvent
		var ts int64
		var source string
		var context, sessID sql.NullString
		if err := rows.Scan(&ev.ConceptKey, &ts, &source, &ev.Confidence, &context, &sessID); err != nil {
			return nil, fmt.Errorf("scan encounter: %w", err)
		}
		ev.Timestamp = time.Unix(ts, 0).UTC()
		ev.Source = models.Source(source)
		ev.Context = context.String
		ev.SessionID = sessID.String
		events = append(events, &ev)
	}
	return events, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
