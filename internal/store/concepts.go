package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/models"
)

// ConceptStore handles Concept persistence on SQLite.
type ConceptStore struct {
	db *DB
}

// NewConceptStore creates a new concept store.
func NewConceptStore(db *DB) *ConceptStore {
	return &ConceptStore{db: db}
}

// Load fetches a concept by key. Returns (nil, nil) when absent.
func (s *ConceptStore) Load(key string) (*models.Concept, error) {
	row := s.db.QueryRow(`
		SELECT key, display_text, first_seen, last_seen, encounter_count,
		       interval_days, ease, repetitions, next_review_at, relevance
		FROM concepts WHERE key = ?
	`, key)
	c, err := scanConcept(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load concept: %w", err)
	}
	return c, nil
}

// Save upserts a concept. The write acquires its statement and releases it
// immediately; nothing is held across calls.
func (s *ConceptStore) Save(c *models.Concept) error {
	_, err := s.db.Exec(`
		INSERT INTO concepts (key, display_text, first_seen, last_seen,
			encounter_count, interval_days, ease, repetitions, next_review_at, relevance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			display_text = excluded.display_text,
			last_seen = excluded.last_seen,
			encounter_count = excluded.encounter_count,
			interval_days = excluded.interval_days,
			ease = excluded.ease,
			repetitions = excluded.repetitions,
			next_review_at = excluded.next_review_at,
			relevance = excluded.relevance
	`, c.Key, c.DisplayText, c.FirstSeen.Unix(), c.LastSeen.Unix(),
		c.EncounterCount, c.IntervalDays, c.Ease, c.Repetitions,
		c.NextReviewAt.Unix(), c.RelevanceScore)
	if err != nil {
		return fmt.Errorf("save concept: %w", err)
	}
	return nil
}

// All returns every tracked concept, ordered by key for stable exports.
func (s *ConceptStore) All() ([]*models.Concept, error) {
	rows, err := s.db.Query(`
		SELECT key, display_text, first_seen, last_seen, encounter_count,
		       interval_days, ease, repetitions, next_review_at, relevance
		FROM concepts ORDER BY key
	`)
	if err != nil {
		return nil, fmt.Errorf("query concepts: %w", err)
	}
	defer rows.Close()
	return collectConcepts(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConcept(row rowScanner) (*models.Concept, error) {
	var c models.Concept
	var firstSeen, lastSeen, nextReview int64
	if err := row.Scan(&c.Key, &c.DisplayText, &firstSeen, &lastSeen,
		&c.EncounterCount, &c.IntervalDays, &c.Ease, &c.Repetitions,
		&nextReview, &c.RelevanceScore); err != nil {
		return nil, err
	}
	c.FirstSeen = time.Unix(firstSeen, 0).UTC()
	c.LastSeen = time.Unix(lastSeen, 0).UTC()
	c.NextReviewAt = time.Unix(nextReview, 0).UTC()
	return &c, nil
}

func collectConcepts(rows *sql.Rows) ([]*models.Concept, error) {
	var concepts []*models.Concept
	for rows.Next() {
		c, err := scanConcept(rows)
		if err != nil {
			return nil, fmt.Errorf("scan concept: %w", err)
		}
		concepts = append(concepts, c)
	}
	return concepts, rows.Err()
}
