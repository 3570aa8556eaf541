package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/models"
)

// SessionStore handles Session persistence on SQLite.
type SessionStore struct {
	db *DB
}

// NewSessionStore creates a new session store.
func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db}
}

// Create inserts a new active session.
func (s *SessionStore) Create(sess *models.Session) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (id, started_at, state) VALUES (?, ?, ?)
	`, sess.ID, sess.StartedAt.Unix(), string(sess.State))
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// End marks a session as ended and records its rollup stats.
func (s *SessionStore) End(sessionID string, endedAt time.Time, stats *models.SessionStats) error {
	var avgAttention any
	if stats.AvgAttention != nil {
		avgAttention = *stats.AvgAttention
	}
	var dominant any
	if stats.DominantIntent != nil {
		dominant = stats.DominantIntent.String()
	}
	_, err := s.db.Exec(`
		UPDATE sessions SET ended_at = ?, state = ?,
			unique_concepts = ?, encounters = ?, avg_attention = ?,
			attention_count = ?, dominant_intent = ?, prediction_count = ?
		WHERE id = ?
	`, endedAt.Unix(), string(models.SessionEnded),
		stats.UniqueConcepts, stats.Encounters, avgAttention,
		stats.AttentionCount, dominant, stats.PredictionCount, sessionID)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// GetByID fetches a session by ID. Returns (nil, nil) when absent.
func (s *SessionStore) GetByID(id string) (*models.Session, error) {
	row := s.db.QueryRow(`
		SELECT id, started_at, ended_at, state FROM sessions WHERE id = ?
	`, id)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// Stats returns the persisted rollup for an ended session.
// Returns (nil, nil) when the session does not exist.
func (s *SessionStore) Stats(id string) (*models.SessionStats, error) {
	row := s.db.QueryRow(`
		SELECT id, started_at, ended_at, unique_concepts, encounters,
		       avg_attention, attention_count, dominant_intent, prediction_count
		FROM sessions WHERE id = ?
	`, id)

	var stats models.SessionStats
	var startedAt int64
	var endedAt sql.NullInt64
	var avgAttention sql.NullFloat64
	var dominant sql.NullString
	err := row.Scan(&stats.SessionID, &startedAt, &endedAt, &stats.UniqueConcepts,
		&stats.Encounters, &avgAttention, &stats.AttentionCount,
		&dominant, &stats.PredictionCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session stats: %w", err)
	}

	if endedAt.Valid {
		stats.Duration = time.Unix(endedAt.Int64, 0).Sub(time.Unix(startedAt, 0))
	}
	if avgAttention.Valid {
		v := avgAttention.Float64
		stats.AvgAttention = &v
	}
	if dominant.Valid {
		if label, err := models.ParseIntentLabel(dominant.String); err == nil {
			stats.DominantIntent = &label
		}
	}
	return &stats, nil
}

// List returns recent sessions, newest first.
func (s *SessionStore) List(limit int) ([]*models.Session, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, started_at, ended_at, state
		FROM sessions ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// CountInRange counts sessions started with from <= started_at < to.
func (s *SessionStore) CountInRange(from, to time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM sessions WHERE started_at >= ? AND started_at < ?
	`, from.Unix(), to.Unix()).Scan(&count)
	return count, err
}

func scanSession(row rowScanner) (*models.Session, error) {
	var sess models.Session
	var startedAt int64
	var endedAt sql.NullInt64
	var state string
	if err := row.Scan(&sess.ID, &startedAt, &endedAt, &state); err != nil {
		return nil, err
	}
	sess.StartedAt = time.Unix(startedAt, 0).UTC()
	sess.State = models.SessionState(state)
	if endedAt.Valid {
		t := time.Unix(endedAt.Int64, 0).UTC()
		sess.EndedAt = &t
	}
	return &sess, nil
}
