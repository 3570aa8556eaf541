package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite connection with initialization logic.
type DB struct {
	*sql.DB
}

// Open creates or opens the SQLite database at the given path, runs schema
// initialization, and configures WAL mode for concurrent reads.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite handles one writer at a time

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &DB{db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS concepts (
  key TEXT PRIMARY KEY,
  display_text TEXT NOT NULL,
  first_seen INTEGER NOT NULL,
  last_seen INTEGER NOT NULL,
  encounter_count INTEGER NOT NULL DEFAULT 1,
  interval_days REAL NOT NULL DEFAULT 0,
  ease REAL NOT NULL DEFAULT 2.5,
  repetitions INTEGER NOT NULL DEFAULT 0,
  next_review_at INTEGER NOT NULL,
  relevance REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_concepts_next_review ON concepts(next_review_at);

CREATE TABLE IF NOT EXISTS encounter_events (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  concept_key TEXT NOT NULL,
  ts INTEGER NOT NULL,
  source TEXT NOT NULL,
  confidence REAL NOT NULL,
  context TEXT,
  session_id TEXT
);

CREATE INDEX IF NOT EXISTS idx_encounters_ts ON encounter_events(ts);
CREATE INDEX IF NOT EXISTS idx_encounters_session ON encounter_events(session_id);

CREATE TABLE IF NOT EXISTS review_outcomes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  concept_key TEXT NOT NULL,
  ts INTEGER NOT NULL,
  quality INTEGER NOT NULL,
  interval_days REAL NOT NULL,
  ease REAL NOT NULL,
  repetitions INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reviews_ts ON review_outcomes(ts);
CREATE INDEX IF NOT EXISTS idx_reviews_concept ON review_outcomes(concept_key);

CREATE TABLE IF NOT EXISTS attention_samples (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ts INTEGER NOT NULL,
  score REAL NOT NULL,
  session_id TEXT
);

CREATE INDEX IF NOT EXISTS idx_attention_session ON attention_samples(session_id);

CREATE TABLE IF NOT EXISTS intent_predictions (
  id TEXT PRIMARY KEY,
  ts INTEGER NOT NULL,
  label TEXT NOT NULL,
  confidence REAL NOT NULL,
  feedback INTEGER,
  session_id TEXT
);

CREATE INDEX IF NOT EXISTS idx_predictions_session ON intent_predictions(session_id);

CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  started_at INTEGER NOT NULL,
  ended_at INTEGER,
  state TEXT NOT NULL DEFAULT 'ACTIVE'
);

CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// runMigrations applies incremental schema changes added after the initial
// schema. Each migration is idempotent so it is safe to call on every open.
func runMigrations(db *sql.DB) error {
	// Migration v1: session rollup columns.
	hasRollup, err := columnExists(db, "sessions", "unique_concepts")
	if err != nil {
		return fmt.Errorf("check unique_concepts column: %w", err)
	}
	if !hasRollup {
		migrations := []string{
			`ALTER TABLE sessions ADD COLUMN unique_concepts INTEGER NOT NULL DEFAULT 0`,
			`ALTER TABLE sessions ADD COLUMN encounters INTEGER NOT NULL DEFAULT 0`,
			`ALTER TABLE sessions ADD COLUMN avg_attention REAL`,
			`ALTER TABLE sessions ADD COLUMN attention_count INTEGER NOT NULL DEFAULT 0`,
			`ALTER TABLE sessions ADD COLUMN dominant_intent TEXT`,
			`ALTER TABLE sessions ADD COLUMN prediction_count INTEGER NOT NULL DEFAULT 0`,
		}
		for _, m := range migrations {
			if _, err := db.Exec(m); err != nil {
				return fmt.Errorf("run migration v1: %w", err)
			}
		}
	}
	return nil
}

// ConceptCount returns the total number of tracked concepts.
func (db *DB) ConceptCount() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM concepts").Scan(&count)
	return count, err
}

// columnExists checks if a column exists in a table. It properly closes the
// rows cursor before returning, avoiding deadlocks with MaxOpenConns(1).
func columnExists(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(
		fmt.Sprintf("SELECT name FROM pragma_table_info('%s') WHERE name = ?", table),
		column,
	)
	if err != nil {
		return false, err
	}
	found := rows.Next()
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, err
	}
	return found, nil
}
