// Package session owns the IDLE -> ACTIVE -> ENDED lifecycle. A session
// instance ends exactly once; the manager can then start a fresh one.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/models"
)

// State errors surfaced synchronously to callers. Check with errors.Is.
var (
	ErrSessionAlreadyActive = errors.New("session already active")
	ErrNoActiveSession      = errors.New("no active session")
)

// DefaultDrainGrace bounds how long Stop waits for in-flight ingestion.
const DefaultDrainGrace = 2 * time.Second

// Repository persists sessions and their rollups.
type Repository interface {
	Create(sess *models.Session) error
	End(sessionID string, endedAt time.Time, stats *models.SessionStats) error
}

// Drainer flushes in-flight ingestion before the rollup is computed.
type Drainer interface {
	Drain(ctx context.Context) error
}

// StatsComputer derives the end-of-session rollup from raw events.
type StatsComputer interface {
	SessionStats(sess *models.Session, endedAt time.Time) (*models.SessionStats, error)
}

// AttentionLog appends attention samples to the event log.
type AttentionLog interface {
	AppendAttention(s *models.AttentionSample) error
}

// Options tunes a Manager.
type Options struct {
	DrainGrace time.Duration
	Logger     *slog.Logger
	Now        func() time.Time
}

// Manager orchestrates session start/stop and tags events with the active
// session id.
type Manager struct {
	// transitions serializes Start and Stop. The drain inside Stop runs
	// under it, never under mu, so producers reading the current session
	// id are not stalled for the grace window.
	transitions sync.Mutex

	mu      sync.Mutex
	current *models.Session

	repo      Repository
	drainer   Drainer
	stats     StatsComputer
	attention AttentionLog
	opts      Options
}

// NewManager creates a lifecycle manager. repo, drainer, stats and
// attention may each be nil for in-memory-only or test use.
func NewManager(repo Repository, drainer Drainer, stats StatsComputer, attention AttentionLog, opts Options) *Manager {
	if opts.DrainGrace <= 0 {
		opts.DrainGrace = DefaultDrainGrace
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		repo:      repo,
		drainer:   drainer,
		stats:     stats,
		attention: attention,
		opts:      opts,
	}
}

// Start transitions IDLE -> ACTIVE.
func (m *Manager) Start() (*models.Session, error) {
	m.transitions.Lock()
	defer m.transitions.Unlock()

	if cur := m.Current(); cur != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionAlreadyActive, cur.ID)
	}

	sess := &models.Session{
		ID:        uuid.New().String(),
		StartedAt: m.opts.Now().UTC().Truncate(time.Second),
		State:     models.SessionActive,
	}
	if m.repo != nil {
		if err := m.repo.Create(sess); err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
	}
	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()

	m.opts.Logger.Info("session started", "session", sess.ID)
	copy := *sess
	return &copy, nil
}

// Stop transitions ACTIVE -> ENDED: drains in-flight ingestion up to the
// grace window, computes the rollup from raw events, and persists it.
// The session stays current while the drain runs, so late events flushed
// inside the grace window still carry its id.
func (m *Manager) Stop() (*models.SessionStats, error) {
	m.transitions.Lock()
	defer m.transitions.Unlock()

	sess := m.Current()
	if sess == nil {
		return nil, ErrNoActiveSession
	}

	if m.drainer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), m.opts.DrainGrace)
		if err := m.drainer.Drain(ctx); err != nil {
			// Whatever missed the grace window was discarded by the
			// drainer; the session still ends.
			m.opts.Logger.Warn("session drain incomplete", "session", sess.ID, "error", err)
		}
		cancel()
	}

	endedAt := m.opts.Now().UTC().Truncate(time.Second)
	sess.EndedAt = &endedAt
	sess.State = models.SessionEnded

	var stats *models.SessionStats
	if m.stats != nil {
		var err error
		stats, err = m.stats.SessionStats(sess, endedAt)
		if err != nil {
			return nil, fmt.Errorf("session rollup: %w", err)
		}
	} else {
		stats = &models.SessionStats{SessionID: sess.ID, Duration: endedAt.Sub(sess.StartedAt)}
	}

	if m.repo != nil {
		if err := m.repo.End(sess.ID, endedAt, stats); err != nil {
			return nil, fmt.Errorf("end session: %w", err)
		}
	}

	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	m.opts.Logger.Info("session ended",
		"session", sess.ID, "duration", stats.Duration, "concepts", stats.UniqueConcepts)
	return stats, nil
}

// CurrentSessionID returns the active session id, or "" when idle. Safe
// to call from any producer goroutine.
func (m *Manager) CurrentSessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ""
	}
	return m.current.ID
}

// Current returns a copy of the active session, or nil when idle.
func (m *Manager) Current() *models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	copy := *m.current
	return &copy
}

// RecordAttention appends an attention sample to the active session.
func (m *Manager) RecordAttention(score float64) error {
	if score < 0 || score > 1 {
		return fmt.Errorf("%w: attention %v", models.ErrInvalidConfidence, score)
	}

	m.mu.Lock()
	sessID := ""
	if m.current != nil {
		sessID = m.current.ID
	}
	m.mu.Unlock()

	if sessID == "" {
		return ErrNoActiveSession
	}
	if m.attention == nil {
		return nil
	}
	sample := &models.AttentionSample{
		Timestamp: m.opts.Now().UTC().Truncate(time.Second),
		Score:     score,
		SessionID: sessID,
	}
	if err := m.attention.AppendAttention(sample); err != nil {
		return fmt.Errorf("append attention: %w", err)
	}
	return nil
}
