// Package concept owns all per-concept scheduling state. Mutations to the
// same key are serialized through a sharded lock table; distinct keys
// proceed in parallel. Persistence sits behind small interfaces so the
// storage engine stays swappable.
package concept

import (
	"fmt"
	"hash/fnv"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/models"
	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/schedule"
)

const shardCount = 64

// Repository persists concepts. Implementations must not hold a
// connection across calls.
type Repository interface {
	Save(c *models.Concept) error
	All() ([]*models.Concept, error)
}

// ReviewLog appends review outcomes to the event log.
type ReviewLog interface {
	AppendReview(ro *models.ReviewOutcome) error
}

// Options tunes a Store.
type Options struct {
	IntervalCapDays float64
	// PersistRetries bounds how many times a failed repository write is
	// retried before the store degrades to in-memory-only mode.
	PersistRetries uint64
	Logger         *slog.Logger
	Now            func() time.Time
}

type shard struct {
	mu       sync.Mutex
	concepts map[string]*models.Concept
}

// Store is the keyed state for concepts. All reads return clones; callers
// never share memory with the store.
type Store struct {
	shards  [shardCount]*shard
	repo    Repository
	reviews ReviewLog
	opts    Options

	// memoryOnly is set when persistence retries exhaust. The engine
	// keeps serving from memory rather than blocking producers.
	memoryOnly atomic.Bool
}

// NewStore creates a concept store backed by the given repository.
func NewStore(repo Repository, reviews ReviewLog, opts Options) *Store {
	if opts.IntervalCapDays <= 0 {
		opts.IntervalCapDays = schedule.DefaultIntervalCapDays
	}
	if opts.PersistRetries == 0 {
		opts.PersistRetries = 3
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Store{repo: repo, reviews: reviews, opts: opts}
	for i := range s.shards {
		s.shards[i] = &shard{concepts: make(map[string]*models.Concept)}
	}
	return s
}

// Hydrate loads every persisted concept into memory. Call once at startup.
func (s *Store) Hydrate() error {
	if s.repo == nil {
		return nil
	}
	concepts, err := s.repo.All()
	if err != nil {
		return fmt.Errorf("hydrate concepts: %w", err)
	}
	for _, c := range concepts {
		sh := s.shardFor(c.Key)
		sh.mu.Lock()
		sh.concepts[c.Key] = c
		sh.mu.Unlock()
	}
	return nil
}

// MemoryOnly reports whether the store has degraded to in-memory-only
// mode after exhausting persistence retries.
func (s *Store) MemoryOnly() bool {
	return s.memoryOnly.Load()
}

func (s *Store) shardFor(key string) *shard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return s.shards[h.Sum32()%shardCount]
}

// GetOrCreate returns the concept for the normalized key of text, creating
// it on first encounter. Calling it twice with the same normalized key
// returns the same concept without touching encounter counts.
func (s *Store) GetOrCreate(text string) (*models.Concept, error) {
	key, err := NormalizeKey(text)
	if err != nil {
		return nil, err
	}

	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if c, ok := sh.concepts[key]; ok {
		return c.Clone(), nil
	}

	// Whole-second precision: timestamps are stored as epoch seconds, so
	// anything finer would not survive a hydration round-trip.
	now := s.opts.Now().UTC().Truncate(time.Second)
	c := &models.Concept{
		Key:            key,
		DisplayText:    text,
		FirstSeen:      now,
		LastSeen:       now,
		EncounterCount: 1,
		Ease:           schedule.InitialEase,
		// A fresh concept is due immediately: it has never been reviewed.
		NextReviewAt:   now,
		RelevanceScore: 0,
	}
	c.RelevanceScore = relevanceScore(c, 1, now)
	sh.concepts[key] = c
	s.persist(c)
	return c.Clone(), nil
}

// Get returns the concept for key, or ErrConceptNotFound.
func (s *Store) Get(key string) (*models.Concept, error) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	c, ok := sh.concepts[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrConceptNotFound, key)
	}
	return c.Clone(), nil
}

// ApplyEncounter records one (already coalesced) encounter: bumps the
// count, advances last-seen, and recomputes the relevance heuristic. The
// concept is created on first encounter.
func (s *Store) ApplyEncounter(ev *models.EncounterEvent) (*models.Concept, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}

	sh := s.shardFor(ev.ConceptKey)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	ts := ev.Timestamp.UTC().Truncate(time.Second)
	c, ok := sh.concepts[ev.ConceptKey]
	if !ok {
		c = &models.Concept{
			Key:            ev.ConceptKey,
			DisplayText:    ev.ConceptKey,
			FirstSeen:      ts,
			LastSeen:       ts,
			EncounterCount: 1,
			Ease:           schedule.InitialEase,
			NextReviewAt:   ts,
		}
		if ev.Context != "" {
			c.DisplayText = ev.Context
		}
		sh.concepts[ev.ConceptKey] = c
	} else {
		c.EncounterCount++
		if ts.After(c.LastSeen) {
			c.LastSeen = ts
		}
	}
	c.RelevanceScore = relevanceScore(c, ev.Confidence, s.opts.Now().UTC())
	s.persist(c)
	return c.Clone(), nil
}

// ApplyReview applies an explicit review to an existing concept. Reviewing
// a concept that was never encountered is a caller error.
func (s *Store) ApplyReview(key string, quality schedule.Quality) (*models.ReviewOutcome, *models.Concept, error) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	c, ok := sh.concepts[key]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrConceptNotFound, key)
	}

	prior := schedule.State{
		IntervalDays: c.IntervalDays,
		Ease:         c.Ease,
		Repetitions:  c.Repetitions,
	}
	next, err := schedule.ComputeNext(quality, prior, s.opts.IntervalCapDays)
	if err != nil {
		return nil, nil, err
	}

	now := s.opts.Now().UTC().Truncate(time.Second)
	c.IntervalDays = next.IntervalDays
	c.Ease = next.Ease
	c.Repetitions = next.Repetitions
	c.LastSeen = now
	// Always set forward from the update time, never backdated. Truncated
	// so a fractional interval cannot smuggle sub-second precision in.
	c.NextReviewAt = now.Add(time.Duration(next.IntervalDays * 24 * float64(time.Hour))).Truncate(time.Second)
	c.RelevanceScore = relevanceScore(c, 1, now)
	s.persist(c)

	outcome := &models.ReviewOutcome{
		ConceptKey:   key,
		Timestamp:    now,
		Quality:      int(quality),
		IntervalDays: next.IntervalDays,
		Ease:         next.Ease,
		Repetitions:  next.Repetitions,
	}
	if s.reviews != nil {
		if err := s.reviews.AppendReview(outcome); err != nil {
			s.opts.Logger.Error("append review outcome failed",
				"concept", key, "error", err)
		}
	}
	return outcome, c.Clone(), nil
}

// GetDue returns concepts with NextReviewAt <= asOf, ordered by overdue
// amount descending, relevance breaking ties.
func (s *Store) GetDue(asOf time.Time, limit int) []*models.Concept {
	if limit <= 0 {
		limit = 50
	}
	var due []*models.Concept
	for _, sh := range s.shards {
		sh.mu.Lock()
		for _, c := range sh.concepts {
			if !c.NextReviewAt.After(asOf) {
				due = append(due, c.Clone())
			}
		}
		sh.mu.Unlock()
	}
	sort.Slice(due, func(i, j int) bool {
		oi, oj := due[i].Overdue(asOf), due[j].Overdue(asOf)
		if oi != oj {
			return oi > oj
		}
		if due[i].RelevanceScore != due[j].RelevanceScore {
			return due[i].RelevanceScore > due[j].RelevanceScore
		}
		return due[i].Key < due[j].Key
	})
	if len(due) > limit {
		due = due[:limit]
	}
	return due
}

// All returns a clone of every tracked concept, ordered by key.
func (s *Store) All() []*models.Concept {
	var out []*models.Concept
	for _, sh := range s.shards {
		sh.mu.Lock()
		for _, c := range sh.concepts {
			out = append(out, c.Clone())
		}
		sh.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Count returns the number of tracked concepts.
func (s *Store) Count() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += len(sh.concepts)
		sh.mu.Unlock()
	}
	return n
}

// Replace swaps in a full concept set, persisting each entry. Used by
// snapshot restore.
func (s *Store) Replace(concepts []*models.Concept) {
	for _, sh := range s.shards {
		sh.mu.Lock()
		sh.concepts = make(map[string]*models.Concept)
		sh.mu.Unlock()
	}
	for _, c := range concepts {
		clone := c.Clone()
		sh := s.shardFor(clone.Key)
		sh.mu.Lock()
		sh.concepts[clone.Key] = clone
		s.persist(clone)
		sh.mu.Unlock()
	}
}

// persist writes a concept through to the repository with bounded retries.
// On exhaustion the store flags memory-only mode and keeps going; the
// caller's update is never rolled back and producers are never blocked.
// Once degraded, later writes skip the repository entirely rather than
// paying the retry backoff under the shard lock on every mutation.
// Caller holds the shard lock, so the clone is taken before retrying.
func (s *Store) persist(c *models.Concept) {
	if s.repo == nil || s.memoryOnly.Load() {
		return
	}
	clone := c.Clone()
	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(50*time.Millisecond),
		backoff.WithMaxInterval(500*time.Millisecond),
	), s.opts.PersistRetries)
	err := backoff.Retry(func() error {
		return s.repo.Save(clone)
	}, policy)
	if err != nil {
		if !s.memoryOnly.Swap(true) {
			s.opts.Logger.Error("persistence unavailable, degrading to in-memory-only mode",
				"concept", clone.Key, "error", err)
		}
	}
}
