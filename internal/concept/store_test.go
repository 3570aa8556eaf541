package concept

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/models"
	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/schedule"
)

func newTestStore(now func() time.Time) *Store {
	return NewStore(nil, nil, Options{Now: now})
}

func encounter(key string, ts time.Time) *models.EncounterEvent {
	return &models.EncounterEvent{
		ConceptKey: key,
		Timestamp:  ts,
		Source:     models.SourceOCR,
		Confidence: 0.9,
	}
}

func TestNormalizeKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Python", "python"},
		{"  Machine   Learning  ", "machine learning"},
		{"GO", "go"},
	}
	for _, c := range cases {
		got, err := NormalizeKey(c.in)
		if err != nil {
			t.Fatalf("NormalizeKey(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", c.in, got, c.want)
		}
	}

	if _, err := NormalizeKey("   "); !errors.Is(err, models.ErrEmptyConceptKey) {
		t.Errorf("blank key: expected ErrEmptyConceptKey, got %v", err)
	}
}

func TestGetOrCreateIdempotent(t *testing.T) {
	s := newTestStore(nil)

	first, err := s.GetOrCreate("Machine Learning")
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.GetOrCreate("  machine   learning ")
	if err != nil {
		t.Fatal(err)
	}

	if first.Key != second.Key {
		t.Fatalf("keys differ: %q vs %q", first.Key, second.Key)
	}
	if second.EncounterCount != 1 {
		t.Errorf("encounter count = %d, want 1 (get_or_create must not double-count)", second.EncounterCount)
	}
	if s.Count() != 1 {
		t.Errorf("concept count = %d, want 1", s.Count())
	}
}

func TestApplyEncounterCreatesAndCounts(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := newTestStore(func() time.Time { return base })

	c, err := s.ApplyEncounter(encounter("python", base))
	if err != nil {
		t.Fatal(err)
	}
	if c.EncounterCount != 1 {
		t.Errorf("count = %d, want 1", c.EncounterCount)
	}

	c, err = s.ApplyEncounter(encounter("python", base.Add(time.Minute)))
	if err != nil {
		t.Fatal(err)
	}
	if c.EncounterCount != 2 {
		t.Errorf("count = %d, want 2", c.EncounterCount)
	}
	if !c.LastSeen.Equal(base.Add(time.Minute)) {
		t.Errorf("last seen = %v, want %v", c.LastSeen, base.Add(time.Minute))
	}
}

func TestApplyEncounterRejectsMalformed(t *testing.T) {
	s := newTestStore(nil)

	_, err := s.ApplyEncounter(&models.EncounterEvent{ConceptKey: "", Source: models.SourceOCR})
	if !errors.Is(err, models.ErrEmptyConceptKey) {
		t.Errorf("expected ErrEmptyConceptKey, got %v", err)
	}

	_, err = s.ApplyEncounter(&models.EncounterEvent{ConceptKey: "x", Source: "teapot", Confidence: 0.5})
	if !errors.Is(err, models.ErrInvalidSource) {
		t.Errorf("expected ErrInvalidSource, got %v", err)
	}

	_, err = s.ApplyEncounter(&models.EncounterEvent{ConceptKey: "x", Source: models.SourceOCR, Confidence: 1.5})
	if !errors.Is(err, models.ErrInvalidConfidence) {
		t.Errorf("expected ErrInvalidConfidence, got %v", err)
	}
}

func TestConcurrentEncountersNoLostUpdates(t *testing.T) {
	s := newTestStore(nil)
	const producers = 8
	const perProducer = 1000

	var wg sync.WaitGroup
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if _, err := s.ApplyEncounter(encounter("rust", start)); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	c, err := s.Get("rust")
	if err != nil {
		t.Fatal(err)
	}
	if c.EncounterCount != producers*perProducer {
		t.Fatalf("encounter count = %d, want %d (lost updates)", c.EncounterCount, producers*perProducer)
	}
}

func TestConcurrentDistinctKeys(t *testing.T) {
	s := newTestStore(nil)
	keys := []string{"go", "rust", "python", "zig", "haskell", "erlang", "c", "lua"}
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for _, key := range keys {
		for p := 0; p < 4; p++ {
			wg.Add(1)
			go func(k string) {
				defer wg.Done()
				for i := 0; i < 250; i++ {
					s.ApplyEncounter(encounter(k, start))
				}
			}(key)
		}
	}
	wg.Wait()

	for _, key := range keys {
		c, err := s.Get(key)
		if err != nil {
			t.Fatal(err)
		}
		if c.EncounterCount != 1000 {
			t.Errorf("%s: count = %d, want 1000", key, c.EncounterCount)
		}
	}
}

func TestApplyReviewUnknownConcept(t *testing.T) {
	s := newTestStore(nil)
	_, _, err := s.ApplyReview("never-seen", schedule.Perfect)
	if !errors.Is(err, ErrConceptNotFound) {
		t.Errorf("expected ErrConceptNotFound, got %v", err)
	}
}

func TestApplyReviewAdvancesSchedule(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newTestStore(func() time.Time { return now })

	if _, err := s.GetOrCreate("python"); err != nil {
		t.Fatal(err)
	}

	wantIntervals := []float64{1, 3, 7.5}
	for i, q := range []schedule.Quality{schedule.Perfect, schedule.Hesitant, schedule.Perfect} {
		outcome, c, err := s.ApplyReview("python", q)
		if err != nil {
			t.Fatal(err)
		}
		if diff := outcome.IntervalDays - wantIntervals[i]; diff < -1e-9 || diff > 1e-9 {
			t.Errorf("review %d: interval = %v, want %v", i+1, outcome.IntervalDays, wantIntervals[i])
		}
		if c.Ease > schedule.MaxEase {
			t.Errorf("review %d: ease %v above cap", i+1, c.Ease)
		}
		wantNext := now.Add(time.Duration(outcome.IntervalDays * 24 * float64(time.Hour)))
		if !c.NextReviewAt.Equal(wantNext) {
			t.Errorf("review %d: next review = %v, want %v", i+1, c.NextReviewAt, wantNext)
		}
		if c.NextReviewAt.Before(now) {
			t.Errorf("review %d: next review set backwards", i+1)
		}
	}

	outcome, c, err := s.ApplyReview("python", schedule.Familiar)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Repetitions != 0 || outcome.IntervalDays != 1 {
		t.Errorf("lapse: got reps=%d interval=%v, want 0/1", outcome.Repetitions, outcome.IntervalDays)
	}
	if c.Ease < schedule.MinEase {
		t.Errorf("lapse: ease %v below floor", c.Ease)
	}

	_, _, err = s.ApplyReview("python", schedule.Quality(9))
	if !errors.Is(err, schedule.ErrInvalidQuality) {
		t.Errorf("expected ErrInvalidQuality, got %v", err)
	}
}

func TestGetDueOrdering(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newTestStore(func() time.Time { return now })

	add := func(key string, nextReview time.Time, count int) {
		sh := s.shardFor(key)
		sh.mu.Lock()
		c := &models.Concept{
			Key:            key,
			DisplayText:    key,
			FirstSeen:      now.Add(-72 * time.Hour),
			LastSeen:       now,
			EncounterCount: count,
			Ease:           schedule.InitialEase,
			NextReviewAt:   nextReview,
		}
		c.RelevanceScore = relevanceScore(c, 1, now)
		sh.concepts[key] = c
		sh.mu.Unlock()
	}

	add("way-overdue", now.Add(-48*time.Hour), 2)
	add("just-due", now.Add(-time.Hour), 2)
	add("due-now-popular", now, 50)
	add("due-now-rare", now, 1)
	add("not-due", now.Add(24*time.Hour), 10)

	due := s.GetDue(now, 10)
	if len(due) != 4 {
		t.Fatalf("due count = %d, want 4", len(due))
	}
	wantOrder := []string{"way-overdue", "just-due", "due-now-popular", "due-now-rare"}
	for i, want := range wantOrder {
		if due[i].Key != want {
			t.Errorf("due[%d] = %s, want %s", i, due[i].Key, want)
		}
	}
	for _, c := range due {
		if c.NextReviewAt.After(now) {
			t.Errorf("%s returned as due but next review is %v", c.Key, c.NextReviewAt)
		}
	}

	limited := s.GetDue(now, 2)
	if len(limited) != 2 {
		t.Errorf("limited due count = %d, want 2", len(limited))
	}
}

func TestTimestampsSurviveSecondPrecisionStorage(t *testing.T) {
	// The repository stores epoch seconds, so every timestamp the store
	// stamps must already be whole-second. A wall clock with nanoseconds
	// must not leak them into the concept.
	now := time.Date(2026, 3, 1, 12, 0, 9, 232229754, time.UTC)
	s := newTestStore(func() time.Time { return now })

	c, err := s.GetOrCreate("python")
	if err != nil {
		t.Fatal(err)
	}
	for name, ts := range map[string]time.Time{
		"first seen":  c.FirstSeen,
		"last seen":   c.LastSeen,
		"next review": c.NextReviewAt,
	} {
		if ts.Nanosecond() != 0 {
			t.Errorf("%s carries sub-second precision: %v", name, ts)
		}
	}

	if _, err := s.ApplyEncounter(encounter("python", now.Add(time.Minute))); err != nil {
		t.Fatal(err)
	}
	c, err = s.Get("python")
	if err != nil {
		t.Fatal(err)
	}
	if c.LastSeen.Nanosecond() != 0 {
		t.Errorf("last seen after encounter carries sub-second precision: %v", c.LastSeen)
	}

	if _, c, err = s.ApplyReview("python", schedule.Perfect); err != nil {
		t.Fatal(err)
	}
	if c.NextReviewAt.Nanosecond() != 0 {
		t.Errorf("next review after review carries sub-second precision: %v", c.NextReviewAt)
	}
	// The round trip through epoch seconds must be lossless.
	roundTripped := time.Unix(c.NextReviewAt.Unix(), 0).UTC()
	if !c.NextReviewAt.Equal(roundTripped) {
		t.Errorf("next review %v does not survive epoch-second storage, came back %v",
			c.NextReviewAt, roundTripped)
	}
}

type failingRepo struct {
	saves atomic.Int64
}

func (f *failingRepo) Save(c *models.Concept) error {
	f.saves.Add(1)
	return errors.New("disk unavailable")
}

func (f *failingRepo) All() ([]*models.Concept, error) { return nil, nil }

func TestMemoryOnlySkipsFurtherPersistence(t *testing.T) {
	repo := &failingRepo{}
	s := NewStore(repo, nil, Options{PersistRetries: 1})

	if _, err := s.GetOrCreate("python"); err != nil {
		t.Fatal(err)
	}
	if !s.MemoryOnly() {
		t.Fatal("store did not degrade after persistence retries exhausted")
	}
	afterDegrade := repo.saves.Load()
	if afterDegrade != 2 {
		t.Errorf("save attempts = %d, want 2 (initial plus one retry)", afterDegrade)
	}

	// Degraded mode must not touch the repository again: mutations would
	// otherwise pay the full retry backoff under the shard lock.
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if _, err := s.ApplyEncounter(encounter("python", base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatal(err)
		}
	}
	if got := repo.saves.Load(); got != afterDegrade {
		t.Errorf("save attempts after degrading = %d, want %d (no further writes)", got, afterDegrade)
	}

	// In-memory state keeps advancing.
	c, err := s.Get("python")
	if err != nil {
		t.Fatal(err)
	}
	if c.EncounterCount != 6 {
		t.Errorf("encounter count = %d, want 6", c.EncounterCount)
	}
}

func TestRelevanceHeuristic(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	fresh := &models.Concept{EncounterCount: 1, LastSeen: now}
	popular := &models.Concept{EncounterCount: 100, LastSeen: now}
	if relevanceScore(popular, 1, now) <= relevanceScore(fresh, 1, now) {
		t.Error("relevance should grow with encounter count")
	}

	recent := &models.Concept{EncounterCount: 10, LastSeen: now}
	stale := &models.Concept{EncounterCount: 10, LastSeen: now.Add(-30 * 24 * time.Hour)}
	if relevanceScore(stale, 1, now) >= relevanceScore(recent, 1, now) {
		t.Error("relevance should decay with idle time")
	}

	for _, c := range []*models.Concept{fresh, popular, recent, stale} {
		score := relevanceScore(c, 0.5, now)
		if score < 0 || score > 1 {
			t.Errorf("relevance %v outside [0,1]", score)
		}
	}
}
