package producer

import (
	"math/rand"
	"sync"

	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/models"
)

// Simulated is a scripted producer for local runs and tests. It cycles
// through a fixed vocabulary, emitting a random handful of terms per poll
// with jittered confidence, the way a real OCR or transcription pass
// surfaces a noisy subset of what is on screen.
type Simulated struct {
	source models.Source

	mu    sync.Mutex
	vocab []string
	rng   *rand.Rand
}

// NewSimulated creates a simulated producer over the given vocabulary.
func NewSimulated(source models.Source, vocab []string, seed int64) *Simulated {
	return &Simulated{
		source: source,
		vocab:  vocab,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

func (s *Simulated) Source() models.Source { return s.source }

// Poll emits up to three vocabulary terms with confidence in [0.5, 1.0].
func (s *Simulated) Poll() ([]models.EncounterCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.vocab) == 0 {
		return nil, nil
	}
	n := 1 + s.rng.Intn(3)
	out := make([]models.EncounterCandidate, 0, n)
	for i := 0; i < n; i++ {
		text := s.vocab[s.rng.Intn(len(s.vocab))]
		out = append(out, models.EncounterCandidate{
			Text:       text,
			Confidence: 0.5 + s.rng.Float64()*0.5,
			Source:     s.source,
		})
	}
	return out, nil
}

// DefaultVocabulary seeds the simulated producers when no corpus is
// configured.
var DefaultVocabulary = []string{
	"goroutine", "context deadline", "sqlite wal",
	"spaced repetition", "dependency injection", "http middleware",
	"exponential backoff", "write-ahead log", "least recently used",
}
