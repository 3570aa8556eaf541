// Package producer runs passive capture sources on their own timers and
// feeds whatever they detect into the ingest queue.
package producer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/models"
)

// DefaultPollInterval matches the capture cadence of the passive sources.
const DefaultPollInterval = 20 * time.Second

// A Producer surfaces encounter candidates from one capture source. Poll
// is called from a single goroutine per producer; implementations only
// need to be safe against their own capture backend.
type Producer interface {
	Poll() ([]models.EncounterCandidate, error)
	Source() models.Source
}

// Sink accepts candidates from producers. Satisfied by ingest.Ingester.
type Sink interface {
	Ingest(cand models.EncounterCandidate) error
}

// Runner drives a set of producers, each on its own ticker, and pushes
// their candidates into the sink. Poll errors are logged and the ticker
// keeps going; one misbehaving source never stops the others.
type Runner struct {
	sink     Sink
	interval time.Duration
	logger   *slog.Logger

	mu        sync.Mutex
	producers []Producer

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner creates a runner pushing into sink every interval.
func NewRunner(sink Sink, interval time.Duration, logger *slog.Logger) *Runner {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{sink: sink, interval: interval, logger: logger}
}

// Register adds a producer. Must be called before Start.
func (r *Runner) Register(p Producer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.producers = append(r.producers, p)
}

// Start launches one polling goroutine per registered producer.
func (r *Runner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	r.mu.Lock()
	producers := make([]Producer, len(r.producers))
	copy(producers, r.producers)
	r.mu.Unlock()

	for _, p := range producers {
		r.wg.Add(1)
		go r.run(ctx, p)
	}
	r.logger.Info("producers started", "count", len(producers), "interval", r.interval)
}

// Stop halts all polling goroutines and waits for them.
func (r *Runner) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	r.wg.Wait()
}

func (r *Runner) run(ctx context.Context, p Producer) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.pollOnce(p)
		}
	}
}

func (r *Runner) pollOnce(p Producer) {
	candidates, err := p.Poll()
	if err != nil {
		r.logger.Error("producer poll failed", "source", p.Source(), "error", err)
		return
	}
	for _, cand := range candidates {
		if err := r.sink.Ingest(cand); err != nil {
			// Rejections are per-candidate; keep feeding the rest.
			r.logger.Warn("candidate rejected",
				"source", p.Source(), "text", cand.Text, "error", err)
		}
	}
}
