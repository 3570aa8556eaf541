// Package ingest is the concurrency-safe entry point from producers into
// the concept store. Ingest never blocks a producer: events land on a
// bounded queue with a drop-oldest overflow policy and a single consumer
// applies them.
package ingest

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/concept"
	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/models"
)

const (
	// DefaultQueueSize bounds the intake queue. Sized for several
	// producers bursting a full scan cycle at once.
	DefaultQueueSize = 1024

	// DefaultDedupWindow coalesces repeated detections of a concept.
	// The source hardware scans the screen roughly every 20 seconds, so
	// anything re-detected inside one cycle is the same sighting.
	DefaultDedupWindow = 20 * time.Second

	coalesceCacheSize = 4096
)

// EncounterLog appends accepted encounter events to the event log.
type EncounterLog interface {
	AppendEncounter(ev *models.EncounterEvent) error
}

// Options tunes an Ingester.
type Options struct {
	QueueSize   int
	DedupWindow time.Duration
	// SessionID, when set, tags every accepted event with the active
	// session. Returning "" leaves events untagged.
	SessionID func() string
	Logger    *slog.Logger
	Now       func() time.Time
}

// Ingester fans encounter events from any number of producers into the
// concept store.
type Ingester struct {
	store  *concept.Store
	events EncounterLog
	opts   Options

	queue chan *models.EncounterEvent

	// coMu makes the contains-then-add on the coalescing cache atomic so
	// two producers cannot both count the same sighting.
	coMu     sync.Mutex
	coalesce *expirable.LRU[string, struct{}]

	enqueued  atomic.Uint64
	applied   atomic.Uint64
	dropped   atomic.Uint64
	rejected  atomic.Uint64
	coalesced atomic.Uint64
	pending   atomic.Int64

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// New creates an ingester writing into store and events.
func New(store *concept.Store, events EncounterLog, opts Options) *Ingester {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.DedupWindow <= 0 {
		opts.DedupWindow = DefaultDedupWindow
	}
	// The expirable cache ticks at window/100; sub-millisecond windows
	// would underflow that ticker.
	if opts.DedupWindow < time.Millisecond {
		opts.DedupWindow = time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Ingester{
		store:    store,
		events:   events,
		opts:     opts,
		queue:    make(chan *models.EncounterEvent, opts.QueueSize),
		coalesce: expirable.NewLRU[string, struct{}](coalesceCacheSize, nil, opts.DedupWindow),
		done:     make(chan struct{}),
	}
}

// Start launches the consumer loop.
func (i *Ingester) Start() {
	i.startOnce.Do(func() {
		i.wg.Add(1)
		go i.consume()
	})
}

// Stop shuts the consumer down after the queue empties. Safe to call more
// than once.
func (i *Ingester) Stop() {
	i.stopOnce.Do(func() {
		close(i.done)
		i.wg.Wait()
	})
}

// Ingest validates and enqueues one candidate. It never blocks: a full
// queue drops the oldest pending event, and repeats of a concept inside
// the dedup window coalesce into the detection already counted.
func (i *Ingester) Ingest(cand models.EncounterCandidate) error {
	key, err := concept.NormalizeKey(cand.Text)
	if err != nil {
		i.rejected.Add(1)
		return err
	}

	ev := &models.EncounterEvent{
		ConceptKey: key,
		// Whole seconds: the event log stores epoch-second timestamps.
		Timestamp:  i.opts.Now().UTC().Truncate(time.Second),
		Source:     cand.Source,
		Confidence: cand.Confidence,
		Context:    cand.Context,
	}
	if i.opts.SessionID != nil {
		ev.SessionID = i.opts.SessionID()
	}
	if err := ev.Validate(); err != nil {
		i.rejected.Add(1)
		return err
	}

	// One sighting per (concept, source) per window.
	i.coMu.Lock()
	seen := i.coalesce.Contains(coalesceKey(key, cand.Source))
	if !seen {
		i.coalesce.Add(coalesceKey(key, cand.Source), struct{}{})
	}
	i.coMu.Unlock()
	if seen {
		i.coalesced.Add(1)
		return nil
	}

	i.enqueue(ev)
	return nil
}

func coalesceKey(key string, source models.Source) string {
	return key + "|" + string(source)
}

func (i *Ingester) enqueue(ev *models.EncounterEvent) {
	i.pending.Add(1)
	select {
	case i.queue <- ev:
		i.enqueued.Add(1)
		return
	default:
	}

	// Queue full: drop the oldest pending event to make room.
	select {
	case old := <-i.queue:
		i.pending.Add(-1)
		i.dropped.Add(1)
		i.opts.Logger.Warn("encounter queue full, dropped oldest",
			"concept", old.ConceptKey, "source", old.Source, "ts", old.Timestamp)
	default:
	}

	select {
	case i.queue <- ev:
		i.enqueued.Add(1)
	default:
		// Consumer raced us and the queue refilled; drop the new event
		// rather than block the producer.
		i.pending.Add(-1)
		i.dropped.Add(1)
		i.opts.Logger.Warn("encounter queue full, dropped event",
			"concept", ev.ConceptKey, "source", ev.Source, "ts", ev.Timestamp)
	}
}

func (i *Ingester) consume() {
	defer i.wg.Done()
	for {
		select {
		case ev := <-i.queue:
			i.apply(ev)
		case <-i.done:
			// Drain whatever is already queued, then exit.
			for {
				select {
				case ev := <-i.queue:
					i.apply(ev)
				default:
					return
				}
			}
		}
	}
}

// apply performs bounded per-item work: one concept update and one event
// log append. An engine failure is logged with concept key, source and
// timestamp, then the event is skipped; the consumer never aborts.
func (i *Ingester) apply(ev *models.EncounterEvent) {
	defer i.pending.Add(-1)

	if _, err := i.store.ApplyEncounter(ev); err != nil {
		i.rejected.Add(1)
		i.opts.Logger.Error("apply encounter failed",
			"concept", ev.ConceptKey, "source", ev.Source, "ts", ev.Timestamp, "error", err)
		return
	}

	if i.events != nil {
		policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(25*time.Millisecond),
			backoff.WithMaxInterval(250*time.Millisecond),
		), 3)
		err := backoff.Retry(func() error {
			return i.events.AppendEncounter(ev)
		}, policy)
		if err != nil {
			i.opts.Logger.Error("append encounter event failed",
				"concept", ev.ConceptKey, "source", ev.Source, "ts", ev.Timestamp, "error", err)
		}
	}

	i.applied.Add(1)
}

// Drain waits for in-flight events to flush, up to the context deadline.
// Events still pending past the deadline are discarded and logged, never
// awaited indefinitely.
func (i *Ingester) Drain(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		if i.pending.Load() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			discarded := i.discardPending()
			if discarded > 0 {
				i.opts.Logger.Warn("drain window elapsed, discarding unflushed encounters",
					"discarded", discarded)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (i *Ingester) discardPending() int {
	n := 0
	for {
		select {
		case ev := <-i.queue:
			i.pending.Add(-1)
			i.dropped.Add(1)
			i.opts.Logger.Warn("discarded unflushed encounter",
				"concept", ev.ConceptKey, "source", ev.Source, "ts", ev.Timestamp)
			n++
		default:
			return n
		}
	}
}

// Counters returns a snapshot of the ingest counters.
func (i *Ingester) Counters() models.IngestCounters {
	return models.IngestCounters{
		Enqueued:  i.enqueued.Load(),
		Applied:   i.applied.Load(),
		Dropped:   i.dropped.Load(),
		Rejected:  i.rejected.Load(),
		Coalesced: i.coalesced.Load(),
	}
}
