// Package schedule implements the SM-2 interval and ease computation.
// It is pure: no I/O, no clock, fully deterministic.
package schedule

const (
	// MinEase and MaxEase bound the ease factor. SM-2 never lets ease
	// fall below 1.3; the 2.5 cap keeps intervals from exploding.
	MinEase = 1.3
	MaxEase = 2.5

	// DefaultIntervalCapDays is the default ceiling on a computed
	// interval. Capping is an explicit policy: without it a long streak
	// of perfect reviews pushes the next review years out.
	DefaultIntervalCapDays = 365.0

	// InitialEase is the ease assigned to a freshly created concept.
	InitialEase = 2.5
)

// State is the scheduling state carried by a concept between reviews.
type State struct {
	IntervalDays float64
	Ease         float64
	Repetitions  int
}

// NewState returns the state of a never-reviewed concept.
func NewState() State {
	return State{IntervalDays: 0, Ease: InitialEase, Repetitions: 0}
}

// ComputeNext applies one review of the given quality to a prior state and
// returns the next state, using cap as the interval ceiling in days
// (<= 0 means DefaultIntervalCapDays).
//
// quality < 3 is a lapse: repetitions reset to 0, the interval resets to
// one day, and ease drops by 0.2 (floored at MinEase).
//
// quality >= 3 advances the repetition count. The first two successful
// repetitions use the fixed 1-day and 3-day steps; after that the interval
// grows by the updated ease factor.
func ComputeNext(quality Quality, prior State, cap float64) (State, error) {
	if !quality.IsValid() {
		return State{}, ErrInvalidQuality
	}
	if cap <= 0 {
		cap = DefaultIntervalCapDays
	}

	if quality.Lapse() {
		return State{
			IntervalDays: 1,
			Ease:         clampEase(prior.Ease - 0.2),
			Repetitions:  0,
		}, nil
	}

	q := float64(quality)
	ease := clampEase(prior.Ease + (0.1 - (5-q)*(0.08+(5-q)*0.02)))
	reps := prior.Repetitions + 1

	var interval float64
	switch reps {
	case 1:
		interval = 1
	case 2:
		interval = 3
	default:
		interval = prior.IntervalDays * ease
	}
	if interval < 1 {
		interval = 1
	}
	if interval > cap {
		interval = cap
	}

	return State{IntervalDays: interval, Ease: ease, Repetitions: reps}, nil
}

func clampEase(e float64) float64 {
	if e < MinEase {
		return MinEase
	}
	if e > MaxEase {
		return MaxEase
	}
	return e
}
