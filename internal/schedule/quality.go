package schedule

import (
	"encoding/json"
	"fmt"
)

// Quality is the user's recall rating for a review, 0 through 5.
// 0-2 count as a lapse, 3-5 as a successful recall.
type Quality int

const (
	Blackout  Quality = iota // No recall at all.
	Familiar                 // Wrong, but the answer felt familiar.
	Almost                   // Wrong, but close.
	Difficult                // Correct with serious difficulty.
	Hesitant                 // Correct after some hesitation.
	Perfect                  // Correct immediately.
)

var qualityNames = [...]string{
	Blackout:  "blackout",
	Familiar:  "familiar",
	Almost:    "almost",
	Difficult: "difficult",
	Hesitant:  "hesitant",
	Perfect:   "perfect",
}

// IsValid reports whether q is within [0,5].
func (q Quality) IsValid() bool {
	return q >= Blackout && q <= Perfect
}

// Lapse reports whether q counts as a failed recall (q < 3).
func (q Quality) Lapse() bool {
	return q < Difficult
}

// String returns the quality name, or "Quality(n)" for invalid values.
func (q Quality) String() string {
	if q.IsValid() {
		return qualityNames[q]
	}
	return fmt.Sprintf("Quality(%d)", int(q))
}

// MarshalJSON serializes the quality as its numeric rating.
func (q Quality) MarshalJSON() ([]byte, error) {
	if !q.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuality, int(q))
	}
	return json.Marshal(int(q))
}

// UnmarshalJSON expects a number in [0,5].
func (q *Quality) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidQuality, data)
	}
	v := Quality(n)
	if !v.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidQuality, n)
	}
	*q = v
	return nil
}
