package schedule

import "errors"

// Sentinel errors for the schedule package.
// Use errors.Is to check: errors.Is(err, schedule.ErrInvalidQuality)
var (
	ErrInvalidQuality = errors.New("schedule: quality outside [0,5]")
)
