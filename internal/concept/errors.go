package concept

import "errors"

// State errors surfaced synchronously to callers. Check with errors.Is.
var (
	ErrConceptNotFound = errors.New("concept not found")
)
