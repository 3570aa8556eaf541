package models

import "errors"

// Validation errors. These are rejected at the boundary and never
// partially applied. Check with errors.Is.
var (
	ErrEmptyConceptKey   = errors.New("empty concept key")
	ErrInvalidSource     = errors.New("invalid encounter source")
	ErrInvalidConfidence = errors.New("confidence out of range [0,1]")
	ErrInvalidLabel      = errors.New("invalid intent label")
)
