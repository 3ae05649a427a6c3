package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	// ErrOutOfRange reports a mark address outside the rubric. Callers only
	// produce it through an integration bug.
	ErrOutOfRange = errors.New("mark out of range")
)
