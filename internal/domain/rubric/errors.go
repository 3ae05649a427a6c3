package rubric

import "errors"

// Sentinel kinds for catalog lookups.
var (
	ErrUnknownCompetency = errors.New("unknown competency")
)
