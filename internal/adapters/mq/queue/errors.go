package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrStopped = errors.New("notification queue stopped")
	ErrFull    = errors.New("notification queue full")
)
