package idgen

import "errors"

// Sentinel kinds for id generation errors.
var (
	ErrUnknownStrategy = errors.New("unknown id strategy")
	ErrHashID          = errors.New("hashid encoding failed")
)
