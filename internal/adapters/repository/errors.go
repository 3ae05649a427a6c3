package repository

import "errors"

// Sentinel kinds for history store errors.
var (
	ErrNotFound          = errors.New("assessment not found")
	ErrDuplicateID       = errors.New("assessment id already stored")
	ErrDuplicateIdentity = errors.New("assessment identity already stored")
)
