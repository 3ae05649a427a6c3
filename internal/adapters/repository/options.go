package repository

import (
	"github.com/okian/assessor/internal/domain/dedupe"
	"github.com/okian/assessor/pkg/logger"
)

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithCapacity preallocates room for n records.
func WithCapacity(n int) Option {
	return func(s *MemoryStore) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithIdentityIndex replaces the identity index guarding Append.
func WithIdentityIndex(idx dedupe.Index) Option {
	return func(s *MemoryStore) {
		if idx != nil {
			s.identities = idx
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *MemoryStore) {
		if l != nil {
			s.logger = l
		}
	}
}
