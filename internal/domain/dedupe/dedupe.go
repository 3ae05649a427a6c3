// Package dedupe detects repeated assessment submissions.
//
// FindDuplicate is the pure scan the assessment builder runs against a
// supplied history. Index is the in-memory idempotency index a history store
// keeps so that concurrent appends cannot slip a duplicate past the scan.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/okian/assessor/internal/domain/model"
)

// FindDuplicate returns the first record in existing whose identity matches id
// exactly (case-sensitive, all four fields).
func FindDuplicate(existing []model.Assessment, id model.Identity) (model.Assessment, bool) {
	for i := range existing {
		if existing[i].Identity == id {
			return existing[i], true
		}
	}
	return model.Assessment{}, false
}

// Index records identity keys to ensure at-most-once acceptance.
type Index interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	Size() int64
}

// inMemoryIndex implements Index with a mutex-guarded set. Keys are never
// evicted: forgetting one would let a duplicate through.
type inMemoryIndex struct {
	mu   sync.Mutex
	seen map[string]struct{}
	size atomic.Int64
}

// NewInMemoryIndex creates an empty index.
func NewInMemoryIndex(opts ...Option) Index {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &inMemoryIndex{
		seen: make(map[string]struct{}, cfg.capacity),
	}
}

func (d *inMemoryIndex) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[key]; exists {
		return true
	}
	d.seen[key] = struct{}{}
	d.size.Add(1)
	return false
}

func (d *inMemoryIndex) Size() int64 {
	return d.size.Load()
}
