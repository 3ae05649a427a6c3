package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/assessor/internal/domain/dedupe"
	"github.com/okian/assessor/internal/domain/model"
	"github.com/okian/assessor/pkg/logger"
	"github.com/okian/assessor/pkg/metrics"
)

const defaultCapacity = 1024

// MemoryStore is an in-memory, append-only Store.
//
// Records are kept in append order. byID indexes positions for Get; the
// identity index rejects a second record with the same identity even if a
// caller skipped the duplicate check.
type MemoryStore struct {
	mu         sync.RWMutex
	records    []model.Assessment
	byID       map[string]int
	identities dedupe.Index
	capacity   int
	logger     logger.Logger
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		capacity: defaultCapacity,
		logger:   logger.Get().Named("repository"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.identities == nil {
		s.identities = dedupe.NewInMemoryIndex(dedupe.WithCapacity(s.capacity))
	}
	s.records = make([]model.Assessment, 0, s.capacity)
	s.byID = make(map[string]int, s.capacity)
	metrics.UpdateHistorySize(0)
	return s
}

// Append implements Store.Append.
func (s *MemoryStore) Append(ctx context.Context, rec model.Assessment) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryAppendLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.Lock()
	if _, ok := s.byID[rec.ID]; ok {
		s.mu.Unlock()
		metrics.RecordErrorByComponent("repository", "duplicate_id")
		return fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
	}
	if s.identities.SeenAndRecord(ctx, rec.Identity.Key()) {
		s.mu.Unlock()
		metrics.RecordErrorByComponent("repository", "duplicate_identity")
		return fmt.Errorf("%w: %s", ErrDuplicateIdentity, rec.ID)
	}
	s.byID[rec.ID] = len(s.records)
	s.records = append(s.records, rec)
	n := len(s.records)
	s.mu.Unlock()

	metrics.UpdateHistorySize(n)
	s.logger.Debug(ctx, "assessment appended", logger.String("id", rec.ID), logger.Int("count", n))
	return nil
}

// List implements Store.List.
func (s *MemoryStore) List(ctx context.Context) []model.Assessment {
	return s.Find(ctx, Filter{})
}

// Find implements Store.Find.
func (s *MemoryStore) Find(_ context.Context, f Filter) []model.Assessment {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Assessment, 0, len(s.records))
	for _, rec := range s.records {
		if f.Match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Get implements Store.Get.
func (s *MemoryStore) Get(_ context.Context, id string) (model.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Assessment{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.records[i], nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
