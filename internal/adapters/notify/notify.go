// Package notify provides the sinks notifications are delivered to.
package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/okian/assessor/internal/domain/model"
	"github.com/okian/assessor/pkg/logger"
)

const defaultFeedSize = 100

// Sink receives notifications.
type Sink interface {
	Deliver(ctx context.Context, n model.Notification) error
}

// LogSink writes one structured line per notification.
type LogSink struct {
	logger logger.Logger
}

// NewLogSink returns a LogSink writing through l, or the global logger.
func NewLogSink(l logger.Logger) *LogSink {
	if l == nil {
		l = logger.Get().Named("notify")
	}
	return &LogSink{logger: l}
}

// Deliver implements worker.Sink.
func (s *LogSink) Deliver(ctx context.Context, n model.Notification) error {
	fields := []logger.Field{
		logger.String("kind", string(n.Kind)),
		logger.String("candidate", n.CandidateName),
		logger.String("assessor", n.AssessorName),
		logger.String("group", n.GroupID),
		logger.String("case_study", n.CaseStudy),
	}
	switch n.Kind {
	case model.NotifySubmitted:
		fields = append(fields,
			logger.String("id", n.AssessmentID),
			logger.Int("total", n.TotalScore),
			logger.String("band", string(n.Band)))
		s.logger.Info(ctx, "assessment submitted", fields...)
	case model.NotifyMissingField:
		fields = append(fields, logger.Strings("missing", n.MissingFields))
		s.logger.Warn(ctx, "assessment rejected: missing fields", fields...)
	case model.NotifyDuplicate:
		fields = append(fields, logger.String("existing_id", n.DuplicateOf))
		s.logger.Warn(ctx, "assessment rejected: duplicate", fields...)
	default:
		s.logger.Debug(ctx, "notification", fields...)
	}
	return nil
}

// FeedSink keeps the most recent notifications in a fixed-size ring.
type FeedSink struct {
	mu    sync.RWMutex
	ring  []model.Notification
	next  int
	count int
}

// NewFeedSink creates a feed holding at most size notifications.
func NewFeedSink(size int) *FeedSink {
	if size < 1 {
		size = defaultFeedSize
	}
	return &FeedSink{ring: make([]model.Notification, size)}
}

// Deliver implements worker.Sink.
func (f *FeedSink) Deliver(_ context.Context, n model.Notification) error {
	n.MissingFields = append([]string(nil), n.MissingFields...)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.ring[f.next] = n
	f.next = (f.next + 1) % len(f.ring)
	if f.count < len(f.ring) {
		f.count++
	}
	return nil
}

// Recent returns up to limit notifications, newest first. A non-positive
// limit returns everything held.
func (f *FeedSink) Recent(limit int) []model.Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if limit <= 0 || limit > f.count {
		limit = f.count
	}
	out := make([]model.Notification, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (f.next - i + len(f.ring)) % len(f.ring)
		n := f.ring[idx]
		n.MissingFields = append([]string(nil), n.MissingFields...)
		out = append(out, n)
	}
	return out
}

// Len returns the number of notifications held.
func (f *FeedSink) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.count
}

// Multi fans a notification out to every sink, joining their errors.
type Multi []Sink

// Deliver implements worker.Sink.
func (m Multi) Deliver(ctx context.Context, n model.Notification) error {
	var errs []error
	for _, s := range m {
		if err := s.Deliver(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
