package service

import (
	"github.com/okian/assessor/internal/adapters/notify"
	"github.com/okian/assessor/internal/adapters/repository"
	"github.com/okian/assessor/internal/domain/assessment"
	"github.com/okian/assessor/internal/domain/idgen"
	"github.com/okian/assessor/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of notification workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the notification queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithFeedSize sets how many recent notifications are kept.
func WithFeedSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.feedSize = size
		}
	}
}

// WithMaxSessions caps the number of open editing sessions.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithIDGenerator sets the record id source.
func WithIDGenerator(g idgen.Generator) Option {
	return func(s *Service) {
		if g != nil {
			s.ids = g
		}
	}
}

// WithSessionIDGenerator sets the session id source.
func WithSessionIDGenerator(g idgen.Generator) Option {
	return func(s *Service) {
		if g != nil {
			s.sessionIDs = g
		}
	}
}

// WithClock sets the record timestamp source.
func WithClock(c assessment.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithStore replaces the history store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithCatalogs sets the selectable group ids and case studies.
func WithCatalogs(groups, caseStudies []string) Option {
	return func(s *Service) {
		s.groups = append([]string(nil), groups...)
		s.caseStudies = append([]string(nil), caseStudies...)
	}
}

// WithSink adds a notification sink next to the log and feed sinks.
func WithSink(sink notify.Sink) Option {
	return func(s *Service) {
		if sink != nil {
			s.extraSinks = append(s.extraSinks, sink)
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
