// Package service wires the assessment core to storage, sessions and the
// notification pipeline, and implements the dependencies of the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/assessor/internal/adapters/mq/queue"
	"github.com/okian/assessor/internal/adapters/mq/worker"
	"github.com/okian/assessor/internal/adapters/notify"
	"github.com/okian/assessor/internal/adapters/repository"
	"github.com/okian/assessor/internal/domain/assessment"
	"github.com/okian/assessor/internal/domain/dedupe"
	"github.com/okian/assessor/internal/domain/idgen"
	"github.com/okian/assessor/internal/domain/model"
	"github.com/okian/assessor/internal/domain/rubric"
	"github.com/okian/assessor/internal/domain/scoring"
	"github.com/okian/assessor/pkg/logger"
	"github.com/okian/assessor/pkg/metrics"
)

const (
	defaultQueueSize   = 1024
	defaultFeedSize    = 100
	defaultMaxSessions = 1000
)

// Rejection reasons used in metrics and logs.
const (
	reasonMissingField = "missing_field"
	reasonDuplicate    = "duplicate_assessment"
	reasonStore        = "store_error"
)

// Service implements the API dependencies for the assessment system.
type Service struct {
	mu sync.RWMutex // lifecycle
	// submitMu serialises snapshot, build and append so two writers can never
	// both pass the duplicate check for the same identity.
	submitMu sync.Mutex
	sessMu   sync.Mutex

	builder  *assessment.Builder
	store    repository.Store
	queue    *queue.InMemoryQueue
	pool     *worker.Pool
	feed     *notify.FeedSink
	sessions map[string]*assessment.Session

	ids         idgen.Generator
	sessionIDs  idgen.Generator
	clock       assessment.Clock
	extraSinks  []notify.Sink
	workerCount int
	queueSize   int
	feedSize    int
	maxSessions int
	groups      []string
	caseStudies []string

	started bool
	logger  logger.Logger
}

// New constructs a Service. Components are built eagerly; Start only launches
// the notification workers.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   defaultQueueSize,
		feedSize:    defaultFeedSize,
		maxSessions: defaultMaxSessions,
		ids:         idgen.UUID{},
		sessionIDs:  idgen.UUID{},
		clock:       assessment.SystemClock{},
		sessions:    make(map[string]*assessment.Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}

	s.builder = assessment.NewBuilder(
		assessment.WithClock(s.clock),
		assessment.WithIDGenerator(s.ids),
	)
	s.feed = notify.NewFeedSink(s.feedSize)
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	sinks := append(notify.Multi{notify.NewLogSink(s.logger.Named("notify")), s.feed}, s.extraSinks...)
	s.pool = worker.NewPool(s.workerCount, s.queue, sinks)
	return s
}

// Start launches the notification workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.pool.Start(ctx)
	s.started = true
	s.logger.Info(ctx, "assessment service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("maxSessions", s.maxSessions),
	)
	return nil
}

// Stop drains pending notifications and stops the workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping assessment service...")
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "notification workers did not stop cleanly", logger.Error(err))
	}
	s.started = false
	s.logger.Info(ctx, "assessment service stopped")
}

// Submit validates, scores and stores one assessment. It fails with
// assessment.ErrMissingField or assessment.ErrDuplicateAssessment (see the
// *MissingFieldError and *DuplicateError types) and leaves the history
// unchanged in that case.
func (s *Service) Submit(ctx context.Context, form model.FormInput, m scoring.Marks) (model.Assessment, error) {
	start := time.Now()
	defer func() {
		metrics.RecordBuildLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	rec, err := s.buildAndAppend(ctx, form, m)
	s.publish(ctx, form.Identity, rec, err)
	if err != nil {
		return model.Assessment{}, err
	}
	metrics.RecordAssessmentSubmitted(string(rec.Band), rec.TotalScore)
	metrics.UpdateHistorySize(s.store.Count(ctx))
	return rec, nil
}

func (s *Service) buildAndAppend(ctx context.Context, form model.FormInput, m scoring.Marks) (model.Assessment, error) {
	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	existing := s.store.List(ctx)
	rec, err := s.builder.Build(form, m, existing)
	if err != nil {
		return model.Assessment{}, err
	}
	if err := s.store.Append(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrDuplicateIdentity) {
			// Another writer reached the store without going through Submit.
			if dup, ok := dedupe.FindDuplicate(s.store.List(ctx), form.Identity); ok {
				return model.Assessment{}, &assessment.DuplicateError{Existing: dup}
			}
		}
		return model.Assessment{}, fmt.Errorf("store assessment %s: %w", rec.ID, err)
	}
	return rec, nil
}

// publish reports a submission outcome to the notification pipeline.
func (s *Service) publish(ctx context.Context, id model.Identity, rec model.Assessment, err error) {
	n := model.Notification{Identity: id, At: s.clock.Now()}

	var missing *assessment.MissingFieldError
	var dup *assessment.DuplicateError
	switch {
	case err == nil:
		n.Kind = model.NotifySubmitted
		n.AssessmentID = rec.ID
		n.TotalScore = rec.TotalScore
		n.Band = rec.Band
		n.At = rec.CreatedAt
	case errors.As(err, &missing):
		n.Kind = model.NotifyMissingField
		n.MissingFields = append([]string(nil), missing.Fields...)
		metrics.RecordAssessmentRejected(reasonMissingField)
	case errors.As(err, &dup):
		n.Kind = model.NotifyDuplicate
		n.DuplicateOf = dup.Existing.ID
		metrics.RecordAssessmentRejected(reasonDuplicate)
	default:
		metrics.RecordAssessmentRejected(reasonStore)
		metrics.RecordErrorByComponent("service", reasonStore)
		s.logger.Error(ctx, "submission failed", logger.Error(err))
		return
	}

	if perr := s.queue.Publish(ctx, n); perr != nil {
		s.logger.Debug(ctx, "notification dropped",
			logger.String("kind", string(n.Kind)), logger.Error(perr))
	}
}

// List returns the stored assessments matching f in submission order.
func (s *Service) List(ctx context.Context, f repository.Filter) []model.Assessment {
	return s.store.Find(ctx, f)
}

// Get returns one stored assessment or repository.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (model.Assessment, error) {
	return s.store.Get(ctx, id)
}

// Preview scores marks without storing anything.
func (s *Service) Preview(m scoring.Marks) scoring.Result {
	return s.builder.Preview(m)
}

// Rubric returns the competency catalog.
func (s *Service) Rubric() [rubric.Count]rubric.Competency {
	return rubric.Catalog()
}

// Catalogs returns copies of the configured group ids and case studies.
func (s *Service) Catalogs() (groups, caseStudies []string) {
	return append([]string(nil), s.groups...), append([]string(nil), s.caseStudies...)
}

// RecentNotifications returns up to limit notifications, newest first.
func (s *Service) RecentNotifications(limit int) []model.Notification {
	return s.feed.Recent(limit)
}

// NewSession opens an empty editing session.
func (s *Service) NewSession(ctx context.Context) (assessment.Snapshot, error) {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()

	if len(s.sessions) >= s.maxSessions {
		metrics.RecordErrorByComponent("service", "too_many_sessions")
		return assessment.Snapshot{}, fmt.Errorf("%w: limit %d", ErrTooManySessions, s.maxSessions)
	}
	sess := assessment.NewSession(s.sessionIDs.NewID())
	s.sessions[sess.ID()] = sess

	metrics.RecordSessionOpened()
	metrics.UpdateActiveSessions(len(s.sessions))
	s.logger.Debug(ctx, "session opened", logger.String("session", sess.ID()))
	return s.snapshot(sess), nil
}

// Session returns a snapshot of one session.
func (s *Service) Session(_ context.Context, id string) (assessment.Snapshot, error) {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()

	sess, err := s.lookup(id)
	if err != nil {
		return assessment.Snapshot{}, err
	}
	return s.snapshot(sess), nil
}

// SetSessionFields sets form fields by name. Unknown names fail with
// assessment.ErrUnknownField before any field is changed.
func (s *Service) SetSessionFields(_ context.Context, id string, fields map[string]string) (assessment.Snapshot, error) {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()

	sess, err := s.lookup(id)
	if err != nil {
		return assessment.Snapshot{}, err
	}
	for name := range fields {
		if !model.IsFormField(name) {
			return assessment.Snapshot{}, fmt.Errorf("%w: %q", assessment.ErrUnknownField, name)
		}
	}
	for name, value := range fields {
		if err := sess.SetField(name, value); err != nil {
			return assessment.Snapshot{}, err
		}
	}
	return s.snapshot(sess), nil
}

// ToggleSessionMark flips one sub-competency check in a session.
func (s *Service) ToggleSessionMark(_ context.Context, id, key string, index int) (assessment.Snapshot, error) {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()

	sess, err := s.lookup(id)
	if err != nil {
		return assessment.Snapshot{}, err
	}
	if err := sess.ToggleKey(key, index); err != nil {
		return assessment.Snapshot{}, err
	}
	metrics.RecordMarkToggled()
	return s.snapshot(sess), nil
}

// SubmitSession submits a session's contents. On success the session is
// cleared and Submitted; on failure it keeps its contents.
func (s *Service) SubmitSession(ctx context.Context, id string) (model.Assessment, assessment.Snapshot, error) {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()

	sess, err := s.lookup(id)
	if err != nil {
		return model.Assessment{}, assessment.Snapshot{}, err
	}
	rec, err := sess.Submit(func(form model.FormInput, m scoring.Marks) (model.Assessment, error) {
		return s.Submit(ctx, form, m)
	})
	return rec, s.snapshot(sess), err
}

// DeleteSession discards a session.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()

	if _, err := s.lookup(id); err != nil {
		return err
	}
	delete(s.sessions, id)
	metrics.UpdateActiveSessions(len(s.sessions))
	s.logger.Debug(ctx, "session closed", logger.String("session", id))
	return nil
}

// lookup expects sessMu to be held.
func (s *Service) lookup(id string) (*assessment.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

func (s *Service) snapshot(sess *assessment.Session) assessment.Snapshot {
	return sess.Snapshot(s.builder)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()

	s.sessMu.Lock()
	open := len(s.sessions)
	s.sessMu.Unlock()

	ctx := context.Background()
	total := s.store.Count(ctx)
	queueLen := s.queue.Len(ctx)

	byBand := make(map[string]int, len(scoring.Bands()))
	for _, b := range scoring.Bands() {
		byBand[string(b)] = 0
	}
	for _, rec := range s.store.List(ctx) {
		byBand[string(rec.Band)]++
	}

	metrics.UpdateHistorySize(total)
	metrics.UpdateActiveSessions(open)

	return map[string]interface{}{
		"started":                started,
		"workerCount":            s.pool.Size(),
		"queueSize":              s.queueSize,
		"queueLength":            queueLen,
		"notificationsDropped":   s.queue.Dropped(),
		"notificationsDelivered": s.pool.Delivered(),
		"totalAssessments":       total,
		"assessmentsByBand":      byBand,
		"openSessions":           open,
		"maxSessions":            s.maxSessions,
	}
}
