// Package assessment validates, scores and builds assessment records.
//
// Build is deterministic given its inputs: the only side effects, the
// timestamp and the record id, come from an injected Clock and IDGenerator.
// The history passed in is read, never written; appending the new record and
// serialising concurrent appends is the caller's job.
package assessment

import (
	"strings"

	"github.com/okian/assessor/internal/domain/dedupe"
	"github.com/okian/assessor/internal/domain/idgen"
	"github.com/okian/assessor/internal/domain/model"
	"github.com/okian/assessor/internal/domain/scoring"
)

// IDGenerator supplies record ids. It must never hand out the same id twice.
type IDGenerator = idgen.Generator

// Builder turns form input and marks into finished records.
type Builder struct {
	clock  Clock
	ids    IDGenerator
	scorer scoring.Scorer
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithClock sets the timestamp source.
func WithClock(c Clock) Option {
	return func(b *Builder) {
		if c != nil {
			b.clock = c
		}
	}
}

// WithIDGenerator sets the id source.
func WithIDGenerator(g IDGenerator) Option {
	return func(b *Builder) {
		if g != nil {
			b.ids = g
		}
	}
}

// WithScorer replaces the rubric scorer.
func WithScorer(s scoring.Scorer) Option {
	return func(b *Builder) {
		if s != nil {
			b.scorer = s
		}
	}
}

// NewBuilder creates a Builder using the system clock and UUID ids unless
// overridden.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		clock:  SystemClock{},
		ids:    idgen.UUID{},
		scorer: scoring.NewRubricScorer(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ValidateRequired fails with a *MissingFieldError naming every identity
// field that is empty or whitespace-only.
func ValidateRequired(id model.Identity) error {
	var missing []string
	for _, f := range id.Fields() {
		if strings.TrimSpace(f[1]) == "" {
			missing = append(missing, f[0])
		}
	}
	if len(missing) > 0 {
		return &MissingFieldError{Fields: missing}
	}
	return nil
}

// FindDuplicate returns the first record in existing with the same identity.
func FindDuplicate(existing []model.Assessment, id model.Identity) (model.Assessment, bool) {
	return dedupe.FindDuplicate(existing, id)
}

// Build validates the form, rejects an identity already present in existing,
// and returns the scored record. On failure no id is drawn and no record is
// returned.
func (b *Builder) Build(form model.FormInput, m scoring.Marks, existing []model.Assessment) (model.Assessment, error) {
	if err := ValidateRequired(form.Identity); err != nil {
		return model.Assessment{}, err
	}
	if dup, ok := FindDuplicate(existing, form.Identity); ok {
		return model.Assessment{}, &DuplicateError{Existing: dup}
	}

	res := b.scorer.Score(m)
	return model.Assessment{
		ID:           b.ids.NewID(),
		Identity:     form.Identity,
		Scores:       res.Scores,
		TotalScore:   res.Total,
		Band:         res.Band,
		Observations: form.Observations,
		CreatedAt:    b.clock.Now(),
	}, nil
}

// Preview scores marks without validating or building a record.
func (b *Builder) Preview(m scoring.Marks) scoring.Result {
	return b.scorer.Score(m)
}
