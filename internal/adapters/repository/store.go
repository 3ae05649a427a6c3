// Package repository holds the assessment history.
package repository

import (
	"context"

	"github.com/okian/assessor/internal/domain/model"
	"github.com/okian/assessor/internal/domain/scoring"
)

// Filter narrows a history query. Zero-valued fields match everything.
type Filter struct {
	CandidateName string
	AssessorName  string
	GroupID       string
	CaseStudy     string
	Band          scoring.Band
}

// Match reports whether rec satisfies every set field of f.
func (f Filter) Match(rec model.Assessment) bool {
	switch {
	case f.CandidateName != "" && rec.CandidateName != f.CandidateName:
		return false
	case f.AssessorName != "" && rec.AssessorName != f.AssessorName:
		return false
	case f.GroupID != "" && rec.GroupID != f.GroupID:
		return false
	case f.CaseStudy != "" && rec.CaseStudy != f.CaseStudy:
		return false
	case f.Band != "" && rec.Band != f.Band:
		return false
	}
	return true
}

// Store provides read/append access to the assessment history.
type Store interface {
	// Append stores rec at the end of the history. It fails with
	// ErrDuplicateID or ErrDuplicateIdentity and leaves the history unchanged.
	Append(ctx context.Context, rec model.Assessment) error

	// List returns a copy of the history in append order.
	List(ctx context.Context) []model.Assessment

	// Find returns, in append order, the records matching f.
	Find(ctx context.Context, f Filter) []model.Assessment

	// Get returns the record with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (model.Assessment, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) int
}
