// Package model contains domain models passed between layers.
package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/okian/assessor/internal/domain/rubric"
	"github.com/okian/assessor/internal/domain/scoring"
)

// Names of the identity fields, as reported in validation failures.
const (
	FieldCandidateName = "candidate_name"
	FieldAssessorName  = "assessor_name"
	FieldGroupID       = "group_id"
	FieldCaseStudy     = "case_study"
	FieldObservations  = "observations"
)

// IsFormField reports whether name is one of the five form field names.
func IsFormField(name string) bool {
	switch name {
	case FieldCandidateName, FieldAssessorName, FieldGroupID, FieldCaseStudy, FieldObservations:
		return true
	}
	return false
}

// Identity is the composite key that makes an assessment unique.
type Identity struct {
	CandidateName string
	AssessorName  string
	GroupID       string
	CaseStudy     string
}

// Key encodes the identity fields into one comparable string. Each field is
// quoted, so distinct identities never share a key whatever bytes they hold.
func (i Identity) Key() string {
	fields := i.Fields()
	parts := make([]string, len(fields))
	for n, f := range fields {
		parts[n] = strconv.Quote(f[1])
	}
	return strings.Join(parts, ",")
}

// Fields returns the identity fields paired with their names, in form order.
func (i Identity) Fields() [4][2]string {
	return [4][2]string{
		{FieldCandidateName, i.CandidateName},
		{FieldAssessorName, i.AssessorName},
		{FieldGroupID, i.GroupID},
		{FieldCaseStudy, i.CaseStudy},
	}
}

// FormInput is the raw user-entered part of an assessment.
type FormInput struct {
	Identity
	Observations string
}

// Assessment is a finished, immutable assessment record.
type Assessment struct {
	ID string
	Identity
	Scores       [rubric.Count]int
	TotalScore   int
	Band         scoring.Band
	Observations string
	CreatedAt    time.Time
}

// Score returns the score recorded for one competency.
func (a Assessment) Score(id rubric.CompetencyID) int {
	if !id.Valid() {
		return 0
	}
	return a.Scores[id]
}
