// Package scoring turns checked sub-competencies into per-competency scores,
// a total out of 100 and a performance band.
package scoring

import (
	"fmt"

	"github.com/okian/assessor/internal/domain/rubric"
)

// CompetencyMarks holds the sub-competency checks of one competency.
type CompetencyMarks struct {
	Checks [rubric.SubCount]bool
}

// Marks holds every check of an assessment, indexed by competency id.
// The zero value has every check cleared.
type Marks [rubric.Count]CompetencyMarks

// Result is the scoring breakdown of a set of marks.
type Result struct {
	Scores [rubric.Count]int
	Total  int
	Band   Band
}

// Scorer computes a Result from marks.
type Scorer interface {
	Score(m Marks) Result
}

// RubricScorer scores marks by counting checks against the fixed rubric.
type RubricScorer struct{}

// NewRubricScorer creates a scorer over the built-in rubric.
func NewRubricScorer() *RubricScorer {
	return &RubricScorer{}
}

// Score returns the full breakdown for m.
func (s *RubricScorer) Score(m Marks) Result {
	var r Result
	for i := range m {
		r.Scores[i] = m[i].Count()
		r.Total += r.Scores[i]
	}
	r.Band = ClassifyBand(r.Total)
	return r
}

// Count returns the number of checked sub-competencies.
func (c CompetencyMarks) Count() int {
	n := 0
	for _, v := range c.Checks {
		if v {
			n++
		}
	}
	return n
}

// Checked reports whether the check at index is set. Out of range reads as false.
func (m Marks) Checked(id rubric.CompetencyID, index int) bool {
	if !id.Valid() || index < 0 || index >= rubric.SubCount {
		return false
	}
	return m[id].Checks[index]
}

// ToggleMark returns a copy of m with exactly the check at (id, index) flipped.
func ToggleMark(m Marks, id rubric.CompetencyID, index int) (Marks, error) {
	if !id.Valid() {
		return m, fmt.Errorf("%w: competency %s", ErrOutOfRange, id)
	}
	if index < 0 || index >= rubric.SubCount {
		return m, fmt.Errorf("%w: index %d for %s", ErrOutOfRange, index, id)
	}
	m[id].Checks[index] = !m[id].Checks[index]
	return m, nil
}

// ToggleMarkByKey is ToggleMark addressed by competency key.
func ToggleMarkByKey(m Marks, key string, index int) (Marks, error) {
	id, ok := rubric.Lookup(key)
	if !ok {
		return m, fmt.Errorf("%w: competency %q", ErrOutOfRange, key)
	}
	return ToggleMark(m, id, index)
}

// ScoreCompetency counts the checks set for one competency (0-10).
// An invalid id scores zero.
func ScoreCompetency(m Marks, id rubric.CompetencyID) int {
	if !id.Valid() {
		return 0
	}
	return m[id].Count()
}

// ScoreTotal sums ScoreCompetency over the whole rubric (0-100).
func ScoreTotal(m Marks) int {
	total := 0
	for _, id := range rubric.IDs() {
		total += ScoreCompetency(m, id)
	}
	return total
}
