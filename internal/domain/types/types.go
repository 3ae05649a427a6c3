// Package types contains the JSON shapes exchanged over the HTTP API.
package types

import (
	"time"

	"github.com/okian/assessor/internal/domain/assessment"
	"github.com/okian/assessor/internal/domain/model"
	"github.com/okian/assessor/internal/domain/rubric"
	"github.com/okian/assessor/internal/domain/scoring"
)

// Competency is one rubric entry.
type Competency struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Descriptors []string `json:"descriptors"`
}

// Rubric is the full catalog.
type Rubric struct {
	Competencies []Competency `json:"competencies"`
	MaxScore     int          `json:"max_score"`
	Bands        []BandRange  `json:"bands"`
}

// BandRange is the inclusive total range of one band.
type BandRange struct {
	Band string `json:"band"`
	Min  int    `json:"min"`
	Max  int    `json:"max"`
}

// CompetencyScore is one competency's score within a record or preview.
type CompetencyScore struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Score int    `json:"score"`
	Max   int    `json:"max"`
}

// Assessment is the public view of a stored record.
type Assessment struct {
	ID            string            `json:"id"`
	CandidateName string            `json:"candidate_name"`
	AssessorName  string            `json:"assessor_name"`
	GroupID       string            `json:"group_id"`
	CaseStudy     string            `json:"case_study"`
	Scores        []CompetencyScore `json:"scores"`
	TotalScore    int               `json:"total_score"`
	MaxScore      int               `json:"max_score"`
	Band          string            `json:"band"`
	Observations  string            `json:"observations"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Preview is a live score with its band.
type Preview struct {
	Scores     []CompetencyScore `json:"scores"`
	TotalScore int               `json:"total_score"`
	MaxScore   int               `json:"max_score"`
	Band       string            `json:"band"`
}

// SubmitRequest is the body of POST /assessments. Marks maps a competency key
// to either ten booleans or the list of checked indices; the server accepts
// both, this type sends the boolean form.
type SubmitRequest struct {
	CandidateName string            `json:"candidate_name"`
	AssessorName  string            `json:"assessor_name"`
	GroupID       string            `json:"group_id"`
	CaseStudy     string            `json:"case_study"`
	Observations  string            `json:"observations"`
	Marks         map[string][]bool `json:"marks"`
}

// Session is the public view of an editing session.
type Session struct {
	ID            string            `json:"id"`
	State         string            `json:"state"`
	Fields        map[string]string `json:"fields"`
	Marks         map[string][]bool `json:"marks"`
	Preview       Preview           `json:"preview"`
	LastSubmitted string            `json:"last_submitted,omitempty"`
}

// Notification is the public view of a pipeline notification.
type Notification struct {
	Kind          string    `json:"kind"`
	AssessmentID  string    `json:"assessment_id,omitempty"`
	CandidateName string    `json:"candidate_name"`
	AssessorName  string    `json:"assessor_name"`
	GroupID       string    `json:"group_id"`
	CaseStudy     string    `json:"case_study"`
	TotalScore    int       `json:"total_score,omitempty"`
	Band          string    `json:"band,omitempty"`
	MissingFields []string  `json:"missing_fields,omitempty"`
	DuplicateOf   string    `json:"duplicate_of,omitempty"`
	At            time.Time `json:"at"`
}

// Catalogs lists the selectable group ids and case studies.
type Catalogs struct {
	Groups      []string `json:"groups"`
	CaseStudies []string `json:"case_studies"`
}

// Error is the body of every non-2xx response.
type Error struct {
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Fields     []string `json:"fields,omitempty"`
	ExistingID string   `json:"existing_id,omitempty"`
}

// NewRubric renders the catalog.
func NewRubric() Rubric {
	cat := rubric.Catalog()
	out := Rubric{Competencies: make([]Competency, 0, len(cat)), MaxScore: rubric.MaxScore}
	for _, c := range cat {
		out.Competencies = append(out.Competencies, Competency{
			Key:         c.Key,
			Name:        c.Name,
			Descriptors: append([]string(nil), c.Descriptors[:]...),
		})
	}
	for _, r := range scoring.Ranges() {
		out.Bands = append(out.Bands, BandRange{Band: string(r.Band), Min: r.Min, Max: r.Max})
	}
	return out
}

func competencyScores(scores [rubric.Count]int) []CompetencyScore {
	out := make([]CompetencyScore, 0, rubric.Count)
	for _, id := range rubric.IDs() {
		out = append(out, CompetencyScore{Key: id.Key(), Name: id.Name(), Score: scores[id], Max: rubric.SubCount})
	}
	return out
}

// FromAssessment renders a stored record.
func FromAssessment(a model.Assessment) Assessment {
	return Assessment{
		ID:            a.ID,
		CandidateName: a.CandidateName,
		AssessorName:  a.AssessorName,
		GroupID:       a.GroupID,
		CaseStudy:     a.CaseStudy,
		Scores:        competencyScores(a.Scores),
		TotalScore:    a.TotalScore,
		MaxScore:      rubric.MaxScore,
		Band:          string(a.Band),
		Observations:  a.Observations,
		CreatedAt:     a.CreatedAt,
	}
}

// FromAssessments renders a list of records, never nil.
func FromAssessments(list []model.Assessment) []Assessment {
	out := make([]Assessment, 0, len(list))
	for _, a := range list {
		out = append(out, FromAssessment(a))
	}
	return out
}

// FromResult renders a live score.
func FromResult(r scoring.Result) Preview {
	return Preview{
		Scores:     competencyScores(r.Scores),
		TotalScore: r.Total,
		MaxScore:   rubric.MaxScore,
		Band:       string(r.Band),
	}
}

// FromMarks renders marks keyed by competency key.
func FromMarks(m scoring.Marks) map[string][]bool {
	out := make(map[string][]bool, rubric.Count)
	for _, id := range rubric.IDs() {
		out[id.Key()] = append([]bool(nil), m[id].Checks[:]...)
	}
	return out
}

// FromForm renders form fields keyed by field name.
func FromForm(f model.FormInput) map[string]string {
	return map[string]string{
		model.FieldCandidateName: f.CandidateName,
		model.FieldAssessorName:  f.AssessorName,
		model.FieldGroupID:       f.GroupID,
		model.FieldCaseStudy:     f.CaseStudy,
		model.FieldObservations:  f.Observations,
	}
}

// FromNotification renders a notification.
func FromNotification(n model.Notification) Notification {
	return Notification{
		Kind:          string(n.Kind),
		AssessmentID:  n.AssessmentID,
		CandidateName: n.CandidateName,
		AssessorName:  n.AssessorName,
		GroupID:       n.GroupID,
		CaseStudy:     n.CaseStudy,
		TotalScore:    n.TotalScore,
		Band:          string(n.Band),
		MissingFields: n.MissingFields,
		DuplicateOf:   n.DuplicateOf,
		At:            n.At,
	}
}

// FromSnapshot renders an editing session.
func FromSnapshot(s assessment.Snapshot) Session {
	return Session{
		ID:            s.ID,
		State:         string(s.State),
		Fields:        FromForm(s.Form),
		Marks:         FromMarks(s.Marks),
		Preview:       FromResult(s.Preview),
		LastSubmitted: s.LastSubmitted,
	}
}
