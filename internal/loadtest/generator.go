package loadtest

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/okian/assessor/internal/domain/model"
	"github.com/okian/assessor/internal/domain/rubric"
	"github.com/okian/assessor/internal/domain/types"
)

// Generator produces submissions with unique identities.
type Generator struct {
	rng         *rand.Rand
	groups      []string
	caseStudies []string
}

// NewGenerator creates a generator picking groups and case studies from
// the given catalogs.
func NewGenerator(seed int64, groups, caseStudies []string) *Generator {
	if len(groups) == 0 {
		groups = []string{"Group A"}
	}
	if len(caseStudies) == 0 {
		caseStudies = []string{"Retail Expansion"}
	}
	return &Generator{rng: rand.New(rand.NewSource(seed)), groups: groups, caseStudies: caseStudies}
}

// Submissions returns n submissions. The candidate name carries a uuid so
// identities never collide with each other or with earlier runs.
func (g *Generator) Submissions(n int) []types.SubmitRequest {
	out := make([]types.SubmitRequest, n)
	for i := range out {
		out[i] = types.SubmitRequest{
			CandidateName: "Candidate " + uuid.NewString(),
			AssessorName:  "Load Assessor",
			GroupID:       g.groups[g.rng.Intn(len(g.groups))],
			CaseStudy:     g.caseStudies[g.rng.Intn(len(g.caseStudies))],
			Observations:  "generated",
			Marks:         g.marks(),
		}
	}
	return out
}

// marks checks each sub-competency with a per-submission probability so
// totals spread across every band.
func (g *Generator) marks() map[string][]bool {
	p := g.rng.Float64()
	out := make(map[string][]bool, rubric.Count)
	for _, id := range rubric.IDs() {
		checks := make([]bool, rubric.SubCount)
		for i := range checks {
			checks[i] = g.rng.Float64() < p
		}
		out[id.Key()] = checks
	}
	return out
}

// Blank returns a copy of req with one required field cleared, and the
// name of that field.
func (g *Generator) Blank(req types.SubmitRequest) (types.SubmitRequest, string) {
	switch g.rng.Intn(4) {
	case 0:
		req.CandidateName = ""
		return req, model.FieldCandidateName
	case 1:
		req.AssessorName = "  "
		return req, model.FieldAssessorName
	case 2:
		req.GroupID = ""
		return req, model.FieldGroupID
	default:
		req.CaseStudy = ""
		return req, model.FieldCaseStudy
	}
}

// ExpectedTotal counts the checked marks of req.
func ExpectedTotal(req types.SubmitRequest) int {
	total := 0
	for _, checks := range req.Marks {
		for _, v := range checks {
			if v {
				total++
			}
		}
	}
	return total
}
