package api

import (
	"fmt"
	"net/http"

	"github.com/okian/assessor/internal/adapters/repository"
	"github.com/okian/assessor/internal/domain/scoring"
	"github.com/okian/assessor/internal/domain/types"
)

// AssessmentsHandler serves submission, preview and history reads.
type AssessmentsHandler struct {
	deps Assessments
}

// NewAssessmentsHandler creates a new assessments handler.
func NewAssessmentsHandler(deps Assessments) *AssessmentsHandler {
	return &AssessmentsHandler{deps: deps}
}

// HandleSubmit handles POST /assessments.
func (h *AssessmentsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	doc, err := readObject(w, r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	form, err := parseForm(doc)
	if err != nil {
		writeFailure(w, err)
		return
	}
	marks, err := parseMarks(doc.Get("marks"))
	if err != nil {
		writeFailure(w, err)
		return
	}

	rec, err := h.deps.Submit(r.Context(), form, marks)
	if err != nil {
		writeFailure(w, err)
		return
	}
	w.Header().Set("Location", "/assessments/"+rec.ID)
	writeJSON(w, http.StatusCreated, types.FromAssessment(rec))
}

// HandlePreview handles POST /preview. The body is a marks object; nothing
// is stored.
func (h *AssessmentsHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	doc, err := readObject(w, r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	marks, err := parseMarks(doc.Get("marks"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FromResult(h.deps.Preview(marks)))
}

// HandleList handles GET /assessments. Every query parameter is an exact
// match filter.
func (h *AssessmentsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repository.Filter{
		CandidateName: q.Get("candidate_name"),
		AssessorName:  q.Get("assessor_name"),
		GroupID:       q.Get("group_id"),
		CaseStudy:     q.Get("case_study"),
	}
	if b := q.Get("band"); b != "" {
		band, ok := parseBand(b)
		if !ok {
			writeFailure(w, NewKind(fmt.Sprintf("api.HandleList: unknown band %q", b), ErrBadRequest))
			return
		}
		f.Band = band
	}
	writeJSON(w, http.StatusOK, types.FromAssessments(h.deps.List(r.Context(), f)))
}

// HandleGet handles GET /assessments/{id}.
func (h *AssessmentsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.deps.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FromAssessment(rec))
}

func parseBand(s string) (scoring.Band, bool) {
	for _, b := range scoring.Bands() {
		if string(b) == s {
			return b, true
		}
	}
	return "", false
}
