package api

import (
	"net/http"

	"github.com/okian/assessor/internal/domain/types"
)

// CatalogProvider exposes the configured selection lists.
type CatalogProvider interface {
	Catalogs() (groups, caseStudies []string)
}

// RubricHandler serves the static competency catalog and selection lists.
type RubricHandler struct {
	catalogs CatalogProvider
	rubric   types.Rubric
}

// NewRubricHandler creates a new rubric handler.
func NewRubricHandler(catalogs CatalogProvider) *RubricHandler {
	return &RubricHandler{catalogs: catalogs, rubric: types.NewRubric()}
}

// HandleRubric handles GET /rubric.
func (h *RubricHandler) HandleRubric(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.rubric)
}

// HandleCatalogs handles GET /catalogs.
func (h *RubricHandler) HandleCatalogs(w http.ResponseWriter, _ *http.Request) {
	groups, cases := h.catalogs.Catalogs()
	if groups == nil {
		groups = []string{}
	}
	if cases == nil {
		cases = []string{}
	}
	writeJSON(w, http.StatusOK, types.Catalogs{Groups: groups, CaseStudies: cases})
}
