package api

import (
	"net/http"
	"strconv"

	"github.com/okian/assessor/internal/domain/assessment"
	"github.com/okian/assessor/internal/domain/model"
	"github.com/okian/assessor/internal/domain/types"
	"github.com/tidwall/gjson"
)

// SessionsHandler serves the editing-session lifecycle.
type SessionsHandler struct {
	deps Sessions
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps Sessions) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// sessionSubmitResponse carries the stored record and the cleared session.
type sessionSubmitResponse struct {
	Assessment types.Assessment `json:"assessment"`
	Session    types.Session    `json:"session"`
}

// HandleOpen handles POST /sessions.
func (h *SessionsHandler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	snap, err := h.deps.NewSession(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+snap.ID)
	writeJSON(w, http.StatusCreated, types.FromSnapshot(snap))
}

// HandleGet handles GET /sessions/{id}.
func (h *SessionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	snap, err := h.deps.Session(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FromSnapshot(snap))
}

// HandleDelete handles DELETE /sessions/{id}.
func (h *SessionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteSession(r.Context(), r.PathValue("id")); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleFields handles PUT /sessions/{id}/fields. The body is an object of
// field name to string value; names outside the form are rejected.
func (h *SessionsHandler) HandleFields(w http.ResponseWriter, r *http.Request) {
	doc, err := readObject(w, r)
	if err != nil {
		writeFailure(w, err)
		return
	}

	names := make([]string, 0, len(formFields))
	var unknown string
	doc.ForEach(func(key, _ gjson.Result) bool {
		if !model.IsFormField(key.String()) {
			unknown = key.String()
			return false
		}
		names = append(names, key.String())
		return true
	})
	if unknown != "" {
		writeError(w, http.StatusBadRequest, "unknown_field", NewKind("api.HandleFields: "+strconv.Quote(unknown), assessment.ErrUnknownField))
		return
	}
	fields, err := parseStrings(doc, names)
	if err != nil {
		writeFailure(w, err)
		return
	}

	snap, err := h.deps.SetSessionFields(r.Context(), r.PathValue("id"), fields)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FromSnapshot(snap))
}

// HandleToggle handles POST /sessions/{id}/marks/{key}/{index}.
func (h *SessionsHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeFailure(w, WrapKind("api.HandleToggle", ErrBadRequest, err))
		return
	}
	snap, err := h.deps.ToggleSessionMark(r.Context(), r.PathValue("id"), r.PathValue("key"), index)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FromSnapshot(snap))
}

// HandleSubmit handles POST /sessions/{id}/submit. Failures leave the
// session as it was and answer with the same codes as POST /assessments.
func (h *SessionsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	rec, snap, err := h.deps.SubmitSession(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	w.Header().Set("Location", "/assessments/"+rec.ID)
	writeJSON(w, http.StatusCreated, sessionSubmitResponse{
		Assessment: types.FromAssessment(rec),
		Session:    types.FromSnapshot(snap),
	})
}
