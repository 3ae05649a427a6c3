// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/assessor/internal/adapters/repository"
	"github.com/okian/assessor/internal/domain/assessment"
	"github.com/okian/assessor/internal/domain/model"
	"github.com/okian/assessor/internal/domain/scoring"
	"github.com/okian/assessor/internal/domain/types"
	"github.com/okian/assessor/pkg/logger"
)

// Assessments covers submission and history reads.
type Assessments interface {
	Submit(ctx context.Context, form model.FormInput, m scoring.Marks) (model.Assessment, error)
	List(ctx context.Context, f repository.Filter) []model.Assessment
	Get(ctx context.Context, id string) (model.Assessment, error)
	Preview(m scoring.Marks) scoring.Result
	Catalogs() (groups, caseStudies []string)
	RecentNotifications(limit int) []model.Notification
}

// Sessions covers the editing-session lifecycle.
type Sessions interface {
	NewSession(ctx context.Context) (assessment.Snapshot, error)
	Session(ctx context.Context, id string) (assessment.Snapshot, error)
	SetSessionFields(ctx context.Context, id string, fields map[string]string) (assessment.Snapshot, error)
	ToggleSessionMark(ctx context.Context, id, key string, index int) (assessment.Snapshot, error)
	SubmitSession(ctx context.Context, id string) (model.Assessment, assessment.Snapshot, error)
	DeleteSession(ctx context.Context, id string) error
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Assessments
	Sessions
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	assessmentsHandler  *AssessmentsHandler
	sessionsHandler     *SessionsHandler
	rubricHandler       *RubricHandler
	notificationHandler *NotificationsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(statsProvider),
		assessmentsHandler:  NewAssessmentsHandler(deps),
		sessionsHandler:     NewSessionsHandler(deps),
		rubricHandler:       NewRubricHandler(deps),
		notificationHandler: NewNotificationsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /rubric", MetricsMiddleware(s.rubricHandler.HandleRubric, "rubric"))
	mux.HandleFunc("GET /catalogs", MetricsMiddleware(s.rubricHandler.HandleCatalogs, "catalogs"))

	mux.HandleFunc("POST /preview", MetricsMiddleware(s.assessmentsHandler.HandlePreview, "preview"))
	mux.HandleFunc("POST /assessments", MetricsMiddleware(s.assessmentsHandler.HandleSubmit, "assessments"))
	mux.HandleFunc("GET /assessments", MetricsMiddleware(s.assessmentsHandler.HandleList, "assessments"))
	mux.HandleFunc("GET /assessments/{id}", MetricsMiddleware(s.assessmentsHandler.HandleGet, "assessment"))

	mux.HandleFunc("POST /sessions", MetricsMiddleware(s.sessionsHandler.HandleOpen, "sessions"))
	mux.HandleFunc("GET /sessions/{id}", MetricsMiddleware(s.sessionsHandler.HandleGet, "session"))
	mux.HandleFunc("DELETE /sessions/{id}", MetricsMiddleware(s.sessionsHandler.HandleDelete, "session"))
	mux.HandleFunc("PUT /sessions/{id}/fields", MetricsMiddleware(s.sessionsHandler.HandleFields, "session_fields"))
	mux.HandleFunc("POST /sessions/{id}/marks/{key}/{index}", MetricsMiddleware(s.sessionsHandler.HandleToggle, "session_marks"))
	mux.HandleFunc("POST /sessions/{id}/submit", MetricsMiddleware(s.sessionsHandler.HandleSubmit, "session_submit"))

	mux.HandleFunc("GET /notifications", MetricsMiddleware(s.notificationHandler.HandleRecent, "notifications"))

	logger.Get().Debug(ctx, "api routes registered")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, types.Error{Code: code, Message: msg})
}
