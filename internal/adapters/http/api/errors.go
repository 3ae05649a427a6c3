package api

import (
	stderrors "errors"
	"net/http"

	"github.com/okian/assessor/internal/adapters/repository"
	service "github.com/okian/assessor/internal/app"
	"github.com/okian/assessor/internal/domain/assessment"
	"github.com/okian/assessor/internal/domain/rubric"
	"github.com/okian/assessor/internal/domain/scoring"
	"github.com/okian/assessor/internal/domain/types"
	"github.com/okian/assessor/pkg/metrics"
	"github.com/pkg/errors"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = stderrors.New("bad request")
	ErrNotFound    = stderrors.New("not found")
	ErrUnavailable = stderrors.New("unavailable")
)

// kindError tags an underlying error with a sentinel kind so callers can
// match either with errors.Is.
type kindError struct {
	kind error
	err  error
}

func (e *kindError) Error() string        { return e.kind.Error() + ": " + e.err.Error() }
func (e *kindError) Unwrap() error        { return e.err }
func (e *kindError) Is(target error) bool { return target == e.kind }

// WrapKind annotates err with op and tags it with kind.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return NewKind(op, kind)
	}
	return errors.Wrap(&kindError{kind: kind, err: err}, op)
}

// NewKind returns kind annotated with op.
func NewKind(op string, kind error) error {
	return errors.WithMessage(kind, op)
}

// writeFailure maps a domain or service error to its status and error code.
func writeFailure(w http.ResponseWriter, err error) {
	var (
		missing *assessment.MissingFieldError
		dup     *assessment.DuplicateError
	)
	switch {
	case errors.As(err, &missing):
		writeJSON(w, http.StatusUnprocessableEntity, types.Error{
			Code:    "missing_field",
			Message: err.Error(),
			Fields:  missing.Fields,
		})
	case errors.As(err, &dup):
		writeJSON(w, http.StatusConflict, types.Error{
			Code:       "duplicate_assessment",
			Message:    err.Error(),
			ExistingID: dup.Existing.ID,
		})
	case errors.Is(err, assessment.ErrUnknownField):
		writeError(w, http.StatusBadRequest, "unknown_field", err)
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, scoring.ErrOutOfRange),
		errors.Is(err, rubric.ErrUnknownCompetency):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session_not_found", err)
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrTooManySessions):
		writeError(w, http.StatusTooManyRequests, "too_many_sessions", err)
	default:
		metrics.RecordErrorByComponent("api", "internal")
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
