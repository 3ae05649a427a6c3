package assessment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/okian/assessor/internal/domain/model"
)

// Sentinel kinds for submission failures. Both are recoverable: no record is
// produced and the caller keeps editing.
var (
	ErrMissingField        = errors.New("missing required field")
	ErrDuplicateAssessment = errors.New("duplicate assessment")

	ErrUnknownField = errors.New("unknown form field")
)

// MissingFieldError lists the required fields that were empty.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingField, strings.Join(e.Fields, ", "))
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// DuplicateError carries the existing record that matched the submitted identity.
type DuplicateError struct {
	Existing model.Assessment
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s: matches assessment %s", ErrDuplicateAssessment, e.Existing.ID)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicateAssessment }
