package assessment

import (
	"fmt"

	"github.com/okian/assessor/internal/domain/model"
	"github.com/okian/assessor/internal/domain/rubric"
	"github.com/okian/assessor/internal/domain/scoring"
)

// State is the lifecycle state of an editing session.
type State string

// Session states.
const (
	StateEditing   State = "editing"
	StateSubmitted State = "submitted"
)

// SubmitFunc builds and stores a record from a session's contents.
type SubmitFunc func(form model.FormInput, m scoring.Marks) (model.Assessment, error)

// Session is one user's in-progress assessment. It is owned by a single
// editor at a time and is not safe for concurrent use.
type Session struct {
	id    string
	form  model.FormInput
	marks scoring.Marks
	state State
	last  string
}

// NewSession opens an empty session in the Editing state.
func NewSession(id string) *Session {
	return &Session{id: id, state: StateEditing}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Form returns the current form fields.
func (s *Session) Form() model.FormInput { return s.form }

// Marks returns a copy of the current marks.
func (s *Session) Marks() scoring.Marks { return s.marks }

// LastSubmitted returns the id of the last record this session produced.
func (s *Session) LastSubmitted() string { return s.last }

// edit moves a submitted session back to editing.
func (s *Session) edit() {
	s.state = StateEditing
}

// SetField sets one identity field or the observations by form name.
func (s *Session) SetField(name, value string) error {
	switch name {
	case model.FieldCandidateName:
		s.form.CandidateName = value
	case model.FieldAssessorName:
		s.form.AssessorName = value
	case model.FieldGroupID:
		s.form.GroupID = value
	case model.FieldCaseStudy:
		s.form.CaseStudy = value
	case model.FieldObservations:
		s.form.Observations = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	s.edit()
	return nil
}

// Toggle flips one sub-competency check.
func (s *Session) Toggle(id rubric.CompetencyID, index int) error {
	m, err := scoring.ToggleMark(s.marks, id, index)
	if err != nil {
		return err
	}
	s.marks = m
	s.edit()
	return nil
}

// ToggleKey flips one sub-competency check addressed by competency key.
func (s *Session) ToggleKey(key string, index int) error {
	m, err := scoring.ToggleMarkByKey(s.marks, key, index)
	if err != nil {
		return err
	}
	s.marks = m
	s.edit()
	return nil
}

// Submit hands the session contents to submit. On success the session is
// cleared and becomes Submitted; on failure nothing changes.
func (s *Session) Submit(submit SubmitFunc) (model.Assessment, error) {
	rec, err := submit(s.form, s.marks)
	if err != nil {
		return model.Assessment{}, err
	}
	s.form = model.FormInput{}
	s.marks = scoring.Marks{}
	s.state = StateSubmitted
	s.last = rec.ID
	return rec, nil
}

// Snapshot is a copy of a session's state with its live score.
type Snapshot struct {
	ID            string
	State         State
	Form          model.FormInput
	Marks         scoring.Marks
	Preview       scoring.Result
	LastSubmitted string
}

// Snapshot copies the session state and scores its marks with b.
func (s *Session) Snapshot(b *Builder) Snapshot {
	return Snapshot{
		ID:            s.id,
		State:         s.state,
		Form:          s.form,
		Marks:         s.marks,
		Preview:       b.Preview(s.marks),
		LastSubmitted: s.last,
	}
}
