package assessment_test

import (
	"errors"
	"testing"

	"github.com/okian/assessor/internal/domain/assessment"
	"github.com/okian/assessor/internal/domain/model"
	"github.com/okian/assessor/internal/domain/rubric"
	"github.com/okian/assessor/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func fillSession(s *assessment.Session) {
	form := validForm()
	So(s.SetField(model.FieldCandidateName, form.CandidateName), ShouldBeNil)
	So(s.SetField(model.FieldAssessorName, form.AssessorName), ShouldBeNil)
	So(s.SetField(model.FieldGroupID, form.GroupID), ShouldBeNil)
	So(s.SetField(model.FieldCaseStudy, form.CaseStudy), ShouldBeNil)
	So(s.SetField(model.FieldObservations, form.Observations), ShouldBeNil)
}

func TestSession(t *testing.T) {
	Convey("Given a new session", t, func() {
		s := assessment.NewSession("sess-1")
		b := newBuilder()
		var history []model.Assessment
		submit := func(form model.FormInput, m scoring.Marks) (model.Assessment, error) {
			rec, err := b.Build(form, m, history)
			if err == nil {
				history = append(history, rec)
			}
			return rec, err
		}

		Convey("Then it is editing with empty fields and marks", func() {
			So(s.ID(), ShouldEqual, "sess-1")
			So(s.State(), ShouldEqual, assessment.StateEditing)
			So(s.Form(), ShouldResemble, model.FormInput{})
			So(s.Marks(), ShouldResemble, scoring.Marks{})
		})

		Convey("When toggling marks", func() {
			So(s.Toggle(rubric.Communication, 0), ShouldBeNil)
			So(s.ToggleKey("communication", 1), ShouldBeNil)
			So(s.ToggleKey("communication", 0), ShouldBeNil)

			Convey("Then only the net changes remain", func() {
				m := s.Marks()
				So(m.Checked(rubric.Communication, 0), ShouldBeFalse)
				So(m.Checked(rubric.Communication, 1), ShouldBeTrue)
				So(scoring.ScoreTotal(m), ShouldEqual, 1)
			})

			Convey("And out-of-range toggles fail without changing anything", func() {
				before := s.Marks()
				So(errors.Is(s.Toggle(rubric.Communication, 10), scoring.ErrOutOfRange), ShouldBeTrue)
				So(errors.Is(s.ToggleKey("nope", 0), scoring.ErrOutOfRange), ShouldBeTrue)
				So(s.Marks(), ShouldResemble, before)
			})
		})

		Convey("When setting an unknown field", func() {
			err := s.SetField("favourite_colour", "blue")

			Convey("Then ErrUnknownField is returned", func() {
				So(errors.Is(err, assessment.ErrUnknownField), ShouldBeTrue)
			})
		})

		Convey("When submitting with a missing field", func() {
			So(s.SetField(model.FieldCandidateName, "Ada"), ShouldBeNil)
			So(s.Toggle(rubric.Leadership, 4), ShouldBeNil)
			_, err := s.Submit(submit)

			Convey("Then the session stays editing with its contents", func() {
				So(errors.Is(err, assessment.ErrMissingField), ShouldBeTrue)
				So(s.State(), ShouldEqual, assessment.StateEditing)
				So(s.Form().CandidateName, ShouldEqual, "Ada")
				So(s.Marks().Checked(rubric.Leadership, 4), ShouldBeTrue)
				So(history, ShouldBeEmpty)
			})
		})

		Convey("When submitting a complete session", func() {
			fillSession(s)
			for i := 0; i < 7; i++ {
				So(s.Toggle(rubric.DecisionMaking, i), ShouldBeNil)
			}
			rec, err := s.Submit(submit)

			Convey("Then a record is produced and the session resets", func() {
				So(err, ShouldBeNil)
				So(rec.TotalScore, ShouldEqual, 7)
				So(s.State(), ShouldEqual, assessment.StateSubmitted)
				So(s.LastSubmitted(), ShouldEqual, rec.ID)
				So(s.Form(), ShouldResemble, model.FormInput{})
				So(s.Marks(), ShouldResemble, scoring.Marks{})
			})

			Convey("And editing again returns it to the editing state", func() {
				So(s.Toggle(rubric.Creativity, 2), ShouldBeNil)
				So(s.State(), ShouldEqual, assessment.StateEditing)
			})

			Convey("And resubmitting the same identity is a duplicate", func() {
				fillSession(s)
				_, err := s.Submit(submit)
				So(errors.Is(err, assessment.ErrDuplicateAssessment), ShouldBeTrue)
				So(s.State(), ShouldEqual, assessment.StateEditing)
				So(len(history), ShouldEqual, 1)
			})
		})
	})
}

func TestSessionSnapshot(t *testing.T) {
	Convey("Given a session with some marks", t, func() {
		s := assessment.NewSession("sess-9")
		So(s.SetField(model.FieldGroupID, "G7"), ShouldBeNil)
		So(s.Toggle(rubric.ProblemSolving, 4), ShouldBeNil)
		So(s.Toggle(rubric.ProblemSolving, 5), ShouldBeNil)

		Convey("When taking a snapshot", func() {
			snap := s.Snapshot(newBuilder())

			Convey("Then it carries the state and the live score", func() {
				So(snap.ID, ShouldEqual, "sess-9")
				So(snap.State, ShouldEqual, assessment.StateEditing)
				So(snap.Form.GroupID, ShouldEqual, "G7")
				So(snap.Preview.Total, ShouldEqual, 2)
				So(snap.Preview.Scores[rubric.ProblemSolving], ShouldEqual, 2)
				So(snap.Preview.Band, ShouldEqual, scoring.BandLimited)
			})

			Convey("And later edits do not leak into it", func() {
				So(s.Toggle(rubric.ProblemSolving, 6), ShouldBeNil)
				So(snap.Marks.Checked(rubric.ProblemSolving, 6), ShouldBeFalse)
			})
		})
	})
}
