package assessment_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/assessor/internal/domain/assessment"
	"github.com/okian/assessor/internal/domain/idgen"
	"github.com/okian/assessor/internal/domain/model"
	"github.com/okian/assessor/internal/domain/rubric"
	"github.com/okian/assessor/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

var fixedNow = time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC)

func sequence(prefix string) idgen.Func {
	n := 0
	return func() string {
		n++
		return prefix + string(rune('0'+n))
	}
}

func newBuilder() *assessment.Builder {
	return assessment.NewBuilder(
		assessment.WithClock(assessment.ClockFunc(func() time.Time { return fixedNow })),
		assessment.WithIDGenerator(sequence("rec-")),
	)
}

func validForm() model.FormInput {
	return model.FormInput{
		Identity: model.Identity{
			CandidateName: "Ada Lovelace",
			AssessorName:  "Grace Hopper",
			GroupID:       "Group A",
			CaseStudy:     "Retail Expansion",
		},
		Observations: "Led the group through the numbers.",
	}
}

func marksWith(n int) scoring.Marks {
	var m scoring.Marks
	for k := 0; k < n; k++ {
		m[k/rubric.SubCount].Checks[k%rubric.SubCount] = true
	}
	return m
}

func TestValidateRequired(t *testing.T) {
	Convey("Given identity fields", t, func() {
		Convey("When every field is present", func() {
			Convey("Then validation passes", func() {
				So(assessment.ValidateRequired(validForm().Identity), ShouldBeNil)
			})
		})

		Convey("When one field is empty", func() {
			id := validForm().Identity
			id.GroupID = ""
			err := assessment.ValidateRequired(id)

			Convey("Then MissingField names that field", func() {
				So(errors.Is(err, assessment.ErrMissingField), ShouldBeTrue)
				var mf *assessment.MissingFieldError
				So(errors.As(err, &mf), ShouldBeTrue)
				So(mf.Fields, ShouldResemble, []string{model.FieldGroupID})
			})
		})

		Convey("When fields are whitespace-only", func() {
			id := validForm().Identity
			id.CandidateName = "   "
			id.CaseStudy = "\t\n"
			err := assessment.ValidateRequired(id)

			Convey("Then they count as missing", func() {
				var mf *assessment.MissingFieldError
				So(errors.As(err, &mf), ShouldBeTrue)
				So(mf.Fields, ShouldResemble, []string{model.FieldCandidateName, model.FieldCaseStudy})
				So(err.Error(), ShouldContainSubstring, "candidate_name, case_study")
			})
		})

		Convey("When everything is empty", func() {
			err := assessment.ValidateRequired(model.Identity{})

			Convey("Then all four fields are reported in form order", func() {
				var mf *assessment.MissingFieldError
				So(errors.As(err, &mf), ShouldBeTrue)
				So(len(mf.Fields), ShouldEqual, 4)
				So(mf.Fields[0], ShouldEqual, model.FieldCandidateName)
				So(mf.Fields[3], ShouldEqual, model.FieldCaseStudy)
			})
		})
	})
}

func TestBuild(t *testing.T) {
	Convey("Given a builder with a fixed clock and id sequence", t, func() {
		b := newBuilder()

		Convey("When building valid input with 42 checks and no history", func() {
			rec, err := b.Build(validForm(), marksWith(42), nil)

			Convey("Then the record is fully populated", func() {
				So(err, ShouldBeNil)
				So(rec.ID, ShouldEqual, "rec-1")
				So(rec.Identity, ShouldResemble, validForm().Identity)
				So(rec.Observations, ShouldEqual, validForm().Observations)
				So(rec.TotalScore, ShouldEqual, 42)
				So(rec.Band, ShouldEqual, scoring.BandDeveloping)
				So(rec.CreatedAt.Equal(fixedNow), ShouldBeTrue)
				So(rec.Score(rubric.AnalyticalThinking), ShouldEqual, 10)
				So(rec.Score(rubric.Leadership), ShouldEqual, 2)
			})

			Convey("And the per-competency scores sum to the total", func() {
				sum := 0
				for _, s := range rec.Scores {
					So(s, ShouldBeBetweenOrEqual, 0, rubric.SubCount)
					sum += s
				}
				So(sum, ShouldEqual, rec.TotalScore)
			})
		})

		Convey("When observations are empty", func() {
			form := validForm()
			form.Observations = ""
			rec, err := b.Build(form, scoring.Marks{}, nil)

			Convey("Then the record is still built", func() {
				So(err, ShouldBeNil)
				So(rec.Observations, ShouldEqual, "")
				So(rec.Band, ShouldEqual, scoring.BandLimited)
			})
		})

		Convey("When the candidate name is empty", func() {
			form := validForm()
			form.CandidateName = ""
			rec, err := b.Build(form, marksWith(90), nil)

			Convey("Then MissingField is signalled and no record is produced", func() {
				So(errors.Is(err, assessment.ErrMissingField), ShouldBeTrue)
				So(rec, ShouldResemble, model.Assessment{})
			})

			Convey("And no id is consumed", func() {
				next, err := b.Build(validForm(), scoring.Marks{}, nil)
				So(err, ShouldBeNil)
				So(next.ID, ShouldEqual, "rec-1")
			})
		})

		Convey("When the same identity is built twice with the first appended", func() {
			var history []model.Assessment
			first, err := b.Build(validForm(), marksWith(70), history)
			So(err, ShouldBeNil)
			history = append(history, first)

			second, err := b.Build(validForm(), marksWith(10), history)

			Convey("Then the second signals DuplicateAssessment", func() {
				So(errors.Is(err, assessment.ErrDuplicateAssessment), ShouldBeTrue)
				So(second, ShouldResemble, model.Assessment{})
			})

			Convey("And the error carries the existing record", func() {
				var dup *assessment.DuplicateError
				So(errors.As(err, &dup), ShouldBeTrue)
				So(dup.Existing.ID, ShouldEqual, first.ID)
				So(err.Error(), ShouldContainSubstring, first.ID)
			})
		})

		Convey("When a required field is missing and the identity is also a duplicate", func() {
			form := validForm()
			form.CaseStudy = ""
			history := []model.Assessment{{ID: "old", Identity: form.Identity}}
			_, err := b.Build(form, scoring.Marks{}, history)

			Convey("Then MissingField wins because validation runs first", func() {
				So(errors.Is(err, assessment.ErrMissingField), ShouldBeTrue)
				So(errors.Is(err, assessment.ErrDuplicateAssessment), ShouldBeFalse)
			})
		})

		Convey("When building against a history", func() {
			history := []model.Assessment{
				{ID: "x1", Identity: model.Identity{CandidateName: "Alan", AssessorName: "Grace", GroupID: "Group A", CaseStudy: "Retail Expansion"}, TotalScore: 50},
				{ID: "x2", Identity: model.Identity{CandidateName: "Ada Lovelace", AssessorName: "Grace Hopper", GroupID: "Group B", CaseStudy: "Retail Expansion"}, TotalScore: 60},
			}
			snapshot := append([]model.Assessment(nil), history...)
			_, err := b.Build(validForm(), marksWith(5), history)

			Convey("Then a near match is not a duplicate", func() {
				So(err, ShouldBeNil)
			})

			Convey("And the history is never mutated", func() {
				So(history, ShouldResemble, snapshot)
				So(len(history), ShouldEqual, 2)
			})
		})

		Convey("When the input marks are modified after building", func() {
			m := marksWith(20)
			rec, err := b.Build(validForm(), m, nil)
			So(err, ShouldBeNil)
			m[9].Checks[9] = true

			Convey("Then the record is unaffected", func() {
				So(rec.TotalScore, ShouldEqual, 20)
			})
		})
	})
}

func TestBuilderDefaults(t *testing.T) {
	Convey("Given a builder with default dependencies", t, func() {
		b := assessment.NewBuilder()

		Convey("When building twice", func() {
			form := validForm()
			r1, err := b.Build(form, scoring.Marks{}, nil)
			So(err, ShouldBeNil)
			form.CandidateName = "Charles Babbage"
			r2, err := b.Build(form, scoring.Marks{}, []model.Assessment{r1})
			So(err, ShouldBeNil)

			Convey("Then ids are distinct and timestamps are UTC", func() {
				So(r1.ID, ShouldNotEqual, r2.ID)
				So(r1.CreatedAt.Location(), ShouldEqual, time.UTC)
				So(r1.CreatedAt.IsZero(), ShouldBeFalse)
			})
		})

		Convey("When previewing marks", func() {
			res := b.Preview(marksWith(81))

			Convey("Then the live score and band are returned", func() {
				So(res.Total, ShouldEqual, 81)
				So(res.Band, ShouldEqual, scoring.BandExceptional)
			})
		})
	})
}

type constScorer struct{ res scoring.Result }

func (c constScorer) Score(scoring.Marks) scoring.Result { return c.res }

func TestBuilderCustomScorer(t *testing.T) {
	Convey("Given a builder with a custom scorer", t, func() {
		b := assessment.NewBuilder(
			assessment.WithScorer(constScorer{res: scoring.Result{Total: 77, Band: scoring.BandStrong}}),
			assessment.WithIDGenerator(idgen.Func(func() string { return "given-id" })),
			assessment.WithClock(nil),
		)

		Convey("When building", func() {
			rec, err := b.Build(validForm(), scoring.Marks{}, nil)

			Convey("Then the scorer result and the given id are surfaced unchanged", func() {
				So(err, ShouldBeNil)
				So(rec.TotalScore, ShouldEqual, 77)
				So(rec.Band, ShouldEqual, scoring.BandStrong)
				So(rec.ID, ShouldEqual, "given-id")
			})
		})
	})
}
