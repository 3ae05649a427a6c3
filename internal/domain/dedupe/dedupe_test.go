package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/assessor/internal/domain/dedupe"
	"github.com/okian/assessor/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func record(id, candidate, assessor, group, cs string) model.Assessment {
	return model.Assessment{
		ID: id,
		Identity: model.Identity{
			CandidateName: candidate,
			AssessorName:  assessor,
			GroupID:       group,
			CaseStudy:     cs,
		},
	}
}

func TestFindDuplicate(t *testing.T) {
	Convey("Given a history of assessments", t, func() {
		history := []model.Assessment{
			record("a1", "Ada", "Grace", "G1", "Retail"),
			record("a2", "Ada", "Grace", "G1", "Logistics"),
			record("a3", "Alan", "Grace", "G1", "Retail"),
			record("a4", "Ada", "Grace", "G1", "Logistics"),
		}
		snapshot := append([]model.Assessment(nil), history...)

		Convey("When the identity matches a record", func() {
			got, ok := dedupe.FindDuplicate(history, history[1].Identity)

			Convey("Then the first match is returned", func() {
				So(ok, ShouldBeTrue)
				So(got.ID, ShouldEqual, "a2")
			})

			Convey("And the history is not modified", func() {
				So(history, ShouldResemble, snapshot)
			})
		})

		Convey("When a single field differs", func() {
			probes := []model.Identity{
				{CandidateName: "Ada", AssessorName: "Grace", GroupID: "G2", CaseStudy: "Retail"},
				{CandidateName: "Ada", AssessorName: "Linus", GroupID: "G1", CaseStudy: "Retail"},
				{CandidateName: "ada", AssessorName: "Grace", GroupID: "G1", CaseStudy: "Retail"},
				{CandidateName: "Ada", AssessorName: "Grace", GroupID: "G1", CaseStudy: "Retail "},
			}

			Convey("Then no duplicate is found", func() {
				for _, p := range probes {
					_, ok := dedupe.FindDuplicate(history, p)
					So(ok, ShouldBeFalse)
				}
			})
		})

		Convey("When the history is empty", func() {
			_, ok := dedupe.FindDuplicate(nil, history[0].Identity)

			Convey("Then no duplicate is found", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestInMemoryIndex(t *testing.T) {
	Convey("Given a new in-memory index", t, func() {
		ctx := context.Background()
		idx := dedupe.NewInMemoryIndex(dedupe.WithCapacity(16))

		Convey("Then it starts empty", func() {
			So(idx.Size(), ShouldEqual, 0)
		})

		Convey("When recording a new key", func() {
			seen := idx.SeenAndRecord(ctx, "k1")

			Convey("Then it was not seen before and is now counted", func() {
				So(seen, ShouldBeFalse)
				So(idx.Size(), ShouldEqual, 1)
			})

			Convey("And recording it again reports it as seen", func() {
				So(idx.SeenAndRecord(ctx, "k1"), ShouldBeTrue)
				So(idx.Size(), ShouldEqual, 1)
			})
		})

		Convey("When many goroutines race on the same keys", func() {
			const workers = 16
			const keys = 100
			var wg sync.WaitGroup
			var mu sync.Mutex
			firsts := 0

			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for k := 0; k < keys; k++ {
						if !idx.SeenAndRecord(ctx, fmt.Sprintf("key-%d", k)) {
							mu.Lock()
							firsts++
							mu.Unlock()
						}
					}
				}()
			}
			wg.Wait()

			Convey("Then each key is accepted exactly once", func() {
				So(firsts, ShouldEqual, keys)
				So(idx.Size(), ShouldEqual, keys)
			})
		})
	})
}
