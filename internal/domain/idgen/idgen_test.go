package idgen_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/okian/assessor/internal/domain/idgen"
	. "github.com/smartystreets/goconvey/convey"
)

func collect(g idgen.Generator, n int) map[string]bool {
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		seen[g.NewID()] = true
	}
	return seen
}

func TestGenerators(t *testing.T) {
	Convey("Given each id strategy", t, func() {
		for _, strategy := range []string{idgen.StrategyUUID, idgen.StrategyNUID, idgen.StrategyHashID} {
			g, err := idgen.New(strategy, "test salt")
			So(err, ShouldBeNil)
			So(g, ShouldNotBeNil)

			Convey("When generating many ids with "+strategy, func() {
				ids := collect(g, 5000)

				Convey("Then none repeat and none are empty", func() {
					So(len(ids), ShouldEqual, 5000)
					So(ids[""], ShouldBeFalse)
				})
			})
		}

		Convey("When the uuid strategy is used", func() {
			g, _ := idgen.New("UUID", "")

			Convey("Then ids parse as UUIDs", func() {
				_, err := uuid.Parse(g.NewID())
				So(err, ShouldBeNil)
			})
		})

		Convey("When the strategy is empty", func() {
			g, err := idgen.New("", "")

			Convey("Then uuid is the default", func() {
				So(err, ShouldBeNil)
				So(g, ShouldHaveSameTypeAs, idgen.UUID{})
			})
		})

		Convey("When the strategy is unknown", func() {
			g, err := idgen.New("snowflake", "")

			Convey("Then ErrUnknownStrategy is returned", func() {
				So(g, ShouldBeNil)
				So(errors.Is(err, idgen.ErrUnknownStrategy), ShouldBeTrue)
			})
		})
	})
}

func TestHashIDConcurrency(t *testing.T) {
	Convey("Given a hashid generator shared by goroutines", t, func() {
		g, err := idgen.NewHashID("")
		So(err, ShouldBeNil)

		var mu sync.Mutex
		var wg sync.WaitGroup
		seen := map[string]bool{}
		for w := 0; w < 8; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 250; i++ {
					id := g.NewID()
					mu.Lock()
					seen[id] = true
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		Convey("Then every id is distinct and at least the minimum length", func() {
			So(len(seen), ShouldEqual, 2000)
			for id := range seen {
				So(len(id), ShouldBeGreaterThanOrEqualTo, 8)
			}
		})
	})
}

func TestNUIDConcurrency(t *testing.T) {
	Convey("Given a NUID generator shared by goroutines", t, func() {
		g := idgen.NewNUID()

		var mu sync.Mutex
		var wg sync.WaitGroup
		seen := map[string]bool{}
		for w := 0; w < 8; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 250; i++ {
					id := g.NewID()
					mu.Lock()
					seen[id] = true
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		Convey("Then every id is distinct", func() {
			So(len(seen), ShouldEqual, 2000)
		})
	})
}

func TestFunc(t *testing.T) {
	Convey("Given a function adapter", t, func() {
		g := idgen.Func(func() string { return "fixed" })

		Convey("Then it returns what the function returns", func() {
			So(g.NewID(), ShouldEqual, "fixed")
		})
	})
}
