package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/assessor/internal/config"
	"github.com/okian/assessor/internal/domain/idgen"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.IDStrategy, convey.ShouldEqual, idgen.StrategyUUID)
			convey.So(cfg.NotifyQueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.NotifyWorkers, convey.ShouldEqual, 2)
			convey.So(cfg.NotifyFeedSize, convey.ShouldEqual, 100)
			convey.So(cfg.MaxSessions, convey.ShouldEqual, 256)
			convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			convey.So(cfg.MetricsRefreshInterval, convey.ShouldEqual, 10*time.Second)
			convey.So(len(cfg.Groups), convey.ShouldEqual, 4)
			convey.So(len(cfg.CaseStudies), convey.ShouldEqual, 4)
		})

		convey.Convey("And the defaults should validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid configs", t, func() {
		cases := map[string]func(c *config.Config){
			"empty addr":        func(c *config.Config) { c.Addr = "  " },
			"zero queue":        func(c *config.Config) { c.NotifyQueueSize = 0 },
			"negative workers":  func(c *config.Config) { c.NotifyWorkers = -1 },
			"zero feed":         func(c *config.Config) { c.NotifyFeedSize = 0 },
			"zero sessions":     func(c *config.Config) { c.MaxSessions = 0 },
			"zero refresh":      func(c *config.Config) { c.MetricsRefreshInterval = 0 },
			"unknown id scheme": func(c *config.Config) { c.IDStrategy = "snowflake" },
			"unknown format":    func(c *config.Config) { c.LogFormat = "xml" },
		}
		for name, mutate := range cases {
			convey.Convey("Then "+name+" should be rejected", func() {
				cfg := config.New()
				mutate(cfg)
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})

	convey.Convey("Given an id strategy with padding and mixed case", t, func() {
		cfg := config.New()
		cfg.IDStrategy = " NUID\t"

		convey.Convey("Then it validates and is stored in canonical form", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
			convey.So(cfg.IDStrategy, convey.ShouldEqual, idgen.StrategyNUID)
		})
	})

	convey.Convey("Given catalog lists with blanks and repeats", t, func() {
		cfg := config.New()
		cfg.Groups = []string{" Group A", "", "Group A", "Group B "}

		convey.Convey("Then validation should normalise them", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
			convey.So(cfg.Groups, convey.ShouldResemble, []string{"Group A", "Group B"})
		})
	})
}
