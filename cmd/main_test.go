package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/okian/assessor/internal/config"
	"github.com/okian/assessor/pkg/logger"
	"github.com/okian/assessor/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("ASSESSOR_ADDR", ":8080")
			_ = os.Setenv("ASSESSOR_NOTIFY_QUEUE_SIZE", "1000")
			_ = os.Setenv("ASSESSOR_NOTIFY_WORKERS", "4")
			defer func() {
				_ = os.Unsetenv("ASSESSOR_ADDR")
				_ = os.Unsetenv("ASSESSOR_NOTIFY_QUEUE_SIZE")
				_ = os.Unsetenv("ASSESSOR_NOTIFY_WORKERS")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.NotifyQueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.NotifyWorkers, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When building the service from defaults", func() {
			svc, err := newService(config.New(), logger.Nop())

			convey.Convey("Then it should be configured from the config", func() {
				convey.So(err, convey.ShouldBeNil)
				stats := svc.GetStats()
				convey.So(stats["workerCount"], convey.ShouldEqual, 2)
				convey.So(stats["maxSessions"], convey.ShouldEqual, 256)
				groups, cases := svc.Catalogs()
				convey.So(len(groups), convey.ShouldEqual, 4)
				convey.So(len(cases), convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When the id strategy is unknown", func() {
			cfg := config.New()
			cfg.IDStrategy = "snowflake"

			convey.Convey("Then the service should not be built", func() {
				svc, err := newService(cfg, logger.Nop())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(svc, convey.ShouldBeNil)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When the metrics updaters run until their context ends", func() {
			svc, err := newService(config.New(), logger.Nop())
			convey.So(err, convey.ShouldBeNil)

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			convey.So(func() {
				startSystemMetricsUpdater(ctx)
				startServiceMetricsUpdater(ctx, svc)
			}, convey.ShouldNotPanic)
		})

		convey.Convey("When metrics settings come from config", func() {
			defer configureMetrics(config.New())

			cfg := config.New()
			cfg.MetricsEnabled = false
			cfg.MetricsRefreshInterval = 250 * time.Millisecond
			configureMetrics(cfg)

			convey.Convey("Then the recorders and tickers follow them", func() {
				convey.So(metrics.Enabled(), convey.ShouldBeFalse)
				convey.So(metrics.RefreshInterval(), convey.ShouldEqual, 250*time.Millisecond)
			})
		})

		convey.Convey("When updating metrics directly", func() {
			svc, err := newService(config.New(), logger.Nop())
			convey.So(err, convey.ShouldBeNil)

			convey.So(func() {
				updateSystemMetrics()
				updateServiceMetrics(svc)
			}, convey.ShouldNotPanic)
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given a fully wired mux", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.IDStrategy = "hashid"
		cfg.HashIDSalt = "test"
		svc, err := newService(cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		srv := httptest.NewServer(newMux(ctx, svc))
		defer srv.Close()

		convey.Convey("Then the docs and API are both served", func() {
			for _, path := range []string{"/api-docs", "/openapi.yaml", "/rubric", "/catalogs", "/healthz", "/stats"} {
				resp, err := http.Get(srv.URL + path)
				convey.So(err, convey.ShouldBeNil)
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				_ = resp.Body.Close()
			}
		})

		convey.Convey("And a submission round-trips", func() {
			body := `{"candidate_name":"Ada","assessor_name":"Grace","group_id":"Group A","case_study":"Retail Expansion","marks":{"leadership":[0,1,2]}}`
			resp, err := http.Post(srv.URL+"/assessments", "application/json", strings.NewReader(body))
			convey.So(err, convey.ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusCreated)
			convey.So(resp.Header.Get("Location"), convey.ShouldStartWith, "/assessments/")
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given invalid configuration", t, func() {
		_ = os.Setenv("ASSESSOR_ADDR", "")
		defer func() { _ = os.Unsetenv("ASSESSOR_ADDR") }()

		convey.Convey("Then configuration loading should fail", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}
