package loadtest

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/okian/assessor/internal/domain/scoring"
	"github.com/okian/assessor/internal/domain/types"
	"github.com/okian/assessor/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// runner carries the state of one load run.
type runner struct {
	cfg    *Config
	client *client
	log    logger.Logger

	mu       sync.Mutex
	stats    *Stats
	accepted map[string]Expectation
}

// Run executes the complete load run and returns its statistics.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	r := &runner{
		cfg:      cfg,
		client:   newClient(cfg.BaseURL, cfg.Timeout),
		log:      logger.Named("loadtest"),
		stats:    &Stats{StartTime: time.Now(), ByBand: make(map[string]int, len(scoring.Bands()))},
		accepted: make(map[string]Expectation, cfg.Count),
	}

	r.log.Info(ctx, "starting load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("count", cfg.Count),
		logger.Int("workers", cfg.Workers),
		logger.Float64("duplicates", cfg.DuplicateRatio),
		logger.Float64("invalid", cfg.InvalidRatio),
		logger.Int64("seed", seed))

	if err := r.checkHealth(ctx); err != nil {
		return r.stats, err
	}
	groups, cases, err := r.catalogs(ctx)
	if err != nil {
		return r.stats, err
	}

	gen := NewGenerator(seed, groups, cases)
	subs := gen.Submissions(cfg.Count)
	r.stats.Generated = len(subs)

	if err := r.submitAll(ctx, subs); err != nil {
		return r.stats, err
	}

	dups := subs[:int(float64(len(subs))*cfg.DuplicateRatio)]
	if err := r.resubmitAll(ctx, dups); err != nil {
		return r.stats, err
	}

	n := int(float64(len(subs)) * cfg.InvalidRatio)
	blanks := make([]types.SubmitRequest, n)
	fields := make([]string, n)
	for i := range blanks {
		blanks[i], fields[i] = gen.Blank(subs[i])
	}
	if err := r.submitBlanks(ctx, blanks, fields); err != nil {
		return r.stats, err
	}

	listing, err := r.client.get(ctx, "/assessments")
	if err != nil {
		return r.stats, fmt.Errorf("list assessments: %w", err)
	}
	if listing.status != http.StatusOK {
		return r.stats, fmt.Errorf("%w: list assessments: status %d", ErrUnexpected, listing.status)
	}
	if err := Verify(listing.body, r.accepted, r.stats); err != nil {
		return r.stats, err
	}

	r.stats.EndTime = time.Now()
	r.stats.Duration = r.stats.EndTime.Sub(r.stats.StartTime)
	r.report(ctx)

	if r.stats.Failed > 0 {
		return r.stats, fmt.Errorf("%w: %d requests answered unexpectedly", ErrUnexpected, r.stats.Failed)
	}
	return r.stats, nil
}

// checkHealth verifies the service is running.
func (r *runner) checkHealth(ctx context.Context) error {
	resp, err := r.client.get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if resp.status != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.status)
	}
	return nil
}

func (r *runner) catalogs(ctx context.Context) (groups, cases []string, err error) {
	resp, err := r.client.get(ctx, "/catalogs")
	if err != nil {
		return nil, nil, fmt.Errorf("fetch catalogs: %w", err)
	}
	if resp.status != http.StatusOK {
		return nil, nil, fmt.Errorf("%w: catalogs: status %d", ErrUnexpected, resp.status)
	}
	for _, v := range resp.body.Get("groups").Array() {
		groups = append(groups, v.String())
	}
	for _, v := range resp.body.Get("case_studies").Array() {
		cases = append(cases, v.String())
	}
	return groups, cases, nil
}

// each runs fn for every index with at most cfg.Workers in flight. Only
// transport errors abort the group.
func (r *runner) each(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for i := 0; i < n; i++ {
		g.Go(func() error { return fn(gctx, i) })
	}
	return g.Wait()
}

func (r *runner) submitAll(ctx context.Context, subs []types.SubmitRequest) error {
	return r.each(ctx, len(subs), func(ctx context.Context, i int) error {
		req := subs[i]
		resp, err := r.client.postJSON(ctx, "/assessments", req)
		if err != nil {
			return fmt.Errorf("submit %d: %w", i, err)
		}
		want := ExpectedTotal(req)
		got := int(resp.body.Get("total_score").Int())
		band := resp.body.Get("band").String()

		r.mu.Lock()
		defer r.mu.Unlock()
		if resp.status != http.StatusCreated || got != want || band != string(scoring.ClassifyBand(want)) {
			r.unexpected(ctx, "submit", resp)
			return nil
		}
		r.stats.Created++
		r.accepted[req.CandidateName] = Expectation{ID: resp.body.Get("id").String(), Total: want}
		return nil
	})
}

func (r *runner) resubmitAll(ctx context.Context, dups []types.SubmitRequest) error {
	return r.each(ctx, len(dups), func(ctx context.Context, i int) error {
		req := dups[i]
		resp, err := r.client.postJSON(ctx, "/assessments", req)
		if err != nil {
			return fmt.Errorf("resubmit %d: %w", i, err)
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		exp, known := r.accepted[req.CandidateName]
		if resp.status != http.StatusConflict ||
			resp.body.Get("code").String() != "duplicate_assessment" ||
			(known && resp.body.Get("existing_id").String() != exp.ID) {
			r.unexpected(ctx, "duplicate", resp)
			return nil
		}
		r.stats.Duplicates++
		return nil
	})
}

func (r *runner) submitBlanks(ctx context.Context, blanks []types.SubmitRequest, fields []string) error {
	return r.each(ctx, len(blanks), func(ctx context.Context, i int) error {
		resp, err := r.client.postJSON(ctx, "/assessments", blanks[i])
		if err != nil {
			return fmt.Errorf("blank %d: %w", i, err)
		}
		var listed []string
		for _, f := range resp.body.Get("fields").Array() {
			listed = append(listed, f.String())
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		if resp.status != http.StatusUnprocessableEntity || !slices.Contains(listed, fields[i]) {
			r.unexpected(ctx, "missing_field", resp)
			return nil
		}
		r.stats.Missing++
		return nil
	})
}

// unexpected expects r.mu to be held.
func (r *runner) unexpected(ctx context.Context, phase string, resp response) {
	r.stats.Failed++
	if r.cfg.Verbose {
		r.log.Warn(ctx, "unexpected response",
			logger.String("phase", phase),
			logger.Int("status", resp.status),
			logger.String("body", resp.body.Raw))
	}
}

// report logs the final run statistics.
func (r *runner) report(ctx context.Context) {
	var perSecond float64
	if r.stats.Duration > 0 {
		submitted := r.stats.Created + r.stats.Duplicates + r.stats.Missing + r.stats.Failed
		perSecond = float64(submitted) / r.stats.Duration.Seconds()
	}
	r.log.Info(ctx, "final statistics",
		logger.Int("generated", r.stats.Generated),
		logger.Int("created", r.stats.Created),
		logger.Int("duplicates", r.stats.Duplicates),
		logger.Int("missing", r.stats.Missing),
		logger.Int("failed", r.stats.Failed),
		logger.Int("verified", r.stats.Verified),
		logger.Any("byBand", r.stats.ByBand),
		logger.Duration("duration", r.stats.Duration),
		logger.Float64("requestsPerSecond", perSecond))
}
