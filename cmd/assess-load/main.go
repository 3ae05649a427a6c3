package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/assessor/internal/loadtest"
	"github.com/okian/assessor/pkg/logger"
	"github.com/peterbourgon/ff/v3"
)

// Default configuration constants.
const (
	defaultCount      = 1000
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultDuplicates = 0.1
	defaultInvalid    = 0.05
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	fs := flag.NewFlagSet("assess-load", flag.ExitOnError)
	var (
		_          = fs.String("config", "", "config file (optional), one 'flag value' per line")
		baseURL    = fs.String("url", "http://localhost:9080", "base URL of the service")
		count      = fs.Int("count", defaultCount, "number of unique assessments to submit")
		workers    = fs.Int("workers", runtime.NumCPU()*defaultWorkers, "number of concurrent submitters")
		duplicates = fs.Float64("duplicates", defaultDuplicates, "fraction of submissions re-sent expecting 409")
		invalid    = fs.Float64("invalid", defaultInvalid, "fraction of submissions sent with a blank field expecting 422")
		timeout    = fs.Duration("timeout", defaultTimeout, "HTTP request timeout")
		runTimeout = fs.Duration("run-timeout", defaultRunTimeout, "overall run timeout")
		seed       = fs.Int64("seed", 0, "seed for generated marks, 0 picks one from the clock")
		logFile    = fs.String("log", "", "log file, '-' for stdout only (default: assess_load_TIMESTAMP.log)")
		logLevel   = fs.String("log-level", "info", "log level: debug, info, warn, error")
		verbose    = fs.Bool("verbose", false, "log every unexpected response")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("ASSESS_LOAD"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	); err != nil {
		os.Stderr.WriteString("failed to parse flags: " + err.Error() + "\n")
		os.Exit(2)
	}

	closer, err := loadtest.SetupLogging(*logFile, *logLevel)
	if err != nil {
		os.Stderr.WriteString("failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, *runTimeout)

	_, err = loadtest.Run(ctx, &loadtest.Config{
		BaseURL:        *baseURL,
		Count:          *count,
		DuplicateRatio: *duplicates,
		InvalidRatio:   *invalid,
		Workers:        *workers,
		Timeout:        *timeout,
		Seed:           *seed,
		Verbose:        *verbose,
	})
	cancel()
	stop()
	_ = closer.Close()

	if err != nil {
		logger.Get().Error(context.Background(), "load run failed", logger.Error(err))
		os.Exit(1)
	}
}
