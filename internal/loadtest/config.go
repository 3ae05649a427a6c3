// Package loadtest drives a running assessor service with generated
// submissions and verifies what it stored.
package loadtest

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for run outcomes.
var (
	ErrInvalidConfig = errors.New("invalid load config")
	ErrUnhealthy     = errors.New("service unhealthy")
	ErrUnexpected    = errors.New("unexpected response")
	ErrVerification  = errors.New("verification failed")
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL        string        // Base URL of the service
	Count          int           // Number of unique assessments to submit
	DuplicateRatio float64       // Fraction re-submitted expecting 409
	InvalidRatio   float64       // Fraction submitted with a blank field expecting 422
	Workers        int           // Number of concurrent submitters
	Timeout        time.Duration // HTTP request timeout
	Seed           int64         // Seed for generated marks; 0 picks one from the clock
	Verbose        bool          // Log every rejected request
}

// Validate checks the run parameters.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: url must not be empty", ErrInvalidConfig)
	case c.Count < 1:
		return fmt.Errorf("%w: count must be positive", ErrInvalidConfig)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	case c.DuplicateRatio < 0 || c.DuplicateRatio > 1:
		return fmt.Errorf("%w: duplicates must be within [0,1]", ErrInvalidConfig)
	case c.InvalidRatio < 0 || c.InvalidRatio > 1:
		return fmt.Errorf("%w: invalid must be within [0,1]", ErrInvalidConfig)
	}
	return nil
}

// Stats holds run statistics.
type Stats struct {
	Generated  int
	Created    int
	Duplicates int
	Missing    int
	Failed     int
	Verified   int
	ByBand     map[string]int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}
