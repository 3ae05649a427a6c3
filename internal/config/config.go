// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - Validation failures wrap ErrInvalidConfig; source failures wrap ErrLoadConfig.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/assessor/internal/domain/idgen"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// IDStrategy names the record id generator: uuid, nuid or hashid.
	IDStrategy string `koanf:"id_strategy"`

	// HashIDSalt salts hashid record ids.
	HashIDSalt string `koanf:"hashid_salt"`

	// NotifyQueueSize bounds the notification queue.
	NotifyQueueSize int `koanf:"notify_queue_size"`

	// NotifyWorkers sets the number of notification workers.
	NotifyWorkers int `koanf:"notify_workers"`

	// NotifyFeedSize caps the recent notification feed.
	NotifyFeedSize int `koanf:"notify_feed_size"`

	// MaxSessions caps concurrently open editing sessions.
	MaxSessions int `koanf:"max_sessions"`

	// MetricsEnabled switches the Prometheus recorders on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsRefreshInterval sets how often periodic gauges are refreshed,
	// e.g. "10s".
	MetricsRefreshInterval time.Duration `koanf:"metrics_refresh_interval"`

	// Groups and CaseStudies are the selectable catalog entries. Env values
	// are comma separated.
	Groups      []string `koanf:"groups"`
	CaseStudies []string `koanf:"case_studies"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		IDStrategy:      idgen.StrategyUUID,
		NotifyQueueSize: 1024,
		NotifyWorkers:   2,
		NotifyFeedSize:  100,
		MaxSessions:     256,
		MetricsEnabled:  true,

		MetricsRefreshInterval: 10 * time.Second,
		Groups:          []string{"Group A", "Group B", "Group C", "Group D"},
		CaseStudies: []string{
			"Retail Expansion",
			"Supply Chain Disruption",
			"Digital Transformation",
			"Market Entry Strategy",
		},
	}
}

// Validate checks the loaded values and normalises the catalog lists.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.NotifyQueueSize < 1:
		return fmt.Errorf("%w: notify_queue_size must be positive, got %d", ErrInvalidConfig, c.NotifyQueueSize)
	case c.NotifyWorkers < 1:
		return fmt.Errorf("%w: notify_workers must be positive, got %d", ErrInvalidConfig, c.NotifyWorkers)
	case c.NotifyFeedSize < 1:
		return fmt.Errorf("%w: notify_feed_size must be positive, got %d", ErrInvalidConfig, c.NotifyFeedSize)
	case c.MaxSessions < 1:
		return fmt.Errorf("%w: max_sessions must be positive, got %d", ErrInvalidConfig, c.MaxSessions)
	case c.MetricsRefreshInterval <= 0:
		return fmt.Errorf("%w: metrics_refresh_interval must be positive, got %s", ErrInvalidConfig, c.MetricsRefreshInterval)
	}
	c.IDStrategy = strings.ToLower(strings.TrimSpace(c.IDStrategy))
	switch c.IDStrategy {
	case idgen.StrategyUUID, idgen.StrategyNUID, idgen.StrategyHashID:
	default:
		return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, idgen.ErrUnknownStrategy, c.IDStrategy)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	c.Groups = cleanList(c.Groups)
	c.CaseStudies = cleanList(c.CaseStudies)
	return nil
}

// cleanList splits comma separated entries, trims them and drops empty
// ones and repeats. Catalog entries therefore cannot contain commas.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, entry := range in {
		for _, s := range strings.Split(entry, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
