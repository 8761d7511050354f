// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and LINEUP_ environment variables.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"strings"

	"github.com/okian/lineup/internal/domain/enumerate"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// RosterPath and SynergyPath locate the CSV stores. Empty keeps the
	// store in memory only.
	RosterPath  string `koanf:"roster_path"`
	SynergyPath string `koanf:"synergy_path"`

	// WatchFiles reloads the CSV stores when they change on disk.
	WatchFiles bool `koanf:"watch_files"`

	// MinTeamSize and MaxTeamSize bound the planned team sizes.
	MinTeamSize int `koanf:"min_team_size"`
	MaxTeamSize int `koanf:"max_team_size"`

	// StartRating is given to players added without a rating.
	StartRating int `koanf:"start_rating"`

	// TopK keeps only the best K lineups per run. Runs never keep more than
	// MaxLineupLimit, so 0 or a larger value means MaxLineupLimit.
	TopK int `koanf:"top_k"`

	// WorkerCount sets the number of enumeration workers; 1 is sequential.
	WorkerCount int `koanf:"worker_count"`

	// MaxPartitions refuses runs that would score more partitions; 0 disables the guard.
	MaxPartitions uint64 `koanf:"max_partitions"`

	// EnumerationMode is "team" (distinct team sets) or "match" (distinct match-ups).
	EnumerationMode string `koanf:"enumeration_mode"`

	// BruteForceLimit is the team count up to which distances use permutation search.
	BruteForceLimit int `koanf:"brute_force_limit"`

	// RunHistory bounds how many generation runs are kept for comparison.
	RunHistory int `koanf:"run_history"`

	// CacheRuns reuses the latest run when roster, synergy and settings are unchanged.
	CacheRuns bool `koanf:"cache_runs"`

	// MaxLineupLimit caps POST /lineups?limit.
	MaxLineupLimit int `koanf:"max_lineup_limit"`

	// MetricsNamespace prefixes every Prometheus metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`

	// MetricsInstance, when set, labels every series with instance=<value>.
	MetricsInstance string `koanf:"metrics_instance"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		MinTeamSize:      3,
		MaxTeamSize:      13,
		StartRating:      1000,
		TopK:             0,
		WorkerCount:      1,
		MaxPartitions:    5_000_000,
		EnumerationMode:  "team",
		BruteForceLimit:  8,
		RunHistory:       16,
		CacheRuns:        true,
		MaxLineupLimit:   100,
		MetricsNamespace: "lineup",
	}
}

// Mode returns the parsed enumeration mode.
func (c *Config) Mode() enumerate.Mode {
	m, err := enumerate.ParseMode(c.EnumerationMode)
	if err != nil {
		return enumerate.ByTeam
	}
	return m
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MinTeamSize < 1:
		return fmt.Errorf("%w: min_team_size must be at least 1, got %d", ErrInvalidConfig, c.MinTeamSize)
	case c.MaxTeamSize < c.MinTeamSize:
		return fmt.Errorf("%w: max_team_size %d is below min_team_size %d", ErrInvalidConfig, c.MaxTeamSize, c.MinTeamSize)
	case c.TopK < 0:
		return fmt.Errorf("%w: top_k must not be negative", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be at least 1, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.BruteForceLimit < 0:
		return fmt.Errorf("%w: brute_force_limit must not be negative", ErrInvalidConfig)
	case c.RunHistory < 1:
		return fmt.Errorf("%w: run_history must be at least 1, got %d", ErrInvalidConfig, c.RunHistory)
	case c.MaxLineupLimit < 1:
		return fmt.Errorf("%w: max_lineup_limit must be at least 1, got %d", ErrInvalidConfig, c.MaxLineupLimit)
	case c.MetricsNamespace == "":
		return fmt.Errorf("%w: metrics_namespace must not be empty", ErrInvalidConfig)
	}
	if _, err := enumerate.ParseMode(c.EnumerationMode); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
