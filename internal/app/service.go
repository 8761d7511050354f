// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/okian/lineup/internal/adapters/repository"
	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/internal/engine"
	"github.com/okian/lineup/pkg/logger"
	"github.com/okian/lineup/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultRunHistory  = 16
	defaultMaxLineups  = 100
	defaultStartRating = model.DefaultRating
)

// Service implements the API dependencies for the lineup system.
type Service struct {
	mu sync.RWMutex

	// Core components
	roster  repository.RosterStore
	synergy repository.SynergyStore
	engine  *engine.Engine

	// Run history: runs by id, eviction order, and the run cached per input
	runs          *xsync.Map[string, *Run]
	byFingerprint *xsync.Map[uint64, string]
	order         []string

	// Configuration
	rosterPath  string
	synergyPath string
	watchFiles  bool
	startRating int
	runHistory  int
	maxLineups  int
	cacheRuns   bool

	// State
	started     bool
	ownsStores  bool
	generations int

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithEngine sets the engine used for generation runs.
func WithEngine(e *engine.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithStores injects existing stores instead of creating them on Start.
func WithStores(roster repository.RosterStore, synergy repository.SynergyStore) Option {
	return func(s *Service) {
		if roster != nil && synergy != nil {
			s.roster = roster
			s.synergy = synergy
		}
	}
}

// WithRosterFile persists the roster to a CSV file.
func WithRosterFile(path string) Option {
	return func(s *Service) {
		s.rosterPath = path
	}
}

// WithSynergyFile persists synergy values to a CSV file.
func WithSynergyFile(path string) Option {
	return func(s *Service) {
		s.synergyPath = path
	}
}

// WithWatchFiles reloads the stores when their files change on disk.
func WithWatchFiles(enabled bool) Option {
	return func(s *Service) {
		s.watchFiles = enabled
	}
}

// WithStartRating sets the rating of players added without one.
func WithStartRating(rating int) Option {
	return func(s *Service) {
		s.startRating = rating
	}
}

// WithRunHistory bounds how many runs are kept for comparison.
func WithRunHistory(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.runHistory = n
		}
	}
}

// WithMaxLineups bounds how many lineups of a run are kept.
func WithMaxLineups(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLineups = n
		}
	}
}

// WithRunCache reuses the latest run for unchanged inputs.
func WithRunCache(enabled bool) Option {
	return func(s *Service) {
		s.cacheRuns = enabled
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		startRating:   defaultStartRating,
		runHistory:    defaultRunHistory,
		maxLineups:    defaultMaxLineups,
		cacheRuns:     true,
		runs:          xsync.NewMap[string, *Run](),
		byFingerprint: xsync.NewMap[uint64, string](),
		logger:        nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the stores and the engine.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting lineup service...")

	if s.engine == nil {
		s.engine = engine.New(
			engine.WithTopK(s.maxLineups),
			engine.WithLogger(s.logger.Named("engine")),
		)
	}

	if s.roster == nil {
		roster, err := repository.NewRoster(ctx,
			repository.WithFile(s.rosterPath),
			repository.WithWatch(s.watchFiles),
			repository.WithLogger(s.logger.Named("roster")),
		)
		if err != nil {
			return fmt.Errorf("open roster: %w", err)
		}
		synergy, err := repository.NewSynergy(ctx,
			repository.WithFile(s.synergyPath),
			repository.WithWatch(s.watchFiles),
			repository.WithLogger(s.logger.Named("synergy")),
		)
		if err != nil {
			_ = roster.Close()
			return fmt.Errorf("open synergy: %w", err)
		}
		s.roster, s.synergy = roster, synergy
		s.ownsStores = true
	}

	s.started = true
	s.logger.Info(ctx, "lineup service started",
		logger.Int("players", s.roster.Count(ctx)),
		logger.Int("synergyPairs", s.synergy.Count(ctx)),
		logger.String("engine", s.engine.Settings()),
		logger.Int("workers", s.engine.Workers()),
		logger.Int("runHistory", s.runHistory),
	)

	return nil
}

// Stop closes stores the service opened.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping lineup service...")

	if s.ownsStores {
		for _, store := range []any{s.roster, s.synergy} {
			if closer, ok := store.(interface{ Close() error }); ok {
				if err := closer.Close(); err != nil {
					s.logger.Warn(context.Background(), "closing store failed", logger.Error(err))
				}
			}
		}
		s.roster, s.synergy = nil, nil
		s.ownsStores = false
	}

	s.started = false
	s.logger.Info(context.Background(), "lineup service stopped")
}

// stores returns the stores of a started service.
func (s *Service) stores() (repository.RosterStore, repository.SynergyStore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.roster, s.synergy, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"runHistory":  s.runHistory,
		"storedRuns":  s.runs.Size(),
		"generations": s.generations,
		"cacheRuns":   s.cacheRuns,
	}

	if s.started {
		ctx := context.Background()
		players := s.roster.Count(ctx)
		pairs := s.synergy.Count(ctx)

		stats["players"] = players
		stats["synergyPairs"] = pairs
		stats["engine"] = s.engine.Settings()
		stats["workers"] = s.engine.Workers()
		stats["plans"] = len(s.engine.Plans(players))
		stats["estimatedPartitions"] = s.engine.Estimate(players)

		metrics.UpdateRosterSize(players)
		metrics.UpdateSynergyPairs(pairs)
		metrics.UpdateRunHistorySize(s.runs.Size())
	}

	return stats
}
