package smoke

import (
	"context"
	"fmt"
	"net/http"
	"time"

	service "github.com/okian/lineup/internal/app"
	"github.com/okian/lineup/pkg/logger"
)

// Run executes the complete smoke test against cfg.BaseURL.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting lineup smoke test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("players", cfg.Players),
		logger.Int("synergyPairs", cfg.SynergyPairs),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
	)

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if _, err := client.do(ctx, http.MethodGet, "/healthz", nil, nil); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Seed roster and synergy
	players, pairs := generateRoster(cfg)
	if err := seedPlayers(ctx, client, cfg, players, stats); err != nil {
		return stats, fmt.Errorf("player seeding failed: %w", err)
	}
	if err := seedSynergy(ctx, client, pairs, stats); err != nil {
		return stats, fmt.Errorf("synergy seeding failed: %w", err)
	}

	var roster []struct {
		ID int `json:"id"`
	}
	if _, err := client.do(ctx, http.MethodGet, "/players", nil, &roster); err != nil {
		return stats, fmt.Errorf("roster retrieval failed: %w", err)
	}

	// Step 3: Generate lineups
	var run service.RunView
	path := "/lineups"
	if cfg.Limit > 0 {
		path = fmt.Sprintf("/lineups?limit=%d", cfg.Limit)
	}
	if _, err := client.do(ctx, http.MethodPost, path, nil, &run); err != nil {
		return stats, fmt.Errorf("generation failed: %w", err)
	}
	stats.RunID = run.ID
	stats.Enumerated = run.Enumerated
	stats.LineupsReturned = len(run.Lineups)

	// Step 4: Generate again; identical input must be served from the run cache
	var again service.RunView
	if _, err := client.do(ctx, http.MethodPost, path, nil, &again); err != nil {
		return stats, fmt.Errorf("repeated generation failed: %w", err)
	}
	if err := verifyCached(run, again); err != nil {
		return stats, fmt.Errorf("run cache verification failed: %w", err)
	}
	stats.CacheHit = true

	// Step 5: Verify ranking and distances
	if err := verifyRun(run, len(roster)); err != nil {
		return stats, fmt.Errorf("run verification failed: %w", err)
	}
	if err := verifyComparisons(ctx, client, cfg, run, stats); err != nil {
		return stats, fmt.Errorf("comparison verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	logger.Get().Info(ctx, "smoke test completed successfully")
	return stats, nil
}

// displayFinalStats logs the final smoke statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	logger.Get().Info(ctx, "final statistics",
		logger.Int("playersCreated", stats.PlayersCreated),
		logger.Int("playersExisting", stats.PlayersExisting),
		logger.Int("synergySet", stats.SynergySet),
		logger.String("run", stats.RunID),
		logger.Int64("enumerated", int64(stats.Enumerated)),
		logger.Int("lineupsReturned", stats.LineupsReturned),
		logger.Bool("cacheHit", stats.CacheHit),
		logger.Int("comparisons", stats.Comparisons),
		logger.Duration("duration", stats.Duration),
	)
}
