package smoke

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/pkg/logger"
)

// playerRequest mirrors the POST /players body.
type playerRequest struct {
	Name   string `json:"name"`
	Rating int    `json:"rating"`
}

// synergyRequest mirrors the PUT /synergy body.
type synergyRequest struct {
	A     string `json:"a"`
	B     string `json:"b"`
	Value int    `json:"value"`
}

// generateRoster creates the players and synergy pairs of a run from the
// configured seed. The same seed always yields the same roster.
func generateRoster(cfg *Config) ([]playerRequest, []synergyRequest) {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	players := make([]playerRequest, cfg.Players)
	for i := range players {
		players[i] = playerRequest{
			Name:   fmt.Sprintf(playerNamePattern, i+1),
			Rating: minRating + rng.IntN(ratingSpread),
		}
	}

	var pairs []synergyRequest
	if cfg.Players < 2 {
		return players, pairs
	}
	seen := make(map[model.PairKey]bool)
	maxPairs := cfg.Players * (cfg.Players - 1) / 2
	for len(pairs) < min(cfg.SynergyPairs, maxPairs) {
		a, b := rng.IntN(cfg.Players), rng.IntN(cfg.Players)
		key := model.NewPairKey(a, b)
		if a == b || seen[key] {
			continue
		}
		seen[key] = true
		value := rng.IntN(2*maxSynergy+1) - maxSynergy
		if value == 0 {
			value = maxSynergy
		}
		pairs = append(pairs, synergyRequest{A: players[a].Name, B: players[b].Name, Value: value})
	}
	return players, pairs
}

// seedPlayers posts players concurrently using a worker pool. Players that
// already exist are counted, not treated as failures, so runs can repeat.
func seedPlayers(ctx context.Context, client *HTTPClient, cfg *Config, players []playerRequest, stats *Stats) error {
	logger.Get().Info(ctx, "seeding players",
		logger.Int("players", len(players)),
		logger.Int("workers", cfg.Workers),
	)

	var created, existing, failed int64

	jobs := make(chan playerRequest, cfg.Workers*workerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				status, err := client.do(ctx, http.MethodPost, "/players", p, nil)
				switch {
				case err == nil:
					atomic.AddInt64(&created, 1)
				case status == http.StatusConflict:
					atomic.AddInt64(&existing, 1)
				default:
					atomic.AddInt64(&failed, 1)
					logger.Get().Warn(ctx, "seeding player failed", logger.String("name", p.Name), logger.Error(err))
					continue
				}
				if cfg.Verbose {
					logger.Get().Debug(ctx, "player seeded", logger.String("name", p.Name), logger.Int("rating", p.Rating))
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, p := range players {
			select {
			case <-ctx.Done():
				return
			case jobs <- p:
			}
		}
	}()

	wg.Wait()

	stats.PlayersCreated = int(atomic.LoadInt64(&created))
	stats.PlayersExisting = int(atomic.LoadInt64(&existing))
	stats.PlayersFailed = int(atomic.LoadInt64(&failed))

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("seeding cancelled: %w", err)
	}
	if stats.PlayersFailed > 0 {
		return fmt.Errorf("%d of %d players could not be seeded", stats.PlayersFailed, len(players))
	}
	return nil
}

// seedSynergy sets the synergy pairs sequentially.
func seedSynergy(ctx context.Context, client *HTTPClient, pairs []synergyRequest, stats *Stats) error {
	for _, p := range pairs {
		if _, err := client.do(ctx, http.MethodPut, "/synergy", p, nil); err != nil {
			return err
		}
		stats.SynergySet++
	}
	return nil
}
