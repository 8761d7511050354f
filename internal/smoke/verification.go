package smoke

import (
	"context"
	"fmt"
	"net/http"

	service "github.com/okian/lineup/internal/app"
	"github.com/okian/lineup/pkg/logger"
)

// verifyCached checks that again was served from the stored run first.
func verifyCached(first, again service.RunView) error {
	if !again.Cached {
		return fmt.Errorf("run %s was generated again instead of served from cache", again.ID)
	}
	if again.ID != first.ID {
		return fmt.Errorf("cached run %s differs from first run %s", again.ID, first.ID)
	}
	if len(again.Lineups) != len(first.Lineups) {
		return fmt.Errorf("cached run has %d lineups, first run had %d", len(again.Lineups), len(first.Lineups))
	}
	return nil
}

// verifyRun checks the ranking contract of a generated run: ranks are
// consecutive, fitness never decreases, the best lineup has distance 0 to
// itself and every lineup places each player exactly once.
func verifyRun(run service.RunView, players int) error {
	for i, l := range run.Lineups {
		if l.Rank != i+1 {
			return fmt.Errorf("lineup %d has rank %d", i, l.Rank)
		}
		if l.Fitness < 0 {
			return fmt.Errorf("lineup %d has negative fitness %d", l.Rank, l.Fitness)
		}
		if i > 0 && run.Lineups[i-1].Fitness > l.Fitness {
			return fmt.Errorf("lineup %d fitness %d is better than rank %d fitness %d",
				l.Rank, l.Fitness, i, run.Lineups[i-1].Fitness)
		}
		if len(l.Teams)%2 != 0 {
			return fmt.Errorf("lineup %d has an odd team count %d", l.Rank, len(l.Teams))
		}
		seen := make(map[int]bool, players)
		for _, t := range l.Teams {
			for _, m := range t.Members {
				if seen[m.ID] {
					return fmt.Errorf("lineup %d places player %d twice", l.Rank, m.ID)
				}
				seen[m.ID] = true
			}
		}
		if len(seen) != players {
			return fmt.Errorf("lineup %d places %d of %d players", l.Rank, len(seen), players)
		}
	}
	if len(run.Lineups) > 0 && run.Lineups[0].Distance != 0 {
		return fmt.Errorf("best lineup has distance %d to itself", run.Lineups[0].Distance)
	}
	return nil
}

// verifyComparisons compares the best lineup with the next ones through the
// compare endpoint, in both directions, and checks the listed distances.
func verifyComparisons(ctx context.Context, client *HTTPClient, cfg *Config, run service.RunView, stats *Stats) error {
	n := min(cfg.Compare+1, len(run.Lineups))
	for rank := 1; rank <= n; rank++ {
		var forward, backward service.Comparison
		if _, err := client.do(ctx, http.MethodGet, comparePath(run.ID, 1, rank), nil, &forward); err != nil {
			return err
		}
		if _, err := client.do(ctx, http.MethodGet, comparePath(run.ID, rank, 1), nil, &backward); err != nil {
			return err
		}
		stats.Comparisons += 2

		want := run.Lineups[rank-1].Distance
		if forward.Distance != want {
			return fmt.Errorf("compare 1/%d gave %d, run lists %d", rank, forward.Distance, want)
		}
		if backward.Distance != forward.Distance {
			return fmt.Errorf("compare is not symmetric for 1/%d: %d vs %d", rank, forward.Distance, backward.Distance)
		}
		if cfg.Verbose {
			logger.Get().Debug(ctx, "comparison verified", logger.Int("rank", rank), logger.Int("distance", want))
		}
	}
	return nil
}

func comparePath(runID string, ref, candidate int) string {
	return fmt.Sprintf("/lineups/%s/compare?ref=%d&candidate=%d", runID, ref, candidate)
}
