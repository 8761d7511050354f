package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/lineup/internal/smoke"
	"github.com/okian/lineup/pkg/logger"
)

// Default configuration constants.
const (
	defaultPlayers      = 12
	defaultSynergyPairs = 6
	defaultLimit        = 50
	defaultCompare      = 5
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 30 * time.Second
	defaultTestTimeout  = 10 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		players = flag.Int("players", defaultPlayers, "Number of players to seed")
		pairs   = flag.Int("synergy", defaultSynergyPairs, "Number of random synergy pairs to set")
		limit   = flag.Int("limit", defaultLimit, "Lineups requested from the generation run")
		compare = flag.Int("compare", defaultCompare, "Lineups compared against the best one")
		workers = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent seeding workers")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed    = flag.Uint64("seed", uint64(time.Now().UnixNano()), "Roster generator seed")
		format  = flag.String("log-format", logger.FormatText, "Log format: text or json")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	level := "info"
	if *verbose {
		level = "debug"
	}
	if err := logger.Init(logger.WithFormat(*format), logger.WithLevel(level)); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := &smoke.Config{
		BaseURL:      *baseURL,
		Players:      *players,
		SynergyPairs: *pairs,
		Limit:        *limit,
		Compare:      *compare,
		Workers:      max(*workers, 1),
		Timeout:      *timeout,
		Seed:         *seed,
		Verbose:      *verbose,
	}

	if _, err := smoke.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "smoke test failed", logger.Error(err))
		stop()
		cancel()
		os.Exit(1)
	}
}
