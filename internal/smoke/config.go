// Package smoke drives a running lineup service over HTTP: it seeds a random
// roster, generates lineups and verifies the ranking and distance contracts.
package smoke

import "time"

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Players      int           // Number of players to seed
	SynergyPairs int           // Number of random synergy pairs to set
	Limit        int           // Lineups requested per run
	Compare      int           // Lineups compared against rank 1
	Workers      int           // Number of concurrent seeding workers
	Timeout      time.Duration // HTTP request timeout
	Seed         uint64        // Seed of the roster generator
	Verbose      bool          // Log every seeded player
}

// Stats holds smoke run statistics.
type Stats struct {
	PlayersCreated  int
	PlayersExisting int
	PlayersFailed   int
	SynergySet      int
	RunID           string
	Enumerated      uint64
	LineupsReturned int
	CacheHit        bool
	Comparisons     int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
