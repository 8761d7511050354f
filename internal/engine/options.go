package engine

import (
	"github.com/okian/lineup/internal/domain/diversity"
	"github.com/okian/lineup/internal/domain/enumerate"
	"github.com/okian/lineup/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithSizeRange sets the inclusive range of team sizes to plan for.
func WithSizeRange(minSize, maxSize int) Option {
	return func(e *Engine) {
		if minSize > 0 && maxSize >= minSize {
			e.minSize = minSize
			e.maxSize = maxSize
		}
	}
}

// WithMode sets which team orderings count as duplicates.
func WithMode(mode enumerate.Mode) Option {
	return func(e *Engine) {
		e.mode = mode
	}
}

// WithTopK keeps only the best k lineups. Zero keeps the full ranking.
func WithTopK(k int) Option {
	return func(e *Engine) {
		if k >= 0 {
			e.topK = k
		}
	}
}

// WithWorkers sets the number of goroutines enumerating branches.
// One runs the enumeration on the calling goroutine.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithMaxPartitions refuses runs that would enumerate more than n
// partitions. Zero disables the guard.
func WithMaxPartitions(n uint64) Option {
	return func(e *Engine) {
		e.maxPartitions = n
	}
}

// WithBruteForceLimit sets the team count up to which distances are solved
// by permutation search.
func WithBruteForceLimit(limit int) Option {
	return func(e *Engine) {
		e.metric = diversity.New(diversity.WithBruteForceLimit(limit))
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}
