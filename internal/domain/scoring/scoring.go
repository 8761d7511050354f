// Package scoring computes how balanced a partition is.
//
// A team's effective rating is the sum of its members' ratings plus the
// synergy of every unordered pair inside the team. The fitness of a
// partition is the sum, over each opposing pair of teams (2k, 2k+1), of the
// absolute difference of their effective ratings. Lower is better and the
// value is never negative.
package scoring

import "github.com/okian/lineup/internal/domain/model"

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithSynergy sets the synergy snapshot used for in-team pairs.
func WithSynergy(src model.SynergySource) Option {
	return func(s *Scorer) {
		s.synergy = src
	}
}

// Result contains the computed fitness and per-team effective ratings.
type Result struct {
	Fitness int
	Ratings []int
}

// Scorer scores partitions against a fixed synergy snapshot. It holds no
// mutable state and is safe for concurrent use.
type Scorer struct {
	synergy model.SynergySource
}

// New creates a scorer; without WithSynergy every pair counts 0.
func New(opts ...Option) *Scorer {
	s := &Scorer{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes the fitness of teams laid out in plan order.
func (s *Scorer) Score(teams [][]model.Participant) Result {
	return Score(teams, s.synergy)
}

// Score computes the fitness of teams with the given synergy source.
func Score(teams [][]model.Participant, synergy model.SynergySource) Result {
	ratings := make([]int, len(teams))
	for i, t := range teams {
		ratings[i] = TeamRating(t, synergy)
	}
	return Result{Fitness: Fitness(ratings), Ratings: ratings}
}

// TeamRating returns the effective rating of one team.
func TeamRating(team []model.Participant, synergy model.SynergySource) int {
	total := 0
	for i, p := range team {
		total += p.Rating
		if synergy == nil {
			continue
		}
		for _, q := range team[i+1:] {
			total += synergy.Lookup(p.ID, q.ID)
		}
	}
	return total
}

// Fitness sums |r[2k] - r[2k+1]| over consecutive pairs. A trailing
// unpaired rating is ignored.
func Fitness(ratings []int) int {
	total := 0
	for i := 0; i+1 < len(ratings); i += 2 {
		d := ratings[i] - ratings[i+1]
		if d < 0 {
			d = -d
		}
		total += d
	}
	return total
}
