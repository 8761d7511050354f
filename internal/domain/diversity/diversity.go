// Package diversity measures how different two partitions are.
//
// The distance between partitions A and B is the minimum, over every
// one-to-one correspondence σ between their teams, of
//
//	Σ_i |B_σ(i)| − |A_i ∩ B_σ(i)|
//
// i.e. the number of participants that would have to move for A to become B
// under the best relabelling of teams. It is 0 exactly when A and B contain
// the same teams in any order. Partitions with different team counts are
// incomparable and get the distance len(A) + len(B).
//
// Finding σ is a linear-sum assignment problem. Up to the brute-force limit
// every permutation is tried; above it the Hungarian algorithm solves it in
// O(k³).
package diversity

import "github.com/okian/lineup/internal/domain/model"

// DefaultBruteForceLimit is the largest team count searched exhaustively.
const DefaultBruteForceLimit = 8

// Algorithm names the method that produced a distance.
type Algorithm string

// Algorithms reported by DistanceSets.
const (
	AlgorithmIncomparable Algorithm = "incomparable"
	AlgorithmBruteForce   Algorithm = "brute_force"
	AlgorithmHungarian    Algorithm = "hungarian"
)

// Option applies a configuration option to the Metric.
type Option func(*Metric)

// WithBruteForceLimit sets the largest team count solved by permutation
// search. Zero forces the Hungarian algorithm for every input.
func WithBruteForceLimit(limit int) Option {
	return func(m *Metric) {
		if limit >= 0 {
			m.bruteForceLimit = limit
		}
	}
}

// Metric computes diversity distances.
type Metric struct {
	bruteForceLimit int
}

// New creates a metric with the default brute-force limit.
func New(opts ...Option) *Metric {
	m := &Metric{bruteForceLimit: DefaultBruteForceLimit}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Distance returns the diversity distance between two partitions.
func Distance(a, b model.Partition) int {
	return New().Distance(a, b)
}

// Distance returns the diversity distance between two partitions, comparing
// members by participant id.
func (m *Metric) Distance(a, b model.Partition) int {
	d, _ := m.DistanceSets(a.MemberIDs(), b.MemberIDs())
	return d
}

// DistanceSets returns the distance between two partitions given as teams of
// member ids, and the algorithm that computed it.
func (m *Metric) DistanceSets(a, b [][]int) (int, Algorithm) {
	if len(a) != len(b) {
		return len(a) + len(b), AlgorithmIncomparable
	}
	cost := CostMatrix(a, b)
	if len(a) <= m.bruteForceLimit {
		return BruteForce(cost), AlgorithmBruteForce
	}
	// Square by construction.
	_, total, _ := Hungarian(cost)
	return total, AlgorithmHungarian
}

// CostMatrix returns cost[i][j] = |b[j]| − |a[i] ∩ b[j]|.
func CostMatrix(a, b [][]int) [][]int {
	sets := make([]map[int]struct{}, len(a))
	for i, team := range a {
		s := make(map[int]struct{}, len(team))
		for _, id := range team {
			s[id] = struct{}{}
		}
		sets[i] = s
	}
	cost := make([][]int, len(a))
	for i := range a {
		row := make([]int, len(b))
		for j, team := range b {
			shared := 0
			for _, id := range team {
				if _, ok := sets[i][id]; ok {
					shared++
				}
			}
			row[j] = len(team) - shared
		}
		cost[i] = row
	}
	return cost
}
