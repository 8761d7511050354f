package model

import (
	"fmt"
	"sort"
)

// PairKey is the canonical key of an unordered participant pair.
type PairKey struct {
	Lo int
	Hi int
}

// NewPairKey orders the two ids so (a, b) and (b, a) share a key.
func NewPairKey(a, b int) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{Lo: a, Hi: b}
}

// String renders the key as "lo:hi".
func (k PairKey) String() string {
	return fmt.Sprintf("%d:%d", k.Lo, k.Hi)
}

// Synergy is one stored pairwise adjustment.
type Synergy struct {
	Pair  PairKey `json:"-"`
	A     int     `json:"a"`
	B     int     `json:"b"`
	Value int     `json:"value"`
}

// SynergySource answers synergy lookups for a generation run.
// Unknown pairs must report 0.
type SynergySource interface {
	Lookup(a, b int) int
}

// SynergyTable is an immutable-by-convention snapshot of synergy values.
type SynergyTable map[PairKey]int

// Lookup returns the stored value for the pair or 0.
func (t SynergyTable) Lookup(a, b int) int {
	if t == nil || a == b {
		return 0
	}
	return t[NewPairKey(a, b)]
}

// Records lists the table sorted by pair key.
func (t SynergyTable) Records() []Synergy {
	out := make([]Synergy, 0, len(t))
	for k, v := range t {
		out = append(out, Synergy{Pair: k, A: k.Lo, B: k.Hi, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pair.Lo != out[j].Pair.Lo {
			return out[i].Pair.Lo < out[j].Pair.Lo
		}
		return out[i].Pair.Hi < out[j].Pair.Hi
	})
	return out
}

// Clone returns an independent copy.
func (t SynergyTable) Clone() SynergyTable {
	out := make(SynergyTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}
