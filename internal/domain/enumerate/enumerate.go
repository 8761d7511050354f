// Package enumerate produces every way to split a set of participant
// indices into teams of given sizes.
//
// The enumeration is a recursive choice without replacement over an explicit
// index arena. At each recursion level a team of sizes[level] members is
// chosen from the indices not yet placed, and the walk recurses on what is
// left. Teams of equal size are interchangeable, so the walk anchors the
// smallest remaining index into the team chosen at a level (see Mode). This
// yields every distinct set partition exactly once.
//
// The number of assignments grows like a multinomial coefficient in the
// roster size: 20 players in 5v5+5v5 already give 11,732,745,024 labelled
// splits, of which 488,864,376 are canonical. Callers should bound the input
// with Count before walking.
package enumerate

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Mode selects which team orderings are treated as duplicates.
type Mode int

const (
	// ByTeam anchors every level: the collection of teams is unordered, so
	// each set partition is produced once. Which teams face each other is
	// decided by position only.
	ByTeam Mode = iota
	// ByMatch anchors only the first team of every match: the collection of
	// matches is unordered and the two sides of a match are unordered, so
	// each distinct match-up is produced once.
	ByMatch
)

// ParseMode accepts "team" or "match" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "team":
		return ByTeam, nil
	case "match":
		return ByMatch, nil
	default:
		return ByTeam, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

func (m Mode) String() string {
	switch m {
	case ByTeam:
		return "team"
	case ByMatch:
		return "match"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Assignment is one raw partition: teams of participant indices in plan order.
type Assignment [][]int

// Walk calls yield for every assignment of indices to teams of the given
// sizes, stopping early when yield returns false. Each assignment passed to
// yield is freshly allocated and may be retained.
func Walk(indices, sizes []int, mode Mode, yield func(Assignment) bool) error {
	arena, err := prepare(indices, sizes)
	if err != nil {
		return err
	}
	w := newWalker(sizes, mode, yield)
	w.level(0, arena)
	return nil
}

// All returns the assignments as a lazy sequence. Input errors are reported
// before iteration starts.
func All(indices, sizes []int, mode Mode) (iter.Seq[Assignment], error) {
	arena, err := prepare(indices, sizes)
	if err != nil {
		return nil, err
	}
	return func(yield func(Assignment) bool) {
		w := newWalker(sizes, mode, yield)
		w.level(0, arena)
	}, nil
}

// Branches lists every choice of the first team in enumeration order.
// Walking each branch with WalkBranch and concatenating the results gives
// exactly the sequence produced by Walk.
func Branches(indices, sizes []int, mode Mode) ([][]int, error) {
	arena, err := prepare(indices, sizes)
	if err != nil {
		return nil, err
	}
	if len(sizes) == 0 {
		return nil, nil
	}
	anchors := anchorLevels(sizes, mode)
	var out [][]int
	pool, prefix := split(arena, anchors[0])
	combinations(pool, prefix, sizes[0]-len(prefix), func(team []int) bool {
		out = append(out, slices.Clone(team))
		return true
	})
	return out, nil
}

// WalkBranch enumerates the assignments whose first team is first.
func WalkBranch(indices, sizes []int, mode Mode, first []int, yield func(Assignment) bool) error {
	arena, err := prepare(indices, sizes)
	if err != nil {
		return err
	}
	if len(sizes) == 0 || len(first) != sizes[0] {
		return fmt.Errorf("%w: want %d members, got %d", ErrInvalidBranch, firstSize(sizes), len(first))
	}
	team := slices.Clone(first)
	slices.Sort(team)
	if anchorLevels(sizes, mode)[0] && team[0] != arena[0] {
		return fmt.Errorf("%w: first team must contain index %d", ErrInvalidBranch, arena[0])
	}
	rest := without(arena, team)
	if len(rest) != len(arena)-len(team) {
		return fmt.Errorf("%w: %v is not a subset of the roster", ErrInvalidBranch, first)
	}
	w := newWalker(sizes, mode, yield)
	w.teams[0] = team
	w.level(1, rest)
	return nil
}

// Count returns the number of assignments Walk yields for n indices,
// saturating at math.MaxUint64. It returns 0 for inputs Walk would reject.
func Count(n int, sizes []int, mode Mode) uint64 {
	total := 0
	for _, s := range sizes {
		if s <= 0 {
			return 0
		}
		total += s
	}
	if total != n {
		return 0
	}
	anchors := anchorLevels(sizes, mode)
	remaining := n
	count := uint64(1)
	for i, s := range sizes {
		var c uint64
		if anchors[i] {
			c = binomial(remaining-1, s-1)
		} else {
			c = binomial(remaining, s)
		}
		count = mulSat(count, c)
		remaining -= s
	}
	return count
}

// prepare validates the input and returns a sorted copy of indices.
func prepare(indices, sizes []int) ([]int, error) {
	total := 0
	for i, s := range sizes {
		if s <= 0 {
			return nil, fmt.Errorf("%w: team %d has size %d", ErrInvalidSize, i+1, s)
		}
		total += s
	}
	if total != len(indices) {
		return nil, fmt.Errorf("%w: expected %d participants, got %d", ErrSizeMismatch, total, len(indices))
	}
	arena := slices.Clone(indices)
	slices.Sort(arena)
	for i := 1; i < len(arena); i++ {
		if arena[i] == arena[i-1] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateIndex, arena[i])
		}
	}
	return arena, nil
}

// anchorLevels reports, per level, whether the smallest remaining index is
// forced into the team chosen there. Anchoring is only sound while every
// remaining team has the same size.
func anchorLevels(sizes []int, mode Mode) []bool {
	out := make([]bool, len(sizes))
	uniform := true
	for i := len(sizes) - 1; i >= 0; i-- {
		if i+1 < len(sizes) && sizes[i] != sizes[i+1] {
			uniform = false
		}
		switch mode {
		case ByMatch:
			out[i] = uniform && i%2 == 0
		default:
			out[i] = uniform
		}
	}
	return out
}

type walker struct {
	sizes   []int
	anchors []bool
	teams   [][]int
	yield   func(Assignment) bool
	stopped bool
}

func newWalker(sizes []int, mode Mode, yield func(Assignment) bool) *walker {
	return &walker{
		sizes:   sizes,
		anchors: anchorLevels(sizes, mode),
		teams:   make([][]int, len(sizes)),
		yield:   yield,
	}
}

// level chooses the team for depth from remaining (sorted) and recurses.
func (w *walker) level(depth int, remaining []int) {
	if w.stopped {
		return
	}
	if depth == len(w.sizes) {
		w.emit()
		return
	}
	pool, prefix := split(remaining, w.anchors[depth])
	combinations(pool, prefix, w.sizes[depth]-len(prefix), func(team []int) bool {
		w.teams[depth] = team
		w.level(depth+1, without(remaining, team))
		return !w.stopped
	})
}

func (w *walker) emit() {
	out := make(Assignment, len(w.teams))
	for i, t := range w.teams {
		out[i] = slices.Clone(t)
	}
	if !w.yield(out) {
		w.stopped = true
	}
}

// split returns the candidate pool and the forced prefix of a team.
func split(remaining []int, anchored bool) (pool, prefix []int) {
	if anchored && len(remaining) > 0 {
		return remaining[1:], []int{remaining[0]}
	}
	return remaining, nil
}

// combinations calls fn with prefix extended by every k-subset of pool in
// lexicographic order. The slice passed to fn is reused between calls.
func combinations(pool, prefix []int, k int, fn func(team []int) bool) bool {
	team := make([]int, len(prefix), len(prefix)+k)
	copy(team, prefix)
	var rec func(start, need int) bool
	rec = func(start, need int) bool {
		if need == 0 {
			return fn(team)
		}
		for i := start; i <= len(pool)-need; i++ {
			team = append(team, pool[i])
			ok := rec(i+1, need-1)
			team = team[:len(team)-1]
			if !ok {
				return false
			}
		}
		return true
	}
	return rec(0, k)
}

// without returns the sorted elements of all that are not in team (sorted).
func without(all, team []int) []int {
	out := make([]int, 0, len(all))
	j := 0
	for _, v := range all {
		for j < len(team) && team[j] < v {
			j++
		}
		if j < len(team) && team[j] == v {
			continue
		}
		out = append(out, v)
	}
	return out
}

func firstSize(sizes []int) int {
	if len(sizes) == 0 {
		return 0
	}
	return sizes[0]
}
