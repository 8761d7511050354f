// Package planner derives team-size plans from a roster size.
//
// A plan is a sequence of matches; each match is two opposing teams of the
// same size. Only sizes that split the roster into an even number of equal
// teams are planned. Uneven teams and odd team counts are not supported.
package planner

import (
	"strconv"
	"strings"
)

// Match is a pair of opposing team sizes.
type Match struct {
	A int
	B int
}

// Plan is an ordered sequence of matches covering the whole roster.
type Plan []Match

// Plans returns every plan whose team size lies in [minSize, maxSize].
// An empty result is valid and means no size splits the roster evenly.
func Plans(rosterSize, minSize, maxSize int) []Plan {
	if minSize < 1 {
		minSize = 1
	}
	var out []Plan
	if rosterSize <= 0 {
		return out
	}
	for s := minSize; s <= maxSize; s++ {
		if rosterSize%s != 0 {
			continue
		}
		numTeams := rosterSize / s
		if numTeams%2 != 0 {
			continue
		}
		p := make(Plan, numTeams/2)
		for i := range p {
			p[i] = Match{A: s, B: s}
		}
		out = append(out, p)
	}
	return out
}

// Flatten returns the individual team sizes in order, e.g. 5v5+5v5 -> [5 5 5 5].
func (p Plan) Flatten() []int {
	out := make([]int, 0, len(p)*2)
	for _, m := range p {
		out = append(out, m.A, m.B)
	}
	return out
}

// Size returns the number of participants the plan places.
func (p Plan) Size() int {
	n := 0
	for _, m := range p {
		n += m.A + m.B
	}
	return n
}

// Teams returns the number of teams in the plan.
func (p Plan) Teams() int {
	return len(p) * 2
}

func (p Plan) String() string {
	parts := make([]string, len(p))
	for i, m := range p {
		parts[i] = strconv.Itoa(m.A) + "v" + strconv.Itoa(m.B)
	}
	return strings.Join(parts, "+")
}
