package diversity

import (
	"fmt"
	"math"
)

// BruteForce returns the minimum total cost over every permutation of
// columns. It runs in O(k!·k) and serves as the reference for Hungarian.
func BruteForce(cost [][]int) int {
	n := len(cost)
	if n == 0 {
		return 0
	}
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	best := total(cost, perm)

	// Heap's algorithm, iterative form.
	c := make([]int, n)
	for i := 1; i < n; {
		if c[i] < i {
			if i%2 == 0 {
				perm[0], perm[i] = perm[i], perm[0]
			} else {
				perm[c[i]], perm[i] = perm[i], perm[c[i]]
			}
			if t := total(cost, perm); t < best {
				best = t
			}
			c[i]++
			i = 1
			continue
		}
		c[i] = 0
		i++
	}
	return best
}

func total(cost [][]int, perm []int) int {
	t := 0
	for i, j := range perm {
		t += cost[i][j]
	}
	return t
}

// Hungarian solves the square assignment problem with row/column potentials.
// It returns assign[row] = column and the minimum total cost.
func Hungarian(cost [][]int) ([]int, int, error) {
	n := len(cost)
	for i, row := range cost {
		if len(row) != n {
			return nil, 0, fmt.Errorf("%w: row %d has %d columns, want %d", ErrNotSquare, i, len(row), n)
		}
	}
	if n == 0 {
		return nil, 0, nil
	}

	const inf = math.MaxInt / 2
	// 1-based; column 0 is a virtual start column.
	u := make([]int, n+1)
	v := make([]int, n+1)
	p := make([]int, n+1) // p[col] = row matched to col
	way := make([]int, n+1)
	minv := make([]int, n+1)
	used := make([]bool, n+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		for j := range minv {
			minv[j] = inf
			used[j] = false
		}
		for {
			used[j0] = true
			i0, delta, j1 := p[j0], inf, 0
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := cost[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= n; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	assign := make([]int, n)
	for j := 1; j <= n; j++ {
		if p[j] != 0 {
			assign[p[j]-1] = j - 1
		}
	}
	return assign, total(cost, assign), nil
}
