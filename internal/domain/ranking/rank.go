// Package ranking orders scored partitions from most to least balanced.
//
// Ordering: fitness ASC, then enumeration order (stable). No other
// tie-break is applied.
package ranking

import (
	"cmp"
	"slices"

	"github.com/okian/lineup/internal/domain/model"
)

// Rank sorts partitions in place, ascending by fitness. Partitions with equal
// fitness keep their relative order.
func Rank(partitions []model.Partition) {
	slices.SortStableFunc(partitions, func(a, b model.Partition) int {
		return cmp.Compare(a.Fitness, b.Fitness)
	})
}

// IsRanked reports whether partitions are in non-decreasing fitness order.
func IsRanked(partitions []model.Partition) bool {
	for i := 1; i < len(partitions); i++ {
		if partitions[i].Fitness < partitions[i-1].Fitness {
			return false
		}
	}
	return true
}
