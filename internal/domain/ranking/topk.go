package ranking

import "github.com/okian/lineup/internal/domain/model"

// Treap-based bounded selection of the best partitions.
//
// Ordering: fitness ASC, then sequence ASC. The sequence is the enumeration
// ordinal supplied by the caller, so keeping the k smallest keys gives the
// same result as a stable sort followed by taking the first k entries.
// In-order traversal yields the ranking from best to worst.

// TopK keeps at most limit partitions. It is not safe for concurrent use;
// parallel producers keep one TopK each and Merge them afterwards.
type TopK struct {
	limit int
	root  *node
}

type node struct {
	fitness int
	seq     uint64
	prio    uint64
	item    model.Partition
	left    *node
	right   *node
	size    int
}

// NewTopK creates a selection of at most limit entries. A limit below 1 is
// treated as 1.
func NewTopK(limit int) *TopK {
	if limit < 1 {
		limit = 1
	}
	return &TopK{limit: limit}
}

// Limit returns the configured capacity.
func (t *TopK) Limit() int { return t.limit }

// Len returns the number of partitions kept.
func (t *TopK) Len() int { return nsize(t.root) }

// Admits reports whether a partition with this key would be kept, without
// building it first.
func (t *TopK) Admits(fitness int, seq uint64) bool {
	if nsize(t.root) < t.limit {
		return true
	}
	worst := rightmost(t.root)
	return less(fitness, seq, worst.fitness, worst.seq)
}

// Offer inserts the partition if it ranks among the best limit entries seen.
// It reports whether the partition was kept.
func (t *TopK) Offer(seq uint64, p model.Partition) bool {
	if !t.Admits(p.Fitness, seq) {
		return false
	}
	t.root = insert(t.root, &node{fitness: p.Fitness, seq: seq, prio: priority(seq), item: p, size: 1})
	if nsize(t.root) > t.limit {
		t.root = deleteMax(t.root)
	}
	return true
}

// Merge offers every entry of other to t.
func (t *TopK) Merge(other *TopK) {
	if other == nil {
		return
	}
	walk(other.root, func(n *node) {
		t.Offer(n.seq, n.item)
	})
}

// Items returns the kept partitions from best to worst.
func (t *TopK) Items() []model.Partition {
	out := make([]model.Partition, 0, nsize(t.root))
	walk(t.root, func(n *node) {
		out = append(out, n.item)
	})
	return out
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aFit, aSeq) ranks before (bFit, bSeq).
func less(aFit int, aSeq uint64, bFit int, bSeq uint64) bool {
	if aFit != bFit {
		return aFit < bFit
	}
	return aSeq < bSeq
}

// priority derives a heap priority from the sequence (splitmix64), so the
// shape of the treap is deterministic for a given input.
func priority(seq uint64) uint64 {
	z := seq + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n, in *node) *node {
	if n == nil {
		return in
	}
	if less(in.fitness, in.seq, n.fitness, n.seq) {
		n.left = insert(n.left, in)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, in)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

// deleteMax removes the worst-ranked node.
func deleteMax(n *node) *node {
	if n == nil {
		return nil
	}
	if n.right == nil {
		return n.left
	}
	n.right = deleteMax(n.right)
	fix(n)
	return n
}

func rightmost(n *node) *node {
	for n != nil && n.right != nil {
		n = n.right
	}
	return n
}

// walk visits nodes in rank order.
func walk(n *node, fn func(*node)) {
	if n == nil {
		return
	}
	walk(n.left, fn)
	fn(n)
	walk(n.right, fn)
}
