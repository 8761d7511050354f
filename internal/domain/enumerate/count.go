package enumerate

import (
	"math"
	"math/bits"
)

// binomial returns C(n, k), saturating at math.MaxUint64.
func binomial(n, k int) uint64 {
	if k < 0 || n < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	r := uint64(1)
	for i := 0; i < k; i++ {
		// r*(n-i) is divisible by i+1 since r == C(n, i) at this point.
		hi, lo := bits.Mul64(r, uint64(n-i))
		d := uint64(i + 1)
		if hi >= d {
			return math.MaxUint64
		}
		r, _ = bits.Div64(hi, lo, d)
	}
	return r
}

func mulSat(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}
