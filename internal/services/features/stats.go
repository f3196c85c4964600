package features

import (
	"math"
	"sort"
)

// DefaultEpsilon replaces a degenerate standard deviation so z-scores stay finite.
const DefaultEpsilon = 1e-9

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// SampleStd returns the n-1 standard deviation around mean.
// Fewer than two values give NaN.
func SampleStd(xs []float64, mean float64) float64 {
	n := len(xs)
	if n < 2 {
		return math.NaN()
	}
	ss := 0.0
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

// SafeStd substitutes eps when std is NaN, infinite, or not larger than eps.
func SafeStd(std, eps float64) float64 {
	if eps <= 0 {
		eps = DefaultEpsilon
	}
	if math.IsNaN(std) || math.IsInf(std, 0) || std <= eps {
		return eps
	}
	return std
}

// ZScore computes (v - mean) / std.
func ZScore(v, mean, std float64) float64 {
	return (v - mean) / std
}

// ZScores standardizes xs over its own range and returns the scores with the
// mean and (epsilon-guarded) std that were used.
func ZScores(xs []float64, eps float64) (zs []float64, mean, std float64) {
	mean = Mean(xs)
	std = SafeStd(SampleStd(xs, mean), eps)
	zs = make([]float64, len(xs))
	for i, x := range xs {
		zs[i] = ZScore(x, mean, std)
	}
	return zs, mean, std
}

// PercentileRank returns, for every value, its average rank divided by n, times 100.
// Ties share the mean of the ranks they span, so the result is in (0, 100] and
// non-decreasing in the input value.
func PercentileRank(xs []float64) []float64 {
	n := len(xs)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })

	for i := 0; i < n; {
		j := i
		for j+1 < n && xs[idx[j+1]] == xs[idx[i]] {
			j++
		}
		// ranks are 1-based: positions i..j hold ranks i+1..j+1
		avg := float64(i+j+2) / 2
		for k := i; k <= j; k++ {
			out[idx[k]] = avg / float64(n) * 100
		}
		i = j + 1
	}
	return out
}
