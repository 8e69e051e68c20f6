package risk

import (
	"math"
	"slices"
)

// Percentile returns the p-th percentile (p in [0, 100]) of values using
// linear interpolation between order statistics: the result is taken at rank
// h = (n-1) * p / 100 on the ascending-sorted values, interpolating between
// floor(h) and ceil(h). This matches numpy's default percentile definition;
// other definitions ("lower", "nearest") are not interchangeable and must not
// be substituted.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if p < 0 {
		p = 0
	} else if p > 100 {
		p = 100
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	slices.Sort(sorted)

	h := float64(len(sorted)-1) * p / 100
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}
