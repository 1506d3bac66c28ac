// Package stats implements the shared numeric primitives used by the
// prediction, clustering, and aggregation components.  All functions are
// pure; arithmetic is specified step-for-step so that a second runtime can
// reproduce results within documented tolerances.
package stats

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median returns the median of values, or 0 for an empty slice.  For an even
// count the result is the mean of the two middle order statistics.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2.0
}

// StdDev returns the population standard deviation of values (divisor n, not
// n-1), or 0 for an empty slice.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// Min returns the smallest value, or 0 for an empty slice.
func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Max returns the largest value, or 0 for an empty slice.
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Quantile returns the q-th quantile (q in [0,1]) of values using linear
// interpolation between order statistics: for a sorted array of n values,
// index = q·(n-1); result = v[floor] + (index-floor)·(v[ceil] - v[floor]).
// An empty slice yields 0.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	idx := q * float64(len(sorted)-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (idx-float64(lo))*(sorted[hi]-sorted[lo])
}

// percentileTargets fixes the labelled quantiles reported across the engine.
var percentileTargets = map[string]float64{
	"p50": 0.50,
	"p75": 0.75,
	"p90": 0.90,
}

// Percentiles returns the p50/p75/p90 quantiles of values keyed by label.
// An empty slice yields 0.0 for every label, never an error.
func Percentiles(values []float64) map[string]float64 {
	out := make(map[string]float64, len(percentileTargets))
	for label, q := range percentileTargets {
		out[label] = Quantile(values, q)
	}
	return out
}

// Confidence-distribution bucket labels, in ascending order.
const (
	BucketLow      = "low"       // confidence < 0.5
	BucketMedium   = "medium"    // 0.5 ≤ confidence < 0.7
	BucketHigh     = "high"      // 0.7 ≤ confidence < 0.9
	BucketVeryHigh = "very_high" // confidence ≥ 0.9
)

// ConfidenceDistribution buckets confidence scores into the four fixed
// ranges and counts membership.  All labels are always present in the result
// so callers can render a stable histogram.
func ConfidenceDistribution(confidences []float64) map[string]int {
	dist := map[string]int{
		BucketLow:      0,
		BucketMedium:   0,
		BucketHigh:     0,
		BucketVeryHigh: 0,
	}
	for _, c := range confidences {
		switch {
		case c < 0.5:
			dist[BucketLow]++
		case c < 0.7:
			dist[BucketMedium]++
		case c < 0.9:
			dist[BucketHigh]++
		default:
			dist[BucketVeryHigh]++
		}
	}
	return dist
}

// RoundHalfAway rounds v half-away-from-zero to the nearest integer.  This
// is the single rounding rule applied to predicted prices so that both
// runtime implementations agree on the final digit.
func RoundHalfAway(v float64) float64 {
	return math.Round(v)
}
