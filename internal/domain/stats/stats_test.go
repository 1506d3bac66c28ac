package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
	assert.Equal(t, 25000.0, Mean([]float64{20000, 30000}))
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 2.0, Median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 2, 3}))
}

func TestStdDev_Population(t *testing.T) {
	assert.Equal(t, 0.0, StdDev(nil))
	assert.Equal(t, 0.0, StdDev([]float64{5, 5, 5}))
	// population stddev of {2,4,4,4,5,5,7,9} is exactly 2
	assert.InDelta(t, 2.0, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-12)
}

func TestPercentiles_LinearInterpolation(t *testing.T) {
	values := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
	got := Percentiles(values)

	assert.InDelta(t, 0.55, got["p50"], 1e-12)
	assert.InDelta(t, 0.775, got["p75"], 1e-12)
	assert.InDelta(t, 0.91, got["p90"], 1e-12)
}

func TestPercentiles_Empty(t *testing.T) {
	got := Percentiles(nil)
	assert.Equal(t, map[string]float64{"p50": 0.0, "p75": 0.0, "p90": 0.0}, got)
}

func TestPercentiles_SingleValue(t *testing.T) {
	got := Percentiles([]float64{42})
	assert.Equal(t, 42.0, got["p50"])
	assert.Equal(t, 42.0, got["p75"])
	assert.Equal(t, 42.0, got["p90"])
}

func TestQuantile_UnsortedInput(t *testing.T) {
	// Quantile must sort internally and not mutate its input.
	values := []float64{9, 1, 5}
	assert.Equal(t, 5.0, Quantile(values, 0.5))
	assert.Equal(t, []float64{9, 1, 5}, values)
}

func TestConfidenceDistribution(t *testing.T) {
	dist := ConfidenceDistribution([]float64{0.1, 0.49, 0.5, 0.69, 0.7, 0.89, 0.9, 1.0})
	assert.Equal(t, 2, dist[BucketLow])
	assert.Equal(t, 2, dist[BucketMedium])
	assert.Equal(t, 2, dist[BucketHigh])
	assert.Equal(t, 2, dist[BucketVeryHigh])
}

func TestConfidenceDistribution_EmptyHasAllBuckets(t *testing.T) {
	dist := ConfidenceDistribution(nil)
	assert.Len(t, dist, 4)
	for label, n := range dist {
		assert.Zero(t, n, "bucket: %s", label)
	}
}

func TestRoundHalfAway(t *testing.T) {
	assert.Equal(t, 2.0, RoundHalfAway(1.5))
	assert.Equal(t, -2.0, RoundHalfAway(-1.5))
	assert.Equal(t, 25000.0, RoundHalfAway(24999.6))
}
