package prometheus

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentscope/geointel/pkg/errors"
)

func TestObservePrediction(t *testing.T) {
	m := NewMetrics()

	m.ObservePrediction(2*time.Millisecond, nil)
	m.ObservePrediction(time.Millisecond, errors.New(errors.ErrCodeInvalidArea, "bad area"))
	m.ObservePrediction(time.Millisecond, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.predictions.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.predictions.WithLabelValues("error")))
}

func TestObserveCache(t *testing.T) {
	m := NewMetrics()

	m.ObserveCache(true)
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCacheComputeError()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheRequests.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheRequests.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheComputeErrors))
}

func TestObserveAggregation(t *testing.T) {
	m := NewMetrics()

	m.ObserveAggregation("rollup")
	m.ObserveAggregation("rollup")
	m.ObserveAggregation("scan")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.aggregationRequests.WithLabelValues("rollup")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.aggregationRequests.WithLabelValues("scan")))
}

func TestObserveHTTP(t *testing.T) {
	m := NewMetrics()

	m.ObserveHTTP("GET", "/api/v1/districts", 200, 5*time.Millisecond)
	m.ObserveHTTP("GET", "/api/v1/districts", 200, 7*time.Millisecond)
	m.ObserveHTTP("POST", "/api/v1/predictions", 400, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/districts", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/api/v1/predictions", "400")))
}

func TestRegistryGathers(t *testing.T) {
	m := NewMetrics()
	m.ObservePrediction(time.Millisecond, nil)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
