// Package prometheus defines the engine's metrics surface.  One Metrics
// value is created at startup and threaded through the layers that need to
// record observations.
package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "geointel"

// Metrics bundles every collector the engine exports.
type Metrics struct {
	registry *prometheus.Registry

	predictions        *prometheus.CounterVec
	predictionDuration prometheus.Histogram

	clusteringRuns     prometheus.Counter
	clusteringDuration prometheus.Histogram
	clusteringPoints   prometheus.Histogram

	cacheRequests      *prometheus.CounterVec
	cacheComputeErrors prometheus.Counter

	aggregationRequests *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInFlight prometheus.Gauge
}

// NewMetrics builds a self-contained registry with process and Go runtime
// collectors plus the engine's own instruments.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		predictions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Price predictions served, labelled by outcome.",
		}, []string{"status"}),
		predictionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Wall time of a single price prediction.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),

		clusteringRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clustering_runs_total",
			Help:      "Completed clustering runs.",
		}),
		clusteringDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "clustering_duration_seconds",
			Help:      "Wall time of a clustering run.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		clusteringPoints: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "clustering_points",
			Help:      "Input point count per clustering run.",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 8),
		}),

		cacheRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Tiered cache lookups, labelled hit or miss.",
		}, []string{"result"}),
		cacheComputeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_compute_errors_total",
			Help:      "Cache fills that failed in the compute function.",
		}),

		aggregationRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregation_requests_total",
			Help:      "Aggregation queries, labelled by serving path.",
		}, []string{"path"}),

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, labelled by method, route, and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served.",
		}),
	}
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObservePrediction records one prediction outcome and its duration.
func (m *Metrics) ObservePrediction(d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.predictions.WithLabelValues(status).Inc()
	m.predictionDuration.Observe(d.Seconds())
}

// ObserveClustering records one completed clustering run.
func (m *Metrics) ObserveClustering(d time.Duration, points int) {
	m.clusteringRuns.Inc()
	m.clusteringDuration.Observe(d.Seconds())
	m.clusteringPoints.Observe(float64(points))
}

// ObserveCache records a tiered cache lookup result.
func (m *Metrics) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheRequests.WithLabelValues(result).Inc()
}

// ObserveCacheComputeError records a failed cache fill.
func (m *Metrics) ObserveCacheComputeError() {
	m.cacheComputeErrors.Inc()
}

// ObserveAggregation records which path served an aggregation query.
func (m *Metrics) ObserveAggregation(path string) {
	m.aggregationRequests.WithLabelValues(path).Inc()
}

// ObserveHTTP records one finished HTTP request.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// HTTPInFlight returns the in-flight gauge for the middleware to inc/dec.
func (m *Metrics) HTTPInFlight() prometheus.Gauge {
	return m.httpInFlight
}
