// Package market is the application facade over the domain engines.  It
// wires normalization, prediction, clustering, heatmaps, and aggregation to
// the stores and the tiered cache, and is the only layer the interfaces
// (HTTP, CLI, worker) talk to.
package market

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rentscope/geointel/internal/domain/aggregation"
	"github.com/rentscope/geointel/internal/domain/clustering"
	"github.com/rentscope/geointel/internal/domain/feature"
	"github.com/rentscope/geointel/internal/domain/geo"
	"github.com/rentscope/geointel/internal/domain/heatmap"
	"github.com/rentscope/geointel/internal/domain/prediction"
	"github.com/rentscope/geointel/internal/infrastructure/cache"
	"github.com/rentscope/geointel/internal/infrastructure/monitoring/logging"
	"github.com/rentscope/geointel/internal/infrastructure/monitoring/prometheus"
	"github.com/rentscope/geointel/pkg/errors"
)

// PointStore supplies the located, priced points behind the map views.
type PointStore interface {
	ListPoints(ctx context.Context, filter aggregation.Filter) ([]geo.Point, error)
}

// Deps carries the service's collaborators.  Cache is required; Metrics may
// be nil, which disables instrumentation.
type Deps struct {
	Normalizer   *feature.Normalizer
	Predictor    *prediction.Predictor
	Clusterer    *clustering.Engine
	Heatmaps     *heatmap.Generator
	Aggregator   *aggregation.Aggregator
	Points       PointStore
	Cache        *cache.TieredCache
	Metrics      *prometheus.Metrics
	Logger       logging.Logger
	HotDistricts []string
}

// Service exposes the market intelligence operations.
type Service struct {
	deps   Deps
	logger logging.Logger
}

// NewService constructs the facade.  Missing stateless engines are filled
// with defaults so tests can construct a partial service cheaply.
func NewService(deps Deps) *Service {
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	if deps.Normalizer == nil {
		deps.Normalizer = feature.NewNormalizer(deps.Logger)
	}
	if deps.Predictor == nil {
		deps.Predictor = prediction.NewPredictor()
	}
	if deps.Clusterer == nil {
		deps.Clusterer = clustering.NewEngine(clustering.DefaultOptions(), deps.Logger)
	}
	if deps.Heatmaps == nil {
		deps.Heatmaps = heatmap.NewGenerator()
	}
	if deps.Cache == nil {
		deps.Cache = cache.NewTieredCache(deps.Logger)
	}
	return &Service{deps: deps, logger: deps.Logger.Named("market")}
}

// BatchPrediction is the result of predicting over a raw listing batch.
type BatchPrediction struct {
	Predictions []*prediction.Prediction `json:"predictions"`
	Summary     *prediction.Summary      `json:"summary"`
	Received    int                      `json:"received"`
	Valid       int                      `json:"valid"`
}

// ClusterView pairs the clusters with the run report.
type ClusterView struct {
	Clusters []clustering.Cluster     `json:"clusters"`
	Info     clustering.AlgorithmInfo `json:"algorithm_info"`
}

// HeatmapView pairs the cells with their statistics.
type HeatmapView struct {
	Cells      []heatmap.Cell     `json:"cells"`
	Statistics heatmap.Statistics `json:"statistics"`
}

// AggregateView is the aggregation response: district rows, the per-city
// totals derived from them, and which path produced the rows.
type AggregateView struct {
	Districts  []aggregation.AggregatedDistrict `json:"districts"`
	CityTotals map[string]int                   `json:"city_totals"`
	Path       aggregation.Path                 `json:"path"`
}

// PredictPrice normalizes one raw listing and prices it.
func (s *Service) PredictPrice(ctx context.Context, raw map[string]interface{}) (*prediction.Prediction, error) {
	start := time.Now()
	f, err := s.deps.Normalizer.Normalize(raw)
	if err != nil {
		s.observePrediction(start, err)
		return nil, err
	}
	pred, err := s.deps.Predictor.Predict(f)
	s.observePrediction(start, err)
	return pred, err
}

// PredictBatch normalizes a batch, silently dropping invalid listings, and
// prices the survivors.  An all-invalid batch yields an empty result, not an
// error.
func (s *Service) PredictBatch(ctx context.Context, raws []map[string]interface{}) (*BatchPrediction, error) {
	start := time.Now()
	features := s.deps.Normalizer.NormalizeBatch(raws)
	preds, err := s.deps.Predictor.PredictBatch(features)
	s.observePrediction(start, err)
	if err != nil {
		return nil, err
	}
	return &BatchPrediction{
		Predictions: preds,
		Summary:     prediction.Summarize(preds),
		Received:    len(raws),
		Valid:       len(preds),
	}, nil
}

// MapClusters clusters the points matching the filter into at most k
// groups.  Results are cached per (k, filter scope).
func (s *Service) MapClusters(ctx context.Context, filter aggregation.Filter, k int) (*ClusterView, error) {
	if k < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidK, "k must be ≥ 1, got %d", k)
	}

	compute := func(ctx context.Context) (interface{}, error) {
		start := time.Now()
		points, err := s.listPoints(ctx, filter)
		if err != nil {
			return nil, err
		}
		clusters, info, err := s.deps.Clusterer.Cluster(points, k)
		if err != nil {
			return nil, err
		}
		if s.deps.Metrics != nil {
			s.deps.Metrics.ObserveClustering(time.Since(start), len(points))
		}
		return &ClusterView{Clusters: clusters, Info: info}, nil
	}

	if filter.BuildingType != "" {
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		return v.(*ClusterView), nil
	}

	key := cache.Key{Dataset: fmt.Sprintf("clusters-k%d", k), City: filter.City, District: filter.District}
	var view ClusterView
	if err := s.deps.Cache.GetOrCompute(ctx, key, &view, compute); err != nil {
		return nil, err
	}
	return &view, nil
}

// Heatmap renders the price heatmap for the filter at the given resolution
// ("" defaults to medium).
func (s *Service) Heatmap(ctx context.Context, filter aggregation.Filter, resolution string) (*HeatmapView, error) {
	res, err := heatmap.ParseResolution(resolution)
	if err != nil {
		return nil, err
	}

	compute := func(ctx context.Context) (interface{}, error) {
		points, err := s.listPoints(ctx, filter)
		if err != nil {
			return nil, err
		}
		cells, st, err := s.deps.Heatmaps.Generate(points, res)
		if err != nil {
			return nil, err
		}
		return &HeatmapView{Cells: cells, Statistics: st}, nil
	}

	if filter.BuildingType != "" {
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		return v.(*HeatmapView), nil
	}

	key := cache.Key{Dataset: "heatmap-" + string(res), City: filter.City, District: filter.District}
	var view HeatmapView
	if err := s.deps.Cache.GetOrCompute(ctx, key, &view, compute); err != nil {
		return nil, err
	}
	return &view, nil
}

// Aggregate resolves district rollups for the filter.  Building-type
// filters bypass the cache because the key space does not carry that
// dimension.
func (s *Service) Aggregate(ctx context.Context, filter aggregation.Filter) (*AggregateView, error) {
	if s.deps.Aggregator == nil {
		return nil, errors.New(errors.ErrCodeStoreUnavailable, "aggregation is not configured")
	}

	var result aggregation.Result
	if filter.BuildingType != "" {
		r, err := s.deps.Aggregator.Aggregate(ctx, filter)
		if err != nil {
			return nil, err
		}
		result = r
	} else {
		key := cache.Key{
			Dataset:  "aggregate",
			City:     aggregation.CanonicalCity(filter.City),
			District: filter.District,
		}
		err := s.deps.Cache.GetOrCompute(ctx, key, &result, func(ctx context.Context) (interface{}, error) {
			return s.deps.Aggregator.Aggregate(ctx, filter)
		})
		if err != nil {
			return nil, err
		}
	}

	if s.deps.Metrics != nil {
		s.deps.Metrics.ObserveAggregation(string(result.Path))
	}
	return &AggregateView{
		Districts:  result.Districts,
		CityTotals: aggregation.CityTotals(result.Districts),
		Path:       result.Path,
	}, nil
}

// CacheStats snapshots the tiered cache counters.
func (s *Service) CacheStats() cache.Stats {
	return s.deps.Cache.Stats()
}

// InvalidateDistrict drops the cached results covering (city, district),
// including the wildcard aggregates above it.
func (s *Service) InvalidateDistrict(ctx context.Context, city, district string) {
	s.deps.Cache.Invalidate(ctx, aggregation.CanonicalCity(city), district)
}

// FlushCache empties every cache tier.
func (s *Service) FlushCache(ctx context.Context) {
	s.deps.Cache.FlushAll(ctx)
}

// WarmupHotDistricts pre-computes the aggregate for every configured
// "city/district" pair and returns how many entries were filled.  Malformed
// pairs are logged and skipped.
func (s *Service) WarmupHotDistricts(ctx context.Context) int {
	if s.deps.Aggregator == nil {
		return 0
	}

	var entries []cache.WarmupEntry
	for _, pair := range s.deps.HotDistricts {
		parts := strings.SplitN(pair, "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			s.logger.Warn("skipping malformed hot district", logging.String("pair", pair))
			continue
		}
		city := aggregation.CanonicalCity(parts[0])
		district := parts[1]
		filter := aggregation.Filter{City: city, District: district}
		entries = append(entries, cache.WarmupEntry{
			Key: cache.Key{Dataset: "aggregate", City: city, District: district},
			Compute: func(ctx context.Context) (interface{}, error) {
				return s.deps.Aggregator.Aggregate(ctx, filter)
			},
		})
	}

	warmed := s.deps.Cache.Warmup(ctx, entries)
	s.logger.Info("hot district warmup finished",
		logging.Int("configured", len(s.deps.HotDistricts)),
		logging.Int("warmed", warmed),
	)
	return warmed
}

func (s *Service) listPoints(ctx context.Context, filter aggregation.Filter) ([]geo.Point, error) {
	if s.deps.Points == nil {
		return nil, errors.New(errors.ErrCodeStoreUnavailable, "no point store configured")
	}
	return s.deps.Points.ListPoints(ctx, filter)
}

func (s *Service) observePrediction(start time.Time, err error) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.ObservePrediction(time.Since(start), err)
	}
}
