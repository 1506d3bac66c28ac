// Package clustering partitions geographic points into density-aware groups
// using an iterative k-means refinement over (lat,lng) treated as a planar
// 2D space.  Seeding, tie-breaking, and ordering are fully deterministic:
// repeated calls on identical input produce identical output, and a second
// runtime implementing the same contract agrees within 0.0005° per centroid.
package clustering

import (
	"math"
	"sort"

	"github.com/rentscope/geointel/internal/domain/geo"
	"github.com/rentscope/geointel/internal/domain/stats"
	"github.com/rentscope/geointel/internal/infrastructure/monitoring/logging"
	"github.com/rentscope/geointel/pkg/errors"
)

// AlgorithmKMeans is the only clustering algorithm the engine implements.
const AlgorithmKMeans = "kmeans"

// Options bounds k-means execution.  The zero value is unusable; use
// DefaultOptions or populate from configuration.
type Options struct {
	// MaxIterations caps refinement rounds, bounding worst-case runtime at
	// O(n·k·MaxIterations).
	MaxIterations int

	// Epsilon is the maximum per-centroid movement (degrees) below which the
	// refinement is considered converged.
	Epsilon float64

	// MinRadiusKM guards the density computation against zero radius.
	MinRadiusKM float64
}

// DefaultOptions returns the engine defaults: 100 iterations, 1e-6 degrees,
// 0.1 km minimum radius.
func DefaultOptions() Options {
	return Options{MaxIterations: 100, Epsilon: 1e-6, MinRadiusKM: 0.1}
}

// PriceStats summarises member prices of one cluster.
type PriceStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Avg    float64 `json:"avg"`
	Median float64 `json:"median"`
}

// Cluster is one density-aware group of points.  Clusters are rebuilt per
// request from the current point set; they are never mutated in place.
type Cluster struct {
	ID          int         `json:"id"`
	Center      geo.Point   `json:"center"`
	Count       int         `json:"count"`
	Bounds      geo.Bounds  `json:"bounds"`
	RadiusKM    float64     `json:"radius_km"`
	Density     float64     `json:"density"`
	PriceStats  *PriceStats `json:"price_stats,omitempty"`
	VisualLevel int         `json:"visual_level"`
}

// AlgorithmInfo reports how a clustering run executed.
type AlgorithmInfo struct {
	Algorithm  string `json:"algorithm"`
	RequestedK int    `json:"requested_k"`
	EffectiveK int    `json:"effective_k"`
	Iterations int    `json:"iterations"`
	Converged  bool   `json:"converged"`
}

// Engine runs deterministic k-means clustering.  It is stateless and safe
// for concurrent use.
type Engine struct {
	opts   Options
	logger logging.Logger
}

// NewEngine constructs an Engine.  Non-positive option fields fall back to
// DefaultOptions values.
func NewEngine(opts Options, log logging.Logger) *Engine {
	def := DefaultOptions()
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = def.MaxIterations
	}
	if opts.Epsilon <= 0 {
		opts.Epsilon = def.Epsilon
	}
	if opts.MinRadiusKM <= 0 {
		opts.MinRadiusKM = def.MinRadiusKM
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Engine{opts: opts, logger: log.Named("clustering")}
}

// Cluster partitions points into at most k groups.  Degenerate cases:
// an empty point set yields an empty cluster list (success, not an error);
// when len(points) < k, k is clamped down so no cluster is ever empty.
// The returned clusters are sorted by center latitude then longitude.
func (e *Engine) Cluster(points []geo.Point, k int) ([]Cluster, AlgorithmInfo, error) {
	info := AlgorithmInfo{Algorithm: AlgorithmKMeans, RequestedK: k}

	if k < 1 {
		return nil, info, errors.Newf(errors.ErrCodeInvalidK, "k must be ≥ 1, got %d", k)
	}
	if err := geo.ValidateAll(points); err != nil {
		return nil, info, err
	}
	if len(points) == 0 {
		return []Cluster{}, info, nil
	}
	if k > len(points) {
		k = len(points)
	}

	// One point per cluster: refinement would merge coincident points into
	// fewer groups (duplicate seeds starve all but the lowest-index copy),
	// so emit the singleton partition directly.
	if k == len(points) {
		assignments := make([]int, len(points))
		for i := range assignments {
			assignments[i] = i
		}
		clusters := e.buildClusters(points, points, assignments)
		info.EffectiveK = len(clusters)
		info.Converged = true
		return clusters, info, nil
	}

	centroids := seedCentroids(points, k)
	assignments := make([]int, len(points))

	iterations := 0
	converged := false
	for iterations < e.opts.MaxIterations {
		iterations++

		// Assign each point to the nearest centroid; ties break toward the
		// lowest centroid index, which keeps assignment deterministic.
		for i, p := range points {
			best := 0
			bestDist := geo.PlanarDistSq(p, centroids[0])
			for c := 1; c < len(centroids); c++ {
				if d := geo.PlanarDistSq(p, centroids[c]); d < bestDist {
					best = c
					bestDist = d
				}
			}
			assignments[i] = best
		}

		// Recompute centroids as member means.  A centroid that lost all of
		// its members keeps its previous position.
		maxMove := 0.0
		for c := range centroids {
			sumLat, sumLng := 0.0, 0.0
			n := 0
			for i, p := range points {
				if assignments[i] == c {
					sumLat += p.Lat
					sumLng += p.Lng
					n++
				}
			}
			if n == 0 {
				continue
			}
			next := geo.Point{Lat: sumLat / float64(n), Lng: sumLng / float64(n)}
			move := math.Sqrt(geo.PlanarDistSq(centroids[c], next))
			if move > maxMove {
				maxMove = move
			}
			centroids[c] = next
		}

		if maxMove <= e.opts.Epsilon {
			converged = true
			break
		}
	}

	clusters := e.buildClusters(points, centroids, assignments)

	info.EffectiveK = len(clusters)
	info.Iterations = iterations
	info.Converged = converged
	e.logger.Debug("clustering run finished",
		logging.Int("points", len(points)),
		logging.Int("requested_k", info.RequestedK),
		logging.Int("effective_k", info.EffectiveK),
		logging.Int("iterations", iterations),
		logging.Bool("converged", converged),
	)
	return clusters, info, nil
}

// seedCentroids picks k evenly spaced points from the (lat,lng)-sorted point
// set.  No randomness: the identical strategy is mandated for every runtime
// implementing this contract.
func seedCentroids(points []geo.Point, k int) []geo.Point {
	sorted := make([]geo.Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Lat != sorted[j].Lat {
			return sorted[i].Lat < sorted[j].Lat
		}
		return sorted[i].Lng < sorted[j].Lng
	})

	centroids := make([]geo.Point, k)
	if k == 1 {
		centroids[0] = sorted[0]
		return centroids
	}
	n := len(sorted)
	for i := 0; i < k; i++ {
		idx := i * (n - 1) / (k - 1)
		centroids[i] = sorted[idx]
	}
	return centroids
}

// buildClusters derives the per-cluster summaries, drops clusters that ended
// the refinement with zero members, and sorts the result by center.
func (e *Engine) buildClusters(points []geo.Point, centroids []geo.Point, assignments []int) []Cluster {
	clusters := make([]Cluster, 0, len(centroids))

	for c, center := range centroids {
		var members []geo.Point
		for i, p := range points {
			if assignments[i] == c {
				members = append(members, p)
			}
		}
		if len(members) == 0 {
			continue
		}

		// The physical radius uses haversine, not the planar approximation
		// used during assignment, so it stays geographically meaningful.
		radius := 0.0
		prices := make([]float64, 0, len(members))
		for _, m := range members {
			if d := geo.HaversineKM(center, m); d > radius {
				radius = d
			}
			if m.Price != nil {
				prices = append(prices, *m.Price)
			}
		}

		effectiveRadius := math.Max(radius, e.opts.MinRadiusKM)
		density := float64(len(members)) / (math.Pi * effectiveRadius * effectiveRadius)

		var priceStats *PriceStats
		if len(prices) > 0 {
			priceStats = &PriceStats{
				Min:    stats.Min(prices),
				Max:    stats.Max(prices),
				Avg:    stats.Mean(prices),
				Median: stats.Median(prices),
			}
		}

		clusters = append(clusters, Cluster{
			Center:      center,
			Count:       len(members),
			Bounds:      geo.BoundsOf(members),
			RadiusKM:    radius,
			Density:     density,
			PriceStats:  priceStats,
			VisualLevel: visualLevel(len(members)),
		})
	}

	// Stable output ordering is exactly what cross-implementation
	// comparisons rely on when matching clusters index-by-index.
	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].Center.Lat != clusters[j].Center.Lat {
			return clusters[i].Center.Lat < clusters[j].Center.Lat
		}
		return clusters[i].Center.Lng < clusters[j].Center.Lng
	})
	for i := range clusters {
		clusters[i].ID = i + 1
	}
	return clusters
}

// visualLevel maps a member count onto the 1..5 rendering hint scale.
func visualLevel(count int) int {
	level := 1 + count/10
	if level > 5 {
		level = 5
	}
	return level
}
