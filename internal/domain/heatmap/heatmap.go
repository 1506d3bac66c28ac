// Package heatmap converts priced geographic points into weighted intensity
// cells on a resolution-dependent spatial grid.  Colors and thresholds are
// presentation hints for the map layer, not business rules.
package heatmap

import (
	"math"
	"sort"

	"github.com/rentscope/geointel/internal/domain/geo"
	"github.com/rentscope/geointel/internal/domain/stats"
	"github.com/rentscope/geointel/pkg/errors"
)

// Resolution selects the grid cell size.
type Resolution string

const (
	ResolutionLow    Resolution = "low"
	ResolutionMedium Resolution = "medium"
	ResolutionHigh   Resolution = "high"
)

// cellSizeDeg maps each resolution to its grid cell edge in degrees.
var cellSizeDeg = map[Resolution]float64{
	ResolutionLow:    0.01,
	ResolutionMedium: 0.005,
	ResolutionHigh:   0.0025,
}

// Intensity color tiers.
const (
	ColorGreen  = "green"  // intensity < 0.4
	ColorYellow = "yellow" // 0.4 ≤ intensity ≤ 0.7
	ColorRed    = "red"    // intensity > 0.7
)

// Cell is one aggregated grid cell.  Weight is the average price of the
// member points; Intensity is Weight normalized into [0,1] relative to the
// min/max observed in the same result set.
type Cell struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Weight    float64 `json:"weight"`
	Intensity float64 `json:"intensity"`
	Color     string  `json:"color"`
	Count     int     `json:"count"`
}

// Statistics summarises a generated heatmap.
type Statistics struct {
	Cells       int     `json:"cells"`
	TotalPoints int     `json:"total_points"`
	MinWeight   float64 `json:"min_weight"`
	MaxWeight   float64 `json:"max_weight"`
	MeanWeight  float64 `json:"mean_weight"`
}

// Generator builds heatmaps.  It is stateless and safe for concurrent use.
type Generator struct{}

// NewGenerator constructs a Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate groups priced points into grid cells at the given resolution.
// Points without a price are skipped; an empty or fully unpriced input
// yields an empty cell list and zero statistics, never an error.  An
// unrecognised resolution falls back to medium.  Cells are sorted by
// latitude then longitude so repeated calls are reproducible.
func (g *Generator) Generate(points []geo.Point, resolution Resolution) ([]Cell, Statistics, error) {
	if err := geo.ValidateAll(points); err != nil {
		return nil, Statistics{}, err
	}

	cell, ok := cellSizeDeg[resolution]
	if !ok {
		cell = cellSizeDeg[ResolutionMedium]
	}

	type bucket struct {
		sum   float64
		count int
	}
	type cellKey struct {
		ix, iy int
	}

	buckets := map[cellKey]*bucket{}
	total := 0
	for _, p := range points {
		if p.Price == nil {
			continue
		}
		key := cellKey{
			ix: int(math.Floor(p.Lng / cell)),
			iy: int(math.Floor(p.Lat / cell)),
		}
		b := buckets[key]
		if b == nil {
			b = &bucket{}
			buckets[key] = b
		}
		b.sum += *p.Price
		b.count++
		total++
	}

	if len(buckets) == 0 {
		return []Cell{}, Statistics{}, nil
	}

	cells := make([]Cell, 0, len(buckets))
	weights := make([]float64, 0, len(buckets))
	for key, b := range buckets {
		avg := b.sum / float64(b.count)
		cells = append(cells, Cell{
			Lat:    (float64(key.iy) + 0.5) * cell,
			Lng:    (float64(key.ix) + 0.5) * cell,
			Weight: avg,
			Count:  b.count,
		})
		weights = append(weights, avg)
	}

	minW, maxW := stats.Min(weights), stats.Max(weights)
	span := maxW - minW
	for i := range cells {
		if span == 0 {
			// A single observed price level carries full intensity.
			cells[i].Intensity = 1.0
		} else {
			cells[i].Intensity = (cells[i].Weight - minW) / span
		}
		cells[i].Color = colorFor(cells[i].Intensity)
	}

	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Lat != cells[j].Lat {
			return cells[i].Lat < cells[j].Lat
		}
		return cells[i].Lng < cells[j].Lng
	})

	return cells, Statistics{
		Cells:       len(cells),
		TotalPoints: total,
		MinWeight:   minW,
		MaxWeight:   maxW,
		MeanWeight:  stats.Mean(weights),
	}, nil
}

// colorFor maps a normalized intensity onto the three-tier palette.
func colorFor(intensity float64) string {
	switch {
	case intensity < 0.4:
		return ColorGreen
	case intensity <= 0.7:
		return ColorYellow
	default:
		return ColorRed
	}
}

// ParseResolution validates a caller-supplied resolution string.  The empty
// string defaults to medium; anything else unrecognised is an error so the
// interface layer can reject typos instead of silently degrading.
func ParseResolution(s string) (Resolution, error) {
	switch Resolution(s) {
	case ResolutionLow, ResolutionMedium, ResolutionHigh:
		return Resolution(s), nil
	case "":
		return ResolutionMedium, nil
	default:
		return "", errors.Newf(errors.ErrCodeBadRequest, "unknown heatmap resolution %q", s)
	}
}
