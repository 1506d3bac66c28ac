// Package geo defines the geographic primitives shared by the clustering,
// heatmap, and aggregation components: points, bounding envelopes, and
// great-circle distance.
package geo

import (
	"math"

	"github.com/rentscope/geointel/pkg/errors"
)

// EarthRadiusKM is the mean Earth radius used by the haversine formula.
const EarthRadiusKM = 6371.0

// Point is a geographic coordinate with an optional price weight.
// Price is a pointer so that "no price attached" is distinguishable from a
// zero price.
type Point struct {
	Lat   float64  `json:"lat"`
	Lng   float64  `json:"lng"`
	Price *float64 `json:"price,omitempty"`
}

// Validate checks that the point lies within the WGS84 coordinate domain and
// carries only finite values.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || math.IsNaN(p.Lng) || math.IsInf(p.Lng, 0) {
		return errors.InvalidGeoPoint("coordinates must be finite")
	}
	if p.Lat < -90 || p.Lat > 90 {
		return errors.Newf(errors.ErrCodeInvalidGeoPoint, "latitude %.6f out of range [-90, 90]", p.Lat)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return errors.Newf(errors.ErrCodeInvalidGeoPoint, "longitude %.6f out of range [-180, 180]", p.Lng)
	}
	if p.Price != nil && (math.IsNaN(*p.Price) || math.IsInf(*p.Price, 0)) {
		return errors.InvalidGeoPoint("price must be finite")
	}
	return nil
}

// ValidateAll validates every point in the slice and returns the first
// failure annotated with its index.  An empty slice is valid.
func ValidateAll(points []Point) error {
	for i, p := range points {
		if err := p.Validate(); err != nil {
			var ae *errors.AppError
			if e, ok := err.(*errors.AppError); ok {
				ae = e
			}
			if ae != nil {
				return ae.WithDetail(detailIndex(i))
			}
			return err
		}
	}
	return nil
}

func detailIndex(i int) string {
	// Avoid fmt for the hot validation path.
	const digits = "0123456789"
	if i == 0 {
		return "index=0"
	}
	var buf [24]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = digits[i%10]
		i /= 10
	}
	return "index=" + string(buf[pos:])
}

// Bounds is the standard {north,south,east,west} envelope in degrees with
// north > south and east > west for any non-degenerate extent.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// BoundsOf computes the bounding envelope of points.  The zero Bounds is
// returned for an empty slice.
func BoundsOf(points []Point) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	b := Bounds{
		North: points[0].Lat,
		South: points[0].Lat,
		East:  points[0].Lng,
		West:  points[0].Lng,
	}
	for _, p := range points[1:] {
		if p.Lat > b.North {
			b.North = p.Lat
		}
		if p.Lat < b.South {
			b.South = p.Lat
		}
		if p.Lng > b.East {
			b.East = p.Lng
		}
		if p.Lng < b.West {
			b.West = p.Lng
		}
	}
	return b
}

// HaversineKM returns the great-circle distance between two points in
// kilometres.  The final physical radius of a cluster uses this, not the
// planar approximation used during centroid assignment, so the reported
// radius stays geographically meaningful.
func HaversineKM(a, b Point) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(latA)*math.Cos(latB)*sinLng*sinLng
	return 2 * EarthRadiusKM * math.Asin(math.Min(1, math.Sqrt(h)))
}

// PlanarDistSq returns the squared Euclidean distance in degree space.
// Small geographic extents make the planar approximation acceptable for
// nearest-centroid assignment; it is never reported to callers.
func PlanarDistSq(a, b Point) float64 {
	dLat := a.Lat - b.Lat
	dLng := a.Lng - b.Lng
	return dLat*dLat + dLng*dLng
}
