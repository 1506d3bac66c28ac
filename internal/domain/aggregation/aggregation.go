// Package aggregation produces city/district rollups of the property
// market.  It prefers precomputed statistics tables (the fast path) and
// falls back to on-the-fly aggregation from raw records when a filter
// requests dimensions the rollups do not cover (the slow path).  Both paths
// must yield numerically consistent results.
package aggregation

import "context"

// Filter selects the slice of the market to aggregate.  Empty fields mean
// "all".  A non-empty BuildingType forces the slow path because the
// precomputed rollups are not broken down by building type.
type Filter struct {
	City         string `json:"city,omitempty"`
	District     string `json:"district,omitempty"`
	BuildingType string `json:"building_type,omitempty"`
}

// PropertyRecord is one raw listing row as stored by the property store.
type PropertyRecord struct {
	City          string
	District      string
	BuildingType  string
	RentPerMonth  float64
	AreaPing      float64
	Lat           *float64
	Lng           *float64
	HasElevator   bool
	HasManagement bool
	HasFurniture  bool
}

// AggregatedDistrict is one district-level rollup row.
type AggregatedDistrict struct {
	City            string  `json:"city"`
	District        string  `json:"district"`
	PropertyCount   int     `json:"property_count"`
	AvgRentPerPing  float64 `json:"avg_rent_per_ping"`
	MinRentPerPing  float64 `json:"min_rent_per_ping"`
	MaxRentPerPing  float64 `json:"max_rent_per_ping"`
	AvgArea         float64 `json:"avg_area"`
	CenterLat       float64 `json:"center_lat"`
	CenterLng       float64 `json:"center_lng"`
	ElevatorRatio   float64 `json:"elevator_ratio"`
	ManagementRatio float64 `json:"management_ratio"`
	FurnitureRatio  float64 `json:"furniture_ratio"`
	HasCoordinates  bool    `json:"has_coordinates"`
}

// PropertyStore is the raw-record collaborator behind the slow path.
// Implementations must apply every field of the filter.
type PropertyStore interface {
	ListProperties(ctx context.Context, filter Filter) ([]PropertyRecord, error)
}

// RollupStore is the precomputed-statistics collaborator behind the fast
// path.  An empty city returns rollups for every city.
type RollupStore interface {
	DistrictRollups(ctx context.Context, city string) ([]AggregatedDistrict, error)
}

// cityAliases merges the two historically split city/county names whose
// records must be unioned under one canonical label.  This is a data-quality
// workaround kept in one place rather than scattered through business logic.
var cityAliases = map[string]string{
	"臺北縣": "新北市",
	"台北縣": "新北市",
	"桃園縣": "桃園市",
}

// CanonicalCity maps a possibly legacy city name onto its canonical form.
// Names without an alias entry pass through unchanged.
func CanonicalCity(city string) string {
	if canonical, ok := cityAliases[city]; ok {
		return canonical
	}
	return city
}
