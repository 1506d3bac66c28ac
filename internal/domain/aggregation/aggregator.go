package aggregation

import (
	"context"
	"sort"

	"github.com/rentscope/geointel/internal/infrastructure/monitoring/logging"
	"github.com/rentscope/geointel/pkg/errors"
)

// Path labels which aggregation path served a request.  Exposed so the
// caller can record it in metrics and responses.
type Path string

const (
	PathRollup Path = "rollup"
	PathScan   Path = "scan"
)

// Result is one aggregation response: the district rows plus which path
// produced them.
type Result struct {
	Districts []AggregatedDistrict `json:"districts"`
	Path      Path                 `json:"path"`
}

// Aggregator answers market rollup queries.  It consults the rollup store
// whenever the filter only constrains city and district, and scans raw
// property records otherwise or when the rollup store fails.
type Aggregator struct {
	rollups    RollupStore
	properties PropertyStore
	logger     logging.Logger
}

// NewAggregator constructs an Aggregator.  rollups may be nil, in which case
// every query takes the scan path.
func NewAggregator(rollups RollupStore, properties PropertyStore, log logging.Logger) *Aggregator {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Aggregator{rollups: rollups, properties: properties, logger: log.Named("aggregation")}
}

// Aggregate resolves the filter to district rollups.  City names are
// canonicalized before any store lookup, so legacy labels hit the same rows
// as their modern spelling.  District rows come back sorted by city then
// district; a filter matching nothing yields an empty slice, not an error.
func (a *Aggregator) Aggregate(ctx context.Context, filter Filter) (Result, error) {
	filter.City = CanonicalCity(filter.City)

	if a.rollups != nil && filter.BuildingType == "" {
		districts, err := a.rollups.DistrictRollups(ctx, filter.City)
		if err == nil {
			return Result{Districts: filterDistricts(districts, filter), Path: PathRollup}, nil
		}
		// A broken rollup store degrades to the scan path rather than
		// failing the request.
		a.logger.Warn("rollup store failed, falling back to property scan",
			logging.String("city", filter.City),
			logging.Err(err),
		)
	}

	districts, err := a.scan(ctx, filter)
	if err != nil {
		return Result{}, err
	}
	return Result{Districts: districts, Path: PathScan}, nil
}

// CityTotals sums district rows into per-city totals.  Because the totals
// are derived from the very rows being returned, the sum-of-districts
// invariant holds by construction.
func CityTotals(districts []AggregatedDistrict) map[string]int {
	totals := make(map[string]int, 8)
	for _, d := range districts {
		totals[d.City] += d.PropertyCount
	}
	return totals
}

// scan aggregates raw property records grouped by (city, district).
func (a *Aggregator) scan(ctx context.Context, filter Filter) ([]AggregatedDistrict, error) {
	if a.properties == nil {
		return nil, errors.New(errors.ErrCodeStoreUnavailable, "no property store configured")
	}
	records, err := a.properties.ListProperties(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAggregationFailed, "listing properties for aggregation")
	}

	type accumulator struct {
		count                        int
		rentSum, rentMin, rentMax    float64
		areaSum                      float64
		latSum, lngSum               float64
		located                      int
		elevator, managed, furnished int
	}
	type groupKey struct {
		city, district string
	}

	groups := map[groupKey]*accumulator{}
	for _, r := range records {
		if r.AreaPing <= 0 {
			continue
		}
		key := groupKey{city: CanonicalCity(r.City), district: r.District}
		acc := groups[key]
		if acc == nil {
			acc = &accumulator{}
			groups[key] = acc
		}

		perPing := r.RentPerMonth / r.AreaPing
		if acc.count == 0 || perPing < acc.rentMin {
			acc.rentMin = perPing
		}
		if acc.count == 0 || perPing > acc.rentMax {
			acc.rentMax = perPing
		}
		acc.rentSum += perPing
		acc.areaSum += r.AreaPing
		acc.count++

		if r.Lat != nil && r.Lng != nil {
			acc.latSum += *r.Lat
			acc.lngSum += *r.Lng
			acc.located++
		}
		if r.HasElevator {
			acc.elevator++
		}
		if r.HasManagement {
			acc.managed++
		}
		if r.HasFurniture {
			acc.furnished++
		}
	}

	districts := make([]AggregatedDistrict, 0, len(groups))
	for key, acc := range groups {
		n := float64(acc.count)
		row := AggregatedDistrict{
			City:            key.city,
			District:        key.district,
			PropertyCount:   acc.count,
			AvgRentPerPing:  acc.rentSum / n,
			MinRentPerPing:  acc.rentMin,
			MaxRentPerPing:  acc.rentMax,
			AvgArea:         acc.areaSum / n,
			ElevatorRatio:   float64(acc.elevator) / n,
			ManagementRatio: float64(acc.managed) / n,
			FurnitureRatio:  float64(acc.furnished) / n,
		}
		if acc.located > 0 {
			row.CenterLat = acc.latSum / float64(acc.located)
			row.CenterLng = acc.lngSum / float64(acc.located)
			row.HasCoordinates = true
		}
		districts = append(districts, row)
	}

	sortDistricts(districts)
	return districts, nil
}

// filterDistricts narrows rollup rows to the filter and restores the sorted
// ordering the rollup store may not guarantee.
func filterDistricts(districts []AggregatedDistrict, filter Filter) []AggregatedDistrict {
	out := make([]AggregatedDistrict, 0, len(districts))
	for _, d := range districts {
		d.City = CanonicalCity(d.City)
		if filter.City != "" && d.City != filter.City {
			continue
		}
		if filter.District != "" && d.District != filter.District {
			continue
		}
		out = append(out, d)
	}
	sortDistricts(out)
	return out
}

func sortDistricts(districts []AggregatedDistrict) {
	sort.Slice(districts, func(i, j int) bool {
		if districts[i].City != districts[j].City {
			return districts[i].City < districts[j].City
		}
		return districts[i].District < districts[j].District
	})
}
