package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rentscope/geointel/internal/domain/aggregation"
	"github.com/rentscope/geointel/internal/domain/geo"
	"github.com/rentscope/geointel/internal/infrastructure/monitoring/logging"
	"github.com/rentscope/geointel/pkg/errors"
)

// Store exposes the properties and district_rollups tables.  It satisfies
// both aggregation store interfaces and feeds the geometric engines with
// located, priced points.
type Store struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewStore constructs a Store over an existing pool.
func NewStore(pool *pgxpool.Pool, log logging.Logger) *Store {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Store{pool: pool, logger: log.Named("postgres")}
}

// ListProperties returns the raw rows matching the filter.
func (s *Store) ListProperties(ctx context.Context, filter aggregation.Filter) ([]aggregation.PropertyRecord, error) {
	query, args := propertyQuery(filter)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "querying properties")
	}
	defer rows.Close()

	var records []aggregation.PropertyRecord
	for rows.Next() {
		var r aggregation.PropertyRecord
		if err := rows.Scan(&r.City, &r.District, &r.BuildingType, &r.RentPerMonth, &r.AreaPing,
			&r.Lat, &r.Lng, &r.HasElevator, &r.HasManagement, &r.HasFurniture); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scanning property row")
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "iterating property rows")
	}
	return records, nil
}

// DistrictRollups returns the precomputed district statistics, optionally
// narrowed to one city.
func (s *Store) DistrictRollups(ctx context.Context, city string) ([]aggregation.AggregatedDistrict, error) {
	query, args := rollupQuery(city)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "querying district rollups")
	}
	defer rows.Close()

	var districts []aggregation.AggregatedDistrict
	for rows.Next() {
		var d aggregation.AggregatedDistrict
		if err := rows.Scan(&d.City, &d.District, &d.PropertyCount,
			&d.AvgRentPerPing, &d.MinRentPerPing, &d.MaxRentPerPing, &d.AvgArea,
			&d.CenterLat, &d.CenterLng,
			&d.ElevatorRatio, &d.ManagementRatio, &d.FurnitureRatio,
			&d.HasCoordinates); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scanning rollup row")
		}
		districts = append(districts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "iterating rollup rows")
	}
	return districts, nil
}

// ListPoints returns the located, priced points matching the filter, as
// consumed by the clustering and heatmap engines.
func (s *Store) ListPoints(ctx context.Context, filter aggregation.Filter) ([]geo.Point, error) {
	query, args := pointQuery(filter)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "querying points")
	}
	defer rows.Close()

	var points []geo.Point
	for rows.Next() {
		var p geo.Point
		if err := rows.Scan(&p.Lat, &p.Lng, &p.Price); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scanning point row")
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "iterating point rows")
	}
	return points, nil
}

// filterClauses builds the WHERE conditions shared by the property and point
// queries.  City names canonicalize before comparison so legacy labels keep
// matching after the alias fold.
func filterClauses(filter aggregation.Filter) ([]string, []interface{}) {
	var clauses []string
	var args []interface{}
	next := func() string { return fmt.Sprintf("$%d", len(args)) }

	if filter.City != "" {
		args = append(args, aggregation.CanonicalCity(filter.City))
		clauses = append(clauses, "city = "+next())
	}
	if filter.District != "" {
		args = append(args, filter.District)
		clauses = append(clauses, "district = "+next())
	}
	if filter.BuildingType != "" {
		args = append(args, filter.BuildingType)
		clauses = append(clauses, "building_type = "+next())
	}
	return clauses, args
}

func propertyQuery(filter aggregation.Filter) (string, []interface{}) {
	clauses, args := filterClauses(filter)
	query := `SELECT city, district, building_type, rent_per_month, area_ping,
	lat, lng, has_elevator, has_management, has_furniture
FROM properties`
	if len(clauses) > 0 {
		query += "\nWHERE " + strings.Join(clauses, " AND ")
	}
	return query, args
}

func pointQuery(filter aggregation.Filter) (string, []interface{}) {
	clauses, args := filterClauses(filter)
	clauses = append(clauses, "lat IS NOT NULL", "lng IS NOT NULL")
	query := `SELECT lat, lng, rent_per_month
FROM properties
WHERE ` + strings.Join(clauses, " AND ")
	return query, args
}

func rollupQuery(city string) (string, []interface{}) {
	query := `SELECT city, district, property_count,
	avg_rent_per_ping, min_rent_per_ping, max_rent_per_ping, avg_area,
	center_lat, center_lng,
	elevator_ratio, management_ratio, furniture_ratio,
	has_coordinates
FROM district_rollups`
	var args []interface{}
	if city != "" {
		args = append(args, city)
		query += "\nWHERE city = $1"
	}
	return query, args
}
