package aggregation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentscope/geointel/pkg/errors"
)

type fakeRollupStore struct {
	rows  []AggregatedDistrict
	err   error
	calls int
}

func (f *fakeRollupStore) DistrictRollups(_ context.Context, city string) ([]AggregatedDistrict, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if city == "" {
		return f.rows, nil
	}
	var out []AggregatedDistrict
	for _, r := range f.rows {
		if r.City == city {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakePropertyStore struct {
	records []PropertyRecord
	err     error
	calls   int
}

func (f *fakePropertyStore) ListProperties(_ context.Context, filter Filter) ([]PropertyRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []PropertyRecord
	for _, r := range f.records {
		if filter.City != "" && CanonicalCity(r.City) != filter.City {
			continue
		}
		if filter.District != "" && r.District != filter.District {
			continue
		}
		if filter.BuildingType != "" && r.BuildingType != filter.BuildingType {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func coord(v float64) *float64 { return &v }

func sampleRecords() []PropertyRecord {
	return []PropertyRecord{
		{City: "台北市", District: "大安區", BuildingType: "電梯大樓", RentPerMonth: 40000, AreaPing: 20,
			Lat: coord(25.026), Lng: coord(121.543), HasElevator: true, HasManagement: true},
		{City: "台北市", District: "大安區", BuildingType: "公寓", RentPerMonth: 24000, AreaPing: 16,
			Lat: coord(25.030), Lng: coord(121.547), HasFurniture: true},
		{City: "台北市", District: "萬華區", BuildingType: "套房", RentPerMonth: 9000, AreaPing: 6},
		// Legacy county label that must be folded into 新北市.
		{City: "臺北縣", District: "板橋區", BuildingType: "公寓", RentPerMonth: 18000, AreaPing: 15},
		{City: "新北市", District: "板橋區", BuildingType: "電梯大樓", RentPerMonth: 27000, AreaPing: 18, HasElevator: true},
	}
}

func TestCanonicalCity(t *testing.T) {
	assert.Equal(t, "新北市", CanonicalCity("臺北縣"))
	assert.Equal(t, "新北市", CanonicalCity("台北縣"))
	assert.Equal(t, "桃園市", CanonicalCity("桃園縣"))
	assert.Equal(t, "台北市", CanonicalCity("台北市"))
	assert.Equal(t, "", CanonicalCity(""))
}

func TestAggregate_RollupFastPath(t *testing.T) {
	rollups := &fakeRollupStore{rows: []AggregatedDistrict{
		{City: "台北市", District: "萬華區", PropertyCount: 12, AvgRentPerPing: 1400},
		{City: "台北市", District: "大安區", PropertyCount: 30, AvgRentPerPing: 2100},
	}}
	props := &fakePropertyStore{records: sampleRecords()}
	agg := NewAggregator(rollups, props, nil)

	res, err := agg.Aggregate(context.Background(), Filter{City: "台北市"})
	require.NoError(t, err)
	assert.Equal(t, PathRollup, res.Path)
	require.Len(t, res.Districts, 2)
	// Sorted by district regardless of store order.
	assert.Equal(t, "大安區", res.Districts[0].District)
	assert.Equal(t, "萬華區", res.Districts[1].District)
	assert.Zero(t, props.calls, "fast path must not touch the property store")
}

func TestAggregate_BuildingTypeForcesScan(t *testing.T) {
	rollups := &fakeRollupStore{}
	props := &fakePropertyStore{records: sampleRecords()}
	agg := NewAggregator(rollups, props, nil)

	res, err := agg.Aggregate(context.Background(), Filter{City: "台北市", BuildingType: "公寓"})
	require.NoError(t, err)
	assert.Equal(t, PathScan, res.Path)
	assert.Zero(t, rollups.calls)
	require.Len(t, res.Districts, 1)
	assert.Equal(t, "大安區", res.Districts[0].District)
	assert.Equal(t, 1, res.Districts[0].PropertyCount)
	assert.InDelta(t, 1500.0, res.Districts[0].AvgRentPerPing, 1e-9)
}

func TestAggregate_RollupFailureFallsBackToScan(t *testing.T) {
	rollups := &fakeRollupStore{err: errors.New(errors.ErrCodeDatabaseError, "connection refused")}
	props := &fakePropertyStore{records: sampleRecords()}
	agg := NewAggregator(rollups, props, nil)

	res, err := agg.Aggregate(context.Background(), Filter{City: "台北市"})
	require.NoError(t, err)
	assert.Equal(t, PathScan, res.Path)
	assert.Equal(t, 1, rollups.calls)
	assert.Equal(t, 1, props.calls)
	require.Len(t, res.Districts, 2)
}

func TestAggregate_ScanStatistics(t *testing.T) {
	agg := NewAggregator(nil, &fakePropertyStore{records: sampleRecords()}, nil)

	res, err := agg.Aggregate(context.Background(), Filter{City: "台北市", District: "大安區"})
	require.NoError(t, err)
	require.Len(t, res.Districts, 1)

	d := res.Districts[0]
	assert.Equal(t, 2, d.PropertyCount)
	// Per-ping rents are 2000 and 1500.
	assert.InDelta(t, 1750.0, d.AvgRentPerPing, 1e-9)
	assert.InDelta(t, 1500.0, d.MinRentPerPing, 1e-9)
	assert.InDelta(t, 2000.0, d.MaxRentPerPing, 1e-9)
	assert.InDelta(t, 18.0, d.AvgArea, 1e-9)
	assert.InDelta(t, 0.5, d.ElevatorRatio, 1e-9)
	assert.InDelta(t, 0.5, d.ManagementRatio, 1e-9)
	assert.InDelta(t, 0.5, d.FurnitureRatio, 1e-9)
	assert.True(t, d.HasCoordinates)
	assert.InDelta(t, 25.028, d.CenterLat, 1e-9)
}

func TestAggregate_LegacyCityFoldedIntoCanonical(t *testing.T) {
	agg := NewAggregator(nil, &fakePropertyStore{records: sampleRecords()}, nil)

	res, err := agg.Aggregate(context.Background(), Filter{City: "臺北縣"})
	require.NoError(t, err)
	require.Len(t, res.Districts, 1)

	d := res.Districts[0]
	assert.Equal(t, "新北市", d.City)
	assert.Equal(t, "板橋區", d.District)
	assert.Equal(t, 2, d.PropertyCount, "legacy and canonical rows must merge")
	assert.False(t, d.HasCoordinates)
}

func TestAggregate_CityTotalsMatchDistrictSums(t *testing.T) {
	agg := NewAggregator(nil, &fakePropertyStore{records: sampleRecords()}, nil)

	res, err := agg.Aggregate(context.Background(), Filter{})
	require.NoError(t, err)

	totals := CityTotals(res.Districts)
	assert.Equal(t, 3, totals["台北市"])
	assert.Equal(t, 2, totals["新北市"])

	sum := 0
	for _, d := range res.Districts {
		sum += d.PropertyCount
	}
	byCity := 0
	for _, n := range totals {
		byCity += n
	}
	assert.Equal(t, sum, byCity)
}

func TestAggregate_ZeroAreaRecordsSkipped(t *testing.T) {
	records := []PropertyRecord{
		{City: "台北市", District: "大安區", RentPerMonth: 20000, AreaPing: 0},
		{City: "台北市", District: "大安區", RentPerMonth: 30000, AreaPing: 15},
	}
	agg := NewAggregator(nil, &fakePropertyStore{records: records}, nil)

	res, err := agg.Aggregate(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, res.Districts, 1)
	assert.Equal(t, 1, res.Districts[0].PropertyCount)
	assert.InDelta(t, 2000.0, res.Districts[0].AvgRentPerPing, 1e-9)
}

func TestAggregate_EmptyMatchYieldsEmptySlice(t *testing.T) {
	agg := NewAggregator(nil, &fakePropertyStore{records: sampleRecords()}, nil)

	res, err := agg.Aggregate(context.Background(), Filter{City: "高雄市"})
	require.NoError(t, err)
	assert.Empty(t, res.Districts)
}

func TestAggregate_PropertyStoreErrorWrapped(t *testing.T) {
	props := &fakePropertyStore{err: errors.New(errors.ErrCodeDatabaseError, "timeout")}
	agg := NewAggregator(nil, props, nil)

	_, err := agg.Aggregate(context.Background(), Filter{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAggregationFailed))
}

func TestAggregate_NoStoresConfigured(t *testing.T) {
	agg := NewAggregator(nil, nil, nil)

	_, err := agg.Aggregate(context.Background(), Filter{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeStoreUnavailable))
}
