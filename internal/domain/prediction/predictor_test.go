package prediction

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentscope/geointel/internal/domain/feature"
	"github.com/rentscope/geointel/pkg/errors"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

// Golden fixtures: every expected value below is derived by hand from the
// model table in model.go.  A second-runtime implementation of the same
// model must reproduce these within 5 currency units and 0.05 confidence.
func TestPredict_GoldenFixtures(t *testing.T) {
	p := NewPredictor()

	tests := []struct {
		name           string
		f              *feature.PropertyFeature
		wantPrice      float64
		wantConfidence float64
		wantMin        float64
		wantMax        float64
	}{
		{
			name: "DaanTwoRoomApartment",
			f: &feature.PropertyFeature{
				AreaPing:     25,
				District:     "大安區",
				BuildingType: "住宅大樓",
				Rooms:        intPtr(2),
				RoomType:     "2-room",
				AgeYears:     intPtr(4),
				SafetyScore:  floatPtr(85),
			},
			wantPrice:      55200,
			wantConfidence: 0.74,
			wantMin:        50177,
			wantMax:        60223,
		},
		{
			name: "UnknownDistrictBareFeature",
			f: &feature.PropertyFeature{
				AreaPing: 10,
				District: "虛構區",
			},
			wantPrice:      23000,
			wantConfidence: 0.40,
			wantMin:        18170,
			wantMax:        27830,
		},
		{
			name: "TinyOldSuiteWanhua",
			f: &feature.PropertyFeature{
				AreaPing:     5,
				District:     "萬華區",
				BuildingType: "套房",
				Floor:        intPtr(3),
				AgeYears:     intPtr(35),
			},
			wantPrice:      10210,
			wantConfidence: 0.48,
			wantMin:        8352,
			wantMax:        12068,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Predict(tt.f)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrice, got.Price)
			assert.InDelta(t, tt.wantConfidence, got.Confidence, 1e-9)
			assert.Equal(t, tt.wantMin, got.Range.Min)
			assert.Equal(t, tt.wantMax, got.Range.Max)
			assert.Equal(t, ModelVersion, got.ModelVersion)
		})
	}
}

func TestPredict_RangeAndConfidenceInvariants(t *testing.T) {
	p := NewPredictor()

	districts := []string{"大安區", "信義區", "萬華區", "外太空區"}
	areas := []float64{3, 8, 15, 25, 60, 100, 180}
	ages := []*int{nil, intPtr(0), intPtr(10), intPtr(45)}

	for _, d := range districts {
		for _, a := range areas {
			for _, age := range ages {
				f := &feature.PropertyFeature{AreaPing: a, District: d, AgeYears: age}
				got, err := p.Predict(f)
				require.NoError(t, err)

				assert.GreaterOrEqual(t, got.Confidence, 0.0)
				assert.LessOrEqual(t, got.Confidence, 1.0)
				assert.LessOrEqual(t, got.Range.Min, got.Price)
				assert.GreaterOrEqual(t, got.Range.Max, got.Price)
			}
		}
	}
}

func TestPredict_BreakdownSumsToPrice(t *testing.T) {
	p := NewPredictor()
	f := &feature.PropertyFeature{
		AreaPing:        25,
		District:        "信義區",
		BuildingType:    "電梯大樓",
		Rooms:           intPtr(3),
		RoomType:        "3-room",
		Floor:           intPtr(12),
		AgeYears:        intPtr(8),
		TransportAccess: []string{"MRT", "bus"},
		Facilities:      []string{"elevator", "gym", "laundry"},
		SafetyScore:     floatPtr(72),
	}

	got, err := p.Predict(f)
	require.NoError(t, err)

	sum := 0.0
	for _, fc := range got.Breakdown {
		sum += fc.Amount
	}
	// The breakdown sums to the pre-rounding price.
	assert.InDelta(t, got.Price, sum, 0.5)

	// The factor order is part of the contract.
	wantOrder := []string{"base", "area", "district", "building_type", "rooms",
		"floor", "age", "transport", "facilities", "safety"}
	require.Len(t, got.Breakdown, len(wantOrder))
	for i, fc := range got.Breakdown {
		assert.Equal(t, wantOrder[i], fc.Factor)
	}
}

func TestPredict_Deterministic(t *testing.T) {
	p := NewPredictor()
	f := &feature.PropertyFeature{
		AreaPing:    30,
		District:    "中山區",
		Rooms:       intPtr(2),
		RoomType:    "2-room",
		SafetyScore: floatPtr(60),
	}

	a, err := p.Predict(f)
	require.NoError(t, err)
	b, err := p.Predict(f)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPredict_InvalidInput(t *testing.T) {
	p := NewPredictor()

	t.Run("NilFeature", func(t *testing.T) {
		_, err := p.Predict(nil)
		assert.True(t, errors.IsValidation(err))
	})

	t.Run("NegativeArea", func(t *testing.T) {
		_, err := p.Predict(&feature.PropertyFeature{AreaPing: -1, District: "大安區"})
		assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArea))
	})

	t.Run("NaNArea", func(t *testing.T) {
		_, err := p.Predict(&feature.PropertyFeature{AreaPing: math.NaN(), District: "大安區"})
		assert.True(t, errors.IsCode(err, errors.ErrCodeNonFiniteInput))
	})

	t.Run("NaNSafety", func(t *testing.T) {
		bad := math.NaN()
		_, err := p.Predict(&feature.PropertyFeature{AreaPing: 20, District: "大安區", SafetyScore: &bad})
		assert.True(t, errors.IsCode(err, errors.ErrCodeNonFiniteInput))
	})
}

func TestPredict_MissingOptionalsNeverFail(t *testing.T) {
	p := NewPredictor()
	got, err := p.Predict(&feature.PropertyFeature{AreaPing: 20, District: "大安區"})
	require.NoError(t, err)
	assert.Positive(t, got.Price)
}

func TestPredictBatch(t *testing.T) {
	p := NewPredictor()
	features := []*feature.PropertyFeature{
		{AreaPing: 20, District: "大安區"},
		{AreaPing: 15, District: "萬華區"},
	}

	preds, err := p.PredictBatch(features)
	require.NoError(t, err)
	assert.Len(t, preds, 2)

	t.Run("InvalidItemAborts", func(t *testing.T) {
		_, err := p.PredictBatch(append(features, &feature.PropertyFeature{AreaPing: 0}))
		assert.Error(t, err)
	})
}

func TestSummarize(t *testing.T) {
	p := NewPredictor()
	features := []*feature.PropertyFeature{
		{AreaPing: 10, District: "大安區"},
		{AreaPing: 20, District: "大安區", Rooms: intPtr(2), RoomType: "2-room"},
		{AreaPing: 30, District: "萬華區", BuildingType: "公寓"},
	}
	preds, err := p.PredictBatch(features)
	require.NoError(t, err)

	s := Summarize(preds)
	assert.Equal(t, 3, s.Count)
	assert.Positive(t, s.AveragePrice)
	assert.Positive(t, s.MedianPrice)
	assert.GreaterOrEqual(t, s.MaxPrice, s.MinPrice)
	assert.Len(t, s.ConfidenceDistribution, 4)
	assert.Contains(t, s.ConfidencePercentiles, "p90")
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Count)
	assert.Zero(t, s.AveragePrice)
	assert.Equal(t, map[string]float64{"p50": 0.0, "p75": 0.0, "p90": 0.0}, s.ConfidencePercentiles)
	assert.Len(t, s.ConfidenceDistribution, 4)
}
