package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentscope/geointel/pkg/errors"
)

func TestPoint_Validate(t *testing.T) {
	tests := []struct {
		name    string
		p       Point
		wantErr bool
	}{
		{"Valid", Point{Lat: 25.033, Lng: 121.565}, false},
		{"Equator", Point{Lat: 0, Lng: 0}, false},
		{"LatTooHigh", Point{Lat: 90.1, Lng: 0}, true},
		{"LatTooLow", Point{Lat: -90.1, Lng: 0}, true},
		{"LngTooHigh", Point{Lat: 0, Lng: 180.1}, true},
		{"LngTooLow", Point{Lat: 0, Lng: -180.1}, true},
		{"NaNLat", Point{Lat: math.NaN(), Lng: 0}, true},
		{"InfLng", Point{Lat: 0, Lng: math.Inf(1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidGeoPoint))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPoint_Validate_NaNPrice(t *testing.T) {
	bad := math.NaN()
	err := Point{Lat: 25, Lng: 121, Price: &bad}.Validate()
	assert.Error(t, err)
}

func TestValidateAll(t *testing.T) {
	assert.NoError(t, ValidateAll(nil))
	assert.NoError(t, ValidateAll([]Point{{Lat: 25, Lng: 121}}))

	err := ValidateAll([]Point{{Lat: 25, Lng: 121}, {Lat: 91, Lng: 121}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index=1")
}

func TestBoundsOf(t *testing.T) {
	assert.Equal(t, Bounds{}, BoundsOf(nil))

	b := BoundsOf([]Point{
		{Lat: 25.01, Lng: 121.50},
		{Lat: 25.05, Lng: 121.58},
		{Lat: 24.99, Lng: 121.53},
	})
	assert.Equal(t, 25.05, b.North)
	assert.Equal(t, 24.99, b.South)
	assert.Equal(t, 121.58, b.East)
	assert.Equal(t, 121.50, b.West)
}

func TestHaversineKM(t *testing.T) {
	// identical points
	p := Point{Lat: 25.033, Lng: 121.565}
	assert.Equal(t, 0.0, HaversineKM(p, p))

	// one degree of latitude is roughly 111.2 km
	a := Point{Lat: 25, Lng: 121}
	b := Point{Lat: 26, Lng: 121}
	assert.InDelta(t, 111.2, HaversineKM(a, b), 0.5)

	// symmetric
	assert.Equal(t, HaversineKM(a, b), HaversineKM(b, a))
}

func TestPlanarDistSq(t *testing.T) {
	a := Point{Lat: 1, Lng: 2}
	b := Point{Lat: 4, Lng: 6}
	assert.Equal(t, 25.0, PlanarDistSq(a, b))
}
