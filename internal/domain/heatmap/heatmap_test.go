package heatmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentscope/geointel/internal/domain/geo"
)

func pricedPoint(lat, lng, price float64) geo.Point {
	return geo.Point{Lat: lat, Lng: lng, Price: &price}
}

func TestGenerate_EmptyInput(t *testing.T) {
	g := NewGenerator()

	cells, st, err := g.Generate(nil, ResolutionMedium)
	require.NoError(t, err)
	assert.Empty(t, cells)
	assert.Zero(t, st.Cells)
	assert.Zero(t, st.TotalPoints)
}

func TestGenerate_UnpricedPointsSkipped(t *testing.T) {
	g := NewGenerator()
	points := []geo.Point{
		{Lat: 25.03, Lng: 121.56}, // no price
		pricedPoint(25.03, 121.56, 25000),
	}

	cells, st, err := g.Generate(points, ResolutionMedium)
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, 1, st.TotalPoints)
	assert.Equal(t, 25000.0, cells[0].Weight)
}

func TestGenerate_CellAveraging(t *testing.T) {
	g := NewGenerator()
	// Both points land in the same 0.005° cell.
	points := []geo.Point{
		pricedPoint(25.0301, 121.5601, 20000),
		pricedPoint(25.0302, 121.5602, 30000),
	}

	cells, st, err := g.Generate(points, ResolutionMedium)
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, 25000.0, cells[0].Weight)
	assert.Equal(t, 2, cells[0].Count)
	assert.Equal(t, 2, st.TotalPoints)
}

func TestGenerate_IntensityNormalization(t *testing.T) {
	g := NewGenerator()
	// Three well-separated cells with distinct average prices.
	points := []geo.Point{
		pricedPoint(25.00, 121.50, 10000),
		pricedPoint(25.10, 121.60, 20000),
		pricedPoint(25.20, 121.70, 40000),
	}

	cells, st, err := g.Generate(points, ResolutionLow)
	require.NoError(t, err)
	require.Len(t, cells, 3)

	assert.Equal(t, 0.0, cells[0].Intensity)
	assert.InDelta(t, 1.0/3.0, cells[1].Intensity, 1e-12)
	assert.Equal(t, 1.0, cells[2].Intensity)

	assert.Equal(t, ColorGreen, cells[0].Color)
	assert.Equal(t, ColorGreen, cells[1].Color)
	assert.Equal(t, ColorRed, cells[2].Color)

	assert.Equal(t, 10000.0, st.MinWeight)
	assert.Equal(t, 40000.0, st.MaxWeight)
}

func TestGenerate_UniformPricesFullIntensity(t *testing.T) {
	g := NewGenerator()
	points := []geo.Point{
		pricedPoint(25.00, 121.50, 25000),
		pricedPoint(25.10, 121.60, 25000),
	}

	cells, _, err := g.Generate(points, ResolutionLow)
	require.NoError(t, err)
	for _, c := range cells {
		assert.Equal(t, 1.0, c.Intensity)
		assert.Equal(t, ColorRed, c.Color)
	}
}

func TestGenerate_ResolutionChangesCellCount(t *testing.T) {
	g := NewGenerator()
	// 0.004° apart: same cell at low resolution, separate cells at high.
	points := []geo.Point{
		pricedPoint(25.0301, 121.5601, 20000),
		pricedPoint(25.0341, 121.5601, 30000),
	}

	low, _, err := g.Generate(points, ResolutionLow)
	require.NoError(t, err)
	high, _, err := g.Generate(points, ResolutionHigh)
	require.NoError(t, err)

	assert.Len(t, low, 1)
	assert.Len(t, high, 2)
}

func TestGenerate_SortedOutput(t *testing.T) {
	g := NewGenerator()
	points := []geo.Point{
		pricedPoint(25.20, 121.70, 30000),
		pricedPoint(25.00, 121.50, 10000),
		pricedPoint(25.10, 121.60, 20000),
	}

	cells, _, err := g.Generate(points, ResolutionLow)
	require.NoError(t, err)
	for i := 1; i < len(cells); i++ {
		assert.LessOrEqual(t, cells[i-1].Lat, cells[i].Lat)
	}
}

func TestGenerate_InvalidPoint(t *testing.T) {
	g := NewGenerator()
	_, _, err := g.Generate([]geo.Point{{Lat: 99, Lng: 0}}, ResolutionMedium)
	assert.Error(t, err)
}

func TestColorFor(t *testing.T) {
	assert.Equal(t, ColorGreen, colorFor(0.0))
	assert.Equal(t, ColorGreen, colorFor(0.39))
	assert.Equal(t, ColorYellow, colorFor(0.4))
	assert.Equal(t, ColorYellow, colorFor(0.7))
	assert.Equal(t, ColorRed, colorFor(0.71))
}

func TestParseResolution(t *testing.T) {
	r, err := ParseResolution("")
	require.NoError(t, err)
	assert.Equal(t, ResolutionMedium, r)

	r, err = ParseResolution("high")
	require.NoError(t, err)
	assert.Equal(t, ResolutionHigh, r)

	_, err = ParseResolution("ultra")
	assert.Error(t, err)
}
