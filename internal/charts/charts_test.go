package charts

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/internal/analytics"
)

var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47}

func TestRenderMonthlySales(t *testing.T) {
	points := []analytics.MonthlyPoint{
		{Label: "Jan-2024", Sales: 120},
		{Label: "Feb-2024", Sales: 95},
		{Label: "Mar-2024", Sales: 160},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderMonthlySales(points, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestRenderMonthlySales_Empty(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, RenderMonthlySales(nil, &buf))
}

func TestRenderRegionSales(t *testing.T) {
	points := []analytics.RegionPoint{
		{Region: "North", Sales: 300},
		{Region: "South", Sales: 120},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderRegionSales(points, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestRenderCorrelationHeatmap(t *testing.T) {
	matrix := &analytics.CorrelationMatrix{
		Columns: [2]string{"profit", "discount"},
		Values:  [2][2]float64{{1, -0.42}, {-0.42, 1}},
		Pairs:   10,
	}

	var buf bytes.Buffer
	require.NoError(t, RenderCorrelationHeatmap(matrix, &buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	bounds := img.Bounds()
	assert.Equal(t, 2*heatmapCellSize+2*heatmapMargin, bounds.Dx())
	assert.Equal(t, bounds.Dx(), bounds.Dy())
}

func TestRenderCorrelationHeatmap_Nil(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, RenderCorrelationHeatmap(nil, &buf))
}

func TestDivergingColor(t *testing.T) {
	assert.Equal(t, uint8(255), divergingColor(1).R)
	assert.Equal(t, uint8(0), divergingColor(1).G)

	neutral := divergingColor(0)
	assert.Equal(t, uint8(255), neutral.R)
	assert.Equal(t, uint8(255), neutral.G)
	assert.Equal(t, uint8(255), neutral.B)

	cold := divergingColor(-1)
	assert.Equal(t, uint8(0), cold.R)
	assert.Equal(t, uint8(255), cold.B)
}
