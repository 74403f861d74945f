package charts

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"retailpulse/internal/analytics"
)

const (
	heatmapCellSize = 180
	heatmapMargin   = 70
)

// RenderCorrelationHeatmap writes the 2x2 correlation matrix as an
// annotated PNG heatmap with a diverging blue-white-red scale over
// [-1, 1]. Each cell is labeled with its coefficient.
func RenderCorrelationHeatmap(m *analytics.CorrelationMatrix, w io.Writer) error {
	if m == nil {
		return fmt.Errorf("no correlation matrix to plot")
	}

	size := 2*heatmapCellSize + 2*heatmapMargin
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	for row := 0; row < 2; row++ {
		for col := 0; col < 2; col++ {
			x0 := heatmapMargin + col*heatmapCellSize
			y0 := heatmapMargin + row*heatmapCellSize
			cell := image.Rect(x0, y0, x0+heatmapCellSize, y0+heatmapCellSize)

			value := m.Values[row][col]
			draw.Draw(img, cell, image.NewUniform(divergingColor(value)), image.Point{}, draw.Src)

			label := fmt.Sprintf("%.2f", value)
			drawCentered(img, label, x0+heatmapCellSize/2, y0+heatmapCellSize/2, labelColor(value))
		}
	}

	// Axis labels: columns along the top, rows down the left side.
	for i, name := range m.Columns {
		cx := heatmapMargin + i*heatmapCellSize + heatmapCellSize/2
		drawCentered(img, name, cx, heatmapMargin/2, color.Black)

		cy := heatmapMargin + i*heatmapCellSize + heatmapCellSize/2
		drawCentered(img, name, heatmapMargin/2, cy, color.Black)
	}

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode heatmap: %w", err)
	}
	return nil
}

// divergingColor maps a coefficient in [-1, 1] onto a blue-white-red
// scale: -1 is saturated blue, 0 is white, +1 is saturated red.
func divergingColor(v float64) color.RGBA {
	if math.IsNaN(v) {
		return color.RGBA{R: 200, G: 200, B: 200, A: 255}
	}
	v = math.Max(-1, math.Min(1, v))

	fade := uint8(255 * (1 - math.Abs(v)))
	if v >= 0 {
		return color.RGBA{R: 255, G: fade, B: fade, A: 255}
	}
	return color.RGBA{R: fade, G: fade, B: 255, A: 255}
}

// labelColor keeps cell annotations readable on saturated backgrounds.
func labelColor(v float64) color.Color {
	if math.Abs(v) > 0.6 {
		return color.White
	}
	return color.Black
}

// drawCentered renders text centered on (cx, cy) with the built-in face.
func drawCentered(img *image.RGBA, text string, cx, cy int, col color.Color) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot: fixed.P(
			cx-width/2,
			cy+face.Metrics().Ascent.Ceil()/2,
		),
	}
	d.DrawString(text)
}
