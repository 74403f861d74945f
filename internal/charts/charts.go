// Package charts renders the dashboard visualizations as PNG images:
// the monthly sales trend line, the per-region sales bars and the
// profit/discount correlation heatmap.
package charts

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"retailpulse/internal/analytics"
)

const (
	chartWidth  = 900
	chartHeight = 480
)

var (
	seriesColor = drawing.Color{R: 31, G: 119, B: 180, A: 255}
	fillColor   = drawing.Color{R: 31, G: 119, B: 180, A: 60}
)

// RenderMonthlySales writes the monthly sales trend as a PNG line chart.
// Points arrive already ordered by calendar month.
func RenderMonthlySales(points []analytics.MonthlyPoint, w io.Writer) error {
	if len(points) == 0 {
		return fmt.Errorf("no monthly sales data to plot")
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	ticks := make([]chart.Tick, len(points))
	for i, p := range points {
		xs[i] = float64(i)
		ys[i] = p.Sales
		ticks[i] = chart.Tick{Value: float64(i), Label: p.Label}
	}

	graph := chart.Chart{
		Title:  "Monthly Sales Trend",
		Width:  chartWidth,
		Height: chartHeight,
		XAxis: chart.XAxis{
			Ticks: ticks,
			TickStyle: chart.Style{
				TextRotationDegrees: 45,
			},
		},
		YAxis: chart.YAxis{
			Name: "Sales",
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Style: chart.Style{
					StrokeColor: seriesColor,
					StrokeWidth: 2.5,
					FillColor:   fillColor,
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render monthly sales chart: %w", err)
	}
	return nil
}

// RenderRegionSales writes per-region sales totals as a PNG bar chart.
func RenderRegionSales(points []analytics.RegionPoint, w io.Writer) error {
	if len(points) == 0 {
		return fmt.Errorf("no regional sales data to plot")
	}

	bars := make([]chart.Value, len(points))
	for i, p := range points {
		bars[i] = chart.Value{
			Label: p.Region,
			Value: p.Sales,
			Style: chart.Style{
				StrokeColor: seriesColor,
				FillColor:   seriesColor,
			},
		}
	}

	graph := chart.BarChart{
		Title:    "Sales by Region",
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: 60,
		XAxis: chart.Style{
			TextRotationDegrees: 0,
		},
		YAxis: chart.YAxis{
			Name: "Sales",
		},
		Bars: bars,
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render region sales chart: %w", err)
	}
	return nil
}
