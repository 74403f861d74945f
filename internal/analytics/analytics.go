// Package analytics derives the dashboard aggregates from a normalized
// dataset: the monthly sales trend, per-region sales totals, the
// profit/discount correlation matrix and the column-info summary.
//
// Every computation validates its own required columns so one missing
// column degrades a single view to a warning without touching the others.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat"

	"retailpulse/internal/dataset"
)

// MonthlyPoint is one month on the sales trend line.
type MonthlyPoint struct {
	Label string  `json:"month_year"`
	Sales float64 `json:"sales"`
}

// RegionPoint is one bar of the regional sales chart.
type RegionPoint struct {
	Region string  `json:"region"`
	Sales  float64 `json:"sales"`
}

// CorrelationMatrix is the 2x2 Pearson matrix over profit and discount.
type CorrelationMatrix struct {
	Columns [2]string     `json:"columns"`
	Values  [2][2]float64 `json:"values"`
	Pairs   int           `json:"pairs"`
}

// ColumnSummary describes one normalized column for the data-summary pane.
type ColumnSummary struct {
	Name    string `json:"column"`
	Type    string `json:"data_type"`
	Missing int    `json:"missing_values"`
	Unique  int    `json:"unique_values"`
}

// MissingColumnsError reports the columns a computation needs but the
// dataset lacks.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("dataset is missing required columns: %v", e.Columns)
}

// requireColumns returns a MissingColumnsError when any required column is
// absent from the dataset.
func requireColumns(ds *dataset.Dataset, required ...string) error {
	if missing := ds.MissingColumns(required...); len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}
	return nil
}

// ViewWarnings reports which chart views cannot render for this dataset,
// naming the columns each one is missing. A fully-populated dataset yields
// no warnings.
func ViewWarnings(ds *dataset.Dataset) []string {
	views := []struct {
		name     string
		required []string
	}{
		{"monthly sales", []string{dataset.ColMonthYear, dataset.ColSales}},
		{"region sales", []string{dataset.ColRegion, dataset.ColSales}},
		{"profit/discount correlation", []string{dataset.ColProfit, dataset.ColDiscount}},
	}

	var warnings []string
	for _, v := range views {
		if missing := ds.MissingColumns(v.required...); len(missing) > 0 {
			warnings = append(warnings, fmt.Sprintf("%s unavailable: missing columns %s",
				v.name, strings.Join(missing, ", ")))
		}
	}
	return warnings
}

// MonthlySales groups sales by month_year and sums them, ordered by the
// underlying calendar month. Rows with a null date or null sales are left
// out of the trend; they remain in the dataset.
func MonthlySales(ds *dataset.Dataset) ([]MonthlyPoint, error) {
	if err := requireColumns(ds, dataset.ColMonthYear, dataset.ColSales); err != nil {
		return nil, err
	}

	grouped, err := groupSum(ds, dataset.ColMonthYear)
	if err != nil {
		return nil, err
	}

	points := make([]MonthlyPoint, 0, len(grouped))
	for label, sum := range grouped {
		points = append(points, MonthlyPoint{Label: label, Sales: sum})
	}
	sort.Slice(points, func(i, j int) bool {
		ti, ei := time.Parse(dataset.MonthYearLayout, points[i].Label)
		tj, ej := time.Parse(dataset.MonthYearLayout, points[j].Label)
		if ei != nil || ej != nil {
			return points[i].Label < points[j].Label
		}
		return ti.Before(tj)
	})
	return points, nil
}

// RegionSales groups sales by region and sums them, ordered by region name.
func RegionSales(ds *dataset.Dataset) ([]RegionPoint, error) {
	if err := requireColumns(ds, dataset.ColRegion, dataset.ColSales); err != nil {
		return nil, err
	}

	grouped, err := groupSum(ds, dataset.ColRegion)
	if err != nil {
		return nil, err
	}

	points := make([]RegionPoint, 0, len(grouped))
	for region, sum := range grouped {
		points = append(points, RegionPoint{Region: region, Sales: sum})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Region < points[j].Region
	})
	return points, nil
}

// groupSum sums the sales column per distinct key value using the frame's
// grouping, after dropping rows whose key or sales value is null (a NaN in
// an aggregation would poison the whole group).
func groupSum(ds *dataset.Dataset, keyCol string) (map[string]float64, error) {
	keys, err := ds.StringColumn(keyCol)
	if err != nil {
		return nil, err
	}
	sales, err := ds.FloatColumn(dataset.ColSales)
	if err != nil {
		return nil, err
	}

	var complete []int
	for i := range keys {
		if keys[i] != "" && !math.IsNaN(sales[i]) {
			complete = append(complete, i)
		}
	}
	if len(complete) == 0 {
		return map[string]float64{}, nil
	}

	clean := ds.Frame().Subset(complete)
	if clean.Error() != nil {
		return nil, fmt.Errorf("failed to project complete rows: %w", clean.Error())
	}

	agg := clean.GroupBy(keyCol).Aggregation(
		[]dataframe.AggregationType{dataframe.Aggregation_SUM},
		[]string{dataset.ColSales},
	)
	if agg.Error() != nil {
		return nil, fmt.Errorf("aggregation failed: %w", agg.Error())
	}

	labels := agg.Col(keyCol).Records()
	sums := agg.Col(dataset.ColSales + "_SUM").Float()

	grouped := make(map[string]float64, len(labels))
	for i, label := range labels {
		grouped[label] = sums[i]
	}
	return grouped, nil
}

// ProfitDiscountCorrelation computes the 2x2 Pearson correlation matrix
// over rows where both profit and discount are non-null. At least two
// complete pairs are required.
func ProfitDiscountCorrelation(ds *dataset.Dataset) (*CorrelationMatrix, error) {
	if err := requireColumns(ds, dataset.ColProfit, dataset.ColDiscount); err != nil {
		return nil, err
	}

	profit, err := ds.FloatColumn(dataset.ColProfit)
	if err != nil {
		return nil, err
	}
	discount, err := ds.FloatColumn(dataset.ColDiscount)
	if err != nil {
		return nil, err
	}

	var xs, ys []float64
	for i := range profit {
		if !math.IsNaN(profit[i]) && !math.IsNaN(discount[i]) {
			xs = append(xs, profit[i])
			ys = append(ys, discount[i])
		}
	}
	if len(xs) < 2 {
		return nil, fmt.Errorf("correlation needs at least 2 complete profit/discount pairs, got %d", len(xs))
	}

	r := stat.Correlation(xs, ys, nil)
	return &CorrelationMatrix{
		Columns: [2]string{dataset.ColProfit, dataset.ColDiscount},
		Values: [2][2]float64{
			{1, r},
			{r, 1},
		},
		Pairs: len(xs),
	}, nil
}

// ColumnInfo summarizes every column: declared type, null count and
// distinct non-null value count. Nulls are NaN in numeric columns and
// empty strings elsewhere.
func ColumnInfo(ds *dataset.Dataset) []ColumnSummary {
	df := ds.Frame()
	names := df.Names()
	types := df.Types()

	summaries := make([]ColumnSummary, 0, len(names))
	for j, name := range names {
		summary := ColumnSummary{Name: name, Type: string(types[j])}

		if types[j] == series.Float {
			for _, v := range df.Col(name).Float() {
				if math.IsNaN(v) {
					summary.Missing++
				}
			}
			distinct := make(map[float64]bool)
			for _, v := range df.Col(name).Float() {
				if !math.IsNaN(v) {
					distinct[v] = true
				}
			}
			summary.Unique = len(distinct)
		} else {
			distinct := make(map[string]bool)
			for _, v := range df.Col(name).Records() {
				if v == "" {
					summary.Missing++
					continue
				}
				distinct[v] = true
			}
			summary.Unique = len(distinct)
		}

		summaries = append(summaries, summary)
	}
	return summaries
}
