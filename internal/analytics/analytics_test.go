package analytics

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/internal/dataset"
)

func loadCSV(t *testing.T, content string) *dataset.Dataset {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	ds, err := dataset.NewLoader(nil).Load(context.Background(), path)
	require.NoError(t, err)
	return ds
}

func TestMonthlySales_OrderedByCalendarMonth(t *testing.T) {
	ds := loadCSV(t,
		"Order Date,Sales,Region\n"+
			"15/03/2024,50,North\n"+
			"10/01/2024,100,South\n"+
			"20/01/2024,25,North\n"+
			"05/12/2023,70,West\n")

	points, err := MonthlySales(ds)
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, "Dec-2023", points[0].Label)
	assert.Equal(t, "Jan-2024", points[1].Label)
	assert.Equal(t, "Mar-2024", points[2].Label)
	assert.Equal(t, 125.0, points[1].Sales, "same-month rows are summed")
}

func TestMonthlySales_SkipsNullRows(t *testing.T) {
	ds := loadCSV(t,
		"Order Date,Sales,Region\n"+
			"15/03/2024,50,North\n"+
			"bad date,100,South\n"+
			"10/03/2024,abc,West\n")

	points, err := MonthlySales(ds)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 50.0, points[0].Sales, "null dates and null sales stay out of the trend")
}

func TestViewWarnings(t *testing.T) {
	ds := loadCSV(t, "Sales,Region\n10,North\n")

	warnings := ViewWarnings(ds)
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "monthly sales")
	assert.Contains(t, warnings[0], "month_year")
	assert.Contains(t, warnings[1], "correlation")
	assert.Contains(t, warnings[1], "profit, discount")

	full := loadCSV(t, "Order Date,Sales,Profit,Discount,Region\n01/01/2024,1,1,0.1,North\n")
	assert.Empty(t, ViewWarnings(full))
}

func TestMonthlySales_MissingColumn(t *testing.T) {
	ds := loadCSV(t, "Sales,Region\n10,North\n")

	_, err := MonthlySales(ds)
	var missing *MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{dataset.ColMonthYear}, missing.Columns)
}

func TestRegionSales(t *testing.T) {
	ds := loadCSV(t,
		"Order Date,Sales,Region\n"+
			"15/03/2024,50,North\n"+
			"10/01/2024,100,South\n"+
			"20/01/2024,25,North\n")

	points, err := RegionSales(ds)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, RegionPoint{Region: "North", Sales: 75}, points[0])
	assert.Equal(t, RegionPoint{Region: "South", Sales: 100}, points[1])
}

func TestRegionSales_EmptyDataset(t *testing.T) {
	ds := loadCSV(t, "Order Date,Sales,Region\n15/03/2024,50,North\n")
	empty, err := ds.FilterRegions(nil)
	require.NoError(t, err)

	points, err := RegionSales(empty)
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestProfitDiscountCorrelation(t *testing.T) {
	ds := loadCSV(t,
		"Sales,Profit,Discount,Region\n"+
			"10,1,0.1,North\n"+
			"20,2,0.2,South\n"+
			"30,3,0.3,West\n")

	matrix, err := ProfitDiscountCorrelation(ds)
	require.NoError(t, err)

	assert.Equal(t, [2]string{dataset.ColProfit, dataset.ColDiscount}, matrix.Columns)
	assert.Equal(t, 3, matrix.Pairs)
	assert.Equal(t, 1.0, matrix.Values[0][0])
	assert.Equal(t, 1.0, matrix.Values[1][1])
	assert.InDelta(t, 1.0, matrix.Values[0][1], 1e-9, "perfectly linear pairs correlate at 1")
	assert.Equal(t, matrix.Values[0][1], matrix.Values[1][0], "matrix is symmetric")
}

func TestProfitDiscountCorrelation_SkipsIncompletePairs(t *testing.T) {
	ds := loadCSV(t,
		"Sales,Profit,Discount,Region\n"+
			"10,1,0.1,North\n"+
			"20,,0.2,South\n"+
			"30,3,bad,West\n"+
			"40,4,0.4,East\n")

	matrix, err := ProfitDiscountCorrelation(ds)
	require.NoError(t, err)
	assert.Equal(t, 2, matrix.Pairs)
}

func TestProfitDiscountCorrelation_TooFewPairs(t *testing.T) {
	ds := loadCSV(t,
		"Sales,Profit,Discount,Region\n"+
			"10,1,0.1,North\n"+
			"20,,0.2,South\n")

	_, err := ProfitDiscountCorrelation(ds)
	assert.Error(t, err)
}

func TestColumnInfo(t *testing.T) {
	ds := loadCSV(t,
		"Order Date,Sales,Region\n"+
			"15/03/2024,50,North\n"+
			"bad date,abc,North\n"+
			"10/01/2024,50,\n")

	info := ColumnInfo(ds)
	byName := make(map[string]ColumnSummary, len(info))
	for _, col := range info {
		byName[col.Name] = col
	}

	assert.Equal(t, 1, byName[dataset.ColOrderDate].Missing)
	assert.Equal(t, 2, byName[dataset.ColOrderDate].Unique)

	sales := byName[dataset.ColSales]
	assert.Equal(t, "float", sales.Type)
	assert.Equal(t, 1, sales.Missing)
	assert.Equal(t, 1, sales.Unique, "duplicate values count once")

	region := byName[dataset.ColRegion]
	assert.Equal(t, 1, region.Missing)
	assert.Equal(t, 1, region.Unique)
}
