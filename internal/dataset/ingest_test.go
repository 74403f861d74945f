package dataset

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

func writeTempCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_NormalizesHeadersAndDates(t *testing.T) {
	path := writeTempCSV(t, "sales.csv",
		"Order Date,Sales,Profit,Discount,Region\n"+
			"31/12/2023,100.50,20.10,0.05,North\n"+
			"15/01/2024,200.00,35.00,0.10,South\n")

	loader := NewLoader(nil)
	ds, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 2, ds.NumRows())
	assert.Equal(t, []string{
		ColOrderDate, ColMonthYear, ColSales, ColProfit, ColDiscount, ColRegion,
	}, ds.Columns())

	dates, err := ds.StringColumn(ColOrderDate)
	require.NoError(t, err)
	assert.Equal(t, []string{"2023-12-31", "2024-01-15"}, dates)

	labels, err := ds.StringColumn(ColMonthYear)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dec-2023", "Jan-2024"}, labels)
}

func TestLoad_PreservesRowCountOnMalformedValues(t *testing.T) {
	path := writeTempCSV(t, "messy.csv",
		"Order Date,Sales,Region\n"+
			"31/12/2023,abc,North\n"+
			"not a date,200.00,South\n"+
			",,\n")

	loader := NewLoader(nil)
	ds, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 3, ds.NumRows(), "malformed rows must be kept, not dropped")

	sales, err := ds.FloatColumn(ColSales)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(sales[0]), "unparseable sales becomes null")
	assert.Equal(t, 200.0, sales[1])
	assert.True(t, math.IsNaN(sales[2]))

	labels, err := ds.StringColumn(ColMonthYear)
	require.NoError(t, err)
	assert.Equal(t, "Dec-2023", labels[0])
	assert.Equal(t, "", labels[1], "unparseable date yields no month label")
	assert.Equal(t, "", labels[2])
}

func TestLoad_NumericCoercion(t *testing.T) {
	path := writeTempCSV(t, "coerce.csv",
		"Sales,Region\n"+
			"\"$1,250.75\",North\n"+
			"12.5,South\n"+
			"  99 ,East\n")

	loader := NewLoader(nil)
	ds, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	sales, err := ds.FloatColumn(ColSales)
	require.NoError(t, err)
	assert.Equal(t, 1250.75, sales[0])
	assert.Equal(t, 12.5, sales[1])
	assert.Equal(t, 99.0, sales[2])
}

func TestLoad_ExplicitFormatAdoptedOverPermissive(t *testing.T) {
	// Every value fits day/month, so the whole column adopts it even though
	// month/day would also fit some rows.
	path := writeTempCSV(t, "ambiguous.csv",
		"Order Date,Sales,Region\n"+
			"01/02/2023,10,North\n"+
			"03/04/2023,20,South\n")

	loader := NewLoader(nil)
	ds, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	dates, err := ds.StringColumn(ColOrderDate)
	require.NoError(t, err)
	assert.Equal(t, []string{"2023-02-01", "2023-04-03"}, dates)
}

func TestLoad_PermissiveFallbackOnMixedFormats(t *testing.T) {
	path := writeTempCSV(t, "mixed.csv",
		"Order Date,Sales,Region\n"+
			"31/12/2023,10,North\n"+
			"2023-05-10,20,South\n"+
			"garbage,30,East\n")

	loader := NewLoader(nil)
	ds, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	dates, err := ds.StringColumn(ColOrderDate)
	require.NoError(t, err)
	assert.Equal(t, "2023-12-31", dates[0])
	assert.Equal(t, "2023-05-10", dates[1])
	assert.Equal(t, "", dates[2])
}

func TestLoad_Latin1Fallback(t *testing.T) {
	content := "Order Date,Sales,Region\n31/12/2023,10,Café\n"
	encoded, _, err := transform.Bytes(charmap.ISO8859_1.NewEncoder(), []byte(content))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "latin1.csv")
	require.NoError(t, os.WriteFile(path, encoded, 0644))

	loader := NewLoader(nil)
	ds, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	regions, err := ds.StringColumn(ColRegion)
	require.NoError(t, err)
	assert.Equal(t, "Café", regions[0])
}

func TestLoad_UTF8WithBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.csv")
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Sales,Region\n10,North\n")...)
	require.NoError(t, os.WriteFile(path, content, 0644))

	loader := NewLoader(nil)
	ds, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, ds.HasColumn(ColSales), "BOM must not corrupt the first header")
}

func TestLoad_MissingFile(t *testing.T) {
	loader := NewLoader(nil)
	_, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestLoad_HeaderCollision(t *testing.T) {
	path := writeTempCSV(t, "collision.csv",
		"Order Date,order_date,Sales\n"+
			"31/12/2023,31/12/2023,10\n")

	loader := NewLoader(nil)
	_, err := loader.Load(context.Background(), path)
	require.ErrorIs(t, err, ErrColumnCollision)
	assert.Contains(t, err.Error(), "Order Date")
	assert.Contains(t, err.Error(), "order_date")
}

func TestLoad_CustomRenames(t *testing.T) {
	path := writeTempCSV(t, "custom.csv",
		"Verkauf,Gebiet\n"+
			"10,Nord\n")

	loader := NewLoader(nil, WithRenames(map[string]string{
		"Verkauf": ColSales,
		"gebiet":  ColRegion,
	}))
	ds, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	assert.True(t, ds.HasColumn(ColSales))
	assert.True(t, ds.HasColumn(ColRegion))
}

func TestLoad_RaggedRowsArePadded(t *testing.T) {
	loader := NewLoader(nil)
	ds, err := loader.normalize(context.Background(), [][]string{
		{"Sales", "Region"},
		{"10"},
		{"20", "South", "extra"},
	}, "test")
	require.NoError(t, err)

	assert.Equal(t, 2, ds.NumRows())
	regions, err := ds.StringColumn(ColRegion)
	require.NoError(t, err)
	assert.Equal(t, "", regions[0])
	assert.Equal(t, "South", regions[1])
}
