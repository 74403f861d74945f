package dataset

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeTempXLSX(t *testing.T, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	path := filepath.Join(t.TempDir(), "sales.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoad_ExcelWorkbook(t *testing.T) {
	path := writeTempXLSX(t, [][]interface{}{
		{"Order Date", "Sales", "Region"},
		{"31/12/2023", "100.50", "North"},
		{"15/01/2024", "200", "South"},
	})

	loader := NewLoader(nil)
	ds, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 2, ds.NumRows())
	assert.True(t, ds.HasColumn(ColMonthYear))

	labels, err := ds.StringColumn(ColMonthYear)
	require.NoError(t, err)
	assert.Equal(t, "Dec-2023", labels[0])

	sales, err := ds.FloatColumn(ColSales)
	require.NoError(t, err)
	assert.Equal(t, 100.5, sales[0])
}

func TestLoad_ExcelRaggedRows(t *testing.T) {
	path := writeTempXLSX(t, [][]interface{}{
		{"Sales", "Region"},
		{"10"},
		{"20", "South"},
	})

	loader := NewLoader(nil)
	ds, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 2, ds.NumRows())
	regions, err := ds.StringColumn(ColRegion)
	require.NoError(t, err)
	assert.Equal(t, "", regions[0])
}
