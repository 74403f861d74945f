package dataset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) *Dataset {
	t.Helper()
	path := writeTempCSV(t, "fixture.csv",
		"Order Date,Sales,Profit,Discount,Region\n"+
			"31/12/2023,100,20,0.05,North\n"+
			"15/01/2024,200,35,0.10,South\n"+
			"20/01/2024,150,abc,0.10,North\n"+
			"02/02/2024,300,60,,West\n")

	ds, err := NewLoader(nil).Load(context.Background(), path)
	require.NoError(t, err)
	return ds
}

func TestRegions_FirstSeenOrder(t *testing.T) {
	ds := loadFixture(t)

	regions, err := ds.Regions()
	require.NoError(t, err)
	assert.Equal(t, []string{"North", "South", "West"}, regions)
}

func TestFilterRegions(t *testing.T) {
	ds := loadFixture(t)

	t.Run("subset", func(t *testing.T) {
		filtered, err := ds.FilterRegions([]string{"North"})
		require.NoError(t, err)
		assert.Equal(t, 2, filtered.NumRows())
	})

	t.Run("empty selection yields empty dataset", func(t *testing.T) {
		filtered, err := ds.FilterRegions(nil)
		require.NoError(t, err)
		assert.Equal(t, 0, filtered.NumRows())
	})

	t.Run("unknown region yields empty dataset", func(t *testing.T) {
		filtered, err := ds.FilterRegions([]string{"Atlantis"})
		require.NoError(t, err)
		assert.Equal(t, 0, filtered.NumRows())
	})

	t.Run("original is untouched", func(t *testing.T) {
		_, err := ds.FilterRegions([]string{"North"})
		require.NoError(t, err)
		assert.Equal(t, 4, ds.NumRows())
	})
}

func TestRows_NullsBecomeNil(t *testing.T) {
	ds := loadFixture(t)

	rows := ds.Rows(0)
	require.Len(t, rows, 4)

	assert.Nil(t, rows[2][ColProfit], "coercion failure surfaces as nil")
	assert.Nil(t, rows[3][ColDiscount], "empty value surfaces as nil")
	assert.Equal(t, 100.0, rows[0][ColSales])
	assert.Equal(t, "Dec-2023", rows[0][ColMonthYear])
}

func TestRows_Limit(t *testing.T) {
	ds := loadFixture(t)

	assert.Len(t, ds.Rows(2), 2)
	assert.Len(t, ds.Rows(0), 4)
	assert.Len(t, ds.Rows(100), 4)
}

func TestMissingColumns(t *testing.T) {
	ds := loadFixture(t)

	assert.Empty(t, ds.MissingColumns(ColSales, ColRegion))
	assert.Equal(t, []string{"quantity"}, ds.MissingColumns(ColSales, "quantity"))
}
