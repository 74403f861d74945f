// Package dataset implements tolerant ingestion of tabular sales data.
//
// A source file (CSV or Excel) is decoded with an ordered list of candidate
// encodings, its headers are normalized to canonical column names, dates and
// numeric fields are coerced best-effort per value, and the result is an
// immutable gota-backed Dataset. Malformed individual values degrade to
// nulls; only a missing resource or a totally undecodable file is an error.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Canonical column names produced by normalization.
const (
	ColOrderDate = "order_date"
	ColMonthYear = "month_year"
	ColSales     = "sales"
	ColProfit    = "profit"
	ColDiscount  = "discount"
	ColRegion    = "region"
)

// MonthYearLayout is the display label derived from order_date, e.g. "Jan-2023".
const MonthYearLayout = "Jan-2006"

// ISODateLayout is how normalized order_date values are stored.
const ISODateLayout = "2006-01-02"

// Terminal ingestion errors. Everything else degrades per value.
var (
	ErrResourceNotFound   = errors.New("dataset resource not found")
	ErrUnreadableEncoding = errors.New("no candidate encoding produced well-formed CSV")
	ErrColumnCollision    = errors.New("distinct source headers collapse to the same canonical column")
	ErrMissingColumn      = errors.New("column not present in dataset")
	ErrEmptyDataset       = errors.New("dataset has no data rows")
)

// Dataset is the normalized, null-tolerant tabular representation produced
// by ingestion. It is immutable: filters and selections return new values
// and never touch the backing frame, so a Dataset may be shared by
// concurrent readers without synchronization.
type Dataset struct {
	df         dataframe.DataFrame
	sourcePath string
	loadedAt   time.Time
}

// Frame returns the underlying dataframe. Callers must treat it as
// read-only; derive new frames instead of mutating in place.
func (d *Dataset) Frame() dataframe.DataFrame {
	return d.df
}

// SourcePath returns the path the dataset was ingested from.
func (d *Dataset) SourcePath() string {
	return d.sourcePath
}

// LoadedAt returns when ingestion produced this dataset.
func (d *Dataset) LoadedAt() time.Time {
	return d.loadedAt
}

// NumRows returns the number of data rows.
func (d *Dataset) NumRows() int {
	return d.df.Nrow()
}

// Columns returns the normalized column names in frame order.
func (d *Dataset) Columns() []string {
	return d.df.Names()
}

// HasColumn reports whether the named canonical column is present.
func (d *Dataset) HasColumn(name string) bool {
	for _, n := range d.df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// MissingColumns returns the subset of required that the dataset lacks.
func (d *Dataset) MissingColumns(required ...string) []string {
	var missing []string
	for _, name := range required {
		if !d.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Regions returns the distinct non-empty region values in first-seen order.
func (d *Dataset) Regions() ([]string, error) {
	if !d.HasColumn(ColRegion) {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColRegion)
	}

	seen := make(map[string]bool)
	var regions []string
	for _, v := range d.df.Col(ColRegion).Records() {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		regions = append(regions, v)
	}
	return regions, nil
}

// FilterRegions returns a new Dataset containing only rows whose region is
// in the given set. An empty set yields an empty dataset, not all rows.
func (d *Dataset) FilterRegions(regions []string) (*Dataset, error) {
	if !d.HasColumn(ColRegion) {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColRegion)
	}

	var filtered dataframe.DataFrame
	if len(regions) == 0 {
		filtered = d.df.Subset([]int{})
	} else {
		filtered = d.df.Filter(dataframe.F{
			Colname:    ColRegion,
			Comparator: series.In,
			Comparando: regions,
		})
	}
	if filtered.Error() != nil {
		return nil, fmt.Errorf("region filter failed: %w", filtered.Error())
	}

	return &Dataset{
		df:         filtered,
		sourcePath: d.sourcePath,
		loadedAt:   d.loadedAt,
	}, nil
}

// Rows materializes up to limit rows as JSON-friendly maps. Null values
// (empty strings in date/label columns, NaN in numeric columns) become nil.
// A limit <= 0 returns every row.
func (d *Dataset) Rows(limit int) []map[string]interface{} {
	n := d.df.Nrow()
	if limit > 0 && limit < n {
		n = limit
	}

	names := d.df.Names()
	types := d.df.Types()

	cols := make([]interface{}, len(names))
	for j, name := range names {
		if types[j] == series.Float {
			cols[j] = d.df.Col(name).Float()
		} else {
			cols[j] = d.df.Col(name).Records()
		}
	}

	rows := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		row := make(map[string]interface{}, len(names))
		for j, name := range names {
			switch vals := cols[j].(type) {
			case []float64:
				if math.IsNaN(vals[i]) {
					row[name] = nil
				} else {
					row[name] = vals[i]
				}
			case []string:
				if vals[i] == "" {
					row[name] = nil
				} else {
					row[name] = vals[i]
				}
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// FloatColumn returns the named numeric column with NaN for null values.
func (d *Dataset) FloatColumn(name string) ([]float64, error) {
	if !d.HasColumn(name) {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
	}
	return d.df.Col(name).Float(), nil
}

// StringColumn returns the named column rendered as strings, "" for nulls.
func (d *Dataset) StringColumn(name string) ([]string, error) {
	if !d.HasColumn(name) {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
	}
	return d.df.Col(name).Records(), nil
}
