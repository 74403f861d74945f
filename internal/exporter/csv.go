// Package exporter writes dashboard data as CSV files for download and
// upload: the filtered row set and the monthly and regional aggregates.
package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"retailpulse/internal/analytics"
	"retailpulse/internal/config"
	"retailpulse/internal/dataset"
)

// CSVWriter provides CSV export functionality.
type CSVWriter struct {
	paths *config.Paths
}

// NewCSVWriter creates a new CSV writer instance.
func NewCSVWriter(paths *config.Paths) *CSVWriter {
	return &CSVWriter{paths: paths}
}

// WriteOptions configures CSV writing behavior.
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	slog.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	return writer.Error()
}

// WriteSimpleCSV writes a CSV file with headers and records.
func (w *CSVWriter) WriteSimpleCSV(filePath string, headers []string, records [][]string) error {
	return w.WriteCSV(filePath, WriteOptions{
		Headers:   headers,
		Records:   records,
		BOMPrefix: true,
	})
}

// WriteDataset exports a dataset's rows. Null values (NaN floats, empty
// strings) become empty fields.
func (w *CSVWriter) WriteDataset(filePath string, ds *dataset.Dataset) error {
	names := ds.Columns()

	n := ds.NumRows()
	records := make([][]string, 0, n)
	rows := ds.Rows(0)
	for _, row := range rows {
		record := make([]string, len(names))
		for j, name := range names {
			switch v := row[name].(type) {
			case nil:
				record[j] = ""
			case float64:
				if math.IsNaN(v) {
					record[j] = ""
				} else {
					record[j] = formatFloat(v)
				}
			case string:
				record[j] = v
			default:
				record[j] = fmt.Sprint(v)
			}
		}
		records = append(records, record)
	}

	return w.WriteSimpleCSV(filePath, names, records)
}

// WriteMonthlySales exports the monthly sales aggregate.
func (w *CSVWriter) WriteMonthlySales(filePath string, points []analytics.MonthlyPoint) error {
	records := make([][]string, len(points))
	for i, p := range points {
		records[i] = []string{p.Label, formatFloat(p.Sales)}
	}
	return w.WriteSimpleCSV(filePath, []string{dataset.ColMonthYear, dataset.ColSales}, records)
}

// WriteRegionSales exports the regional sales aggregate.
func (w *CSVWriter) WriteRegionSales(filePath string, points []analytics.RegionPoint) error {
	records := make([][]string, len(points))
	for i, p := range points {
		records[i] = []string{p.Region, formatFloat(p.Sales)}
	}
	return w.WriteSimpleCSV(filePath, []string{dataset.ColRegion, dataset.ColSales}, records)
}

// resolvePath anchors relative export paths under the data directory.
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) {
		return filePath
	}
	return w.paths.GetDataPath(filePath)
}
