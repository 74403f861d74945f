// Command ingest runs the dataset ingestion pipeline once and prints a
// summary. It is the offline counterpart of the dashboard's loader, useful
// for validating a new source file before serving it.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"retailpulse/internal/analytics"
	"retailpulse/internal/config"
	"retailpulse/internal/dataset"
	"retailpulse/internal/infrastructure"
)

func main() {
	var (
		file     = flag.String("file", "", "dataset file to ingest (default: configured path)")
		asJSON   = flag.Bool("json", false, "print the summary as JSON")
		showRows = flag.Int("rows", 0, "print the first N normalized rows")
	)
	flag.Parse()

	if err := run(*file, *asJSON, *showRows); err != nil {
		fmt.Fprintf(os.Stderr, "ingest: %v\n", err)
		os.Exit(1)
	}
}

func run(file string, asJSON bool, showRows int) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return err
	}

	path := file
	if path == "" {
		path = cfg.Ingest.DatasetPath
	}

	loader := dataset.NewLoader(logger,
		dataset.WithRenames(cfg.Ingest.Renames),
		dataset.WithDateFormats(cfg.Ingest.DateFormats))

	ds, err := loader.Load(context.Background(), path)
	if err != nil {
		return err
	}

	summary := struct {
		Path    string                    `json:"path"`
		Rows    int                       `json:"rows"`
		Columns []analytics.ColumnSummary `json:"columns"`
	}{
		Path:    ds.SourcePath(),
		Rows:    ds.NumRows(),
		Columns: analytics.ColumnInfo(ds),
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	fmt.Printf("ingested %s: %d rows\n", summary.Path, summary.Rows)
	fmt.Printf("%-14s %-8s %8s %8s\n", "column", "type", "missing", "unique")
	for _, col := range summary.Columns {
		fmt.Printf("%-14s %-8s %8d %8d\n", col.Name, col.Type, col.Missing, col.Unique)
	}

	if showRows > 0 {
		for _, row := range ds.Rows(showRows) {
			line, err := json.Marshal(row)
			if err != nil {
				return err
			}
			fmt.Println(string(line))
		}
	}
	return nil
}
