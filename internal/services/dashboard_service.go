// Package services contains the application services behind the HTTP
// handlers: dashboard data access, chart data, exports and health checks.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"retailpulse/internal/analytics"
	"retailpulse/internal/charts"
	"retailpulse/internal/config"
	"retailpulse/internal/dataset"
	"retailpulse/internal/exporter"
	"retailpulse/internal/infrastructure"
	"retailpulse/internal/upload"
	"retailpulse/internal/websocket"
)

// RegionSelection carries an optional region filter. Filtered false means
// no filter was supplied and every row qualifies; Filtered true with an
// empty list selects nothing.
type RegionSelection struct {
	Regions  []string
	Filtered bool
}

// RowsResponse is the row listing with per-view degradation warnings.
type RowsResponse struct {
	Rows     []map[string]interface{} `json:"rows"`
	Total    int                      `json:"total"`
	Warnings []string                 `json:"warnings,omitempty"`
}

// ExportResult lists the files an export produced and the outcome of the
// optional bucket upload.
type ExportResult struct {
	Files  []string       `json:"files"`
	Upload *upload.Result `json:"upload,omitempty"`
}

// DashboardService serves normalized sales data and its aggregates.
type DashboardService struct {
	cache    *dataset.Cache
	cfg      *config.Config
	paths    *config.Paths
	csv      *exporter.CSVWriter
	uploader *upload.Uploader
	hub      *websocket.Hub
	metrics  *infrastructure.IngestMetrics
	logger   *slog.Logger
}

// NewDashboardService creates the dashboard service.
func NewDashboardService(
	cache *dataset.Cache,
	cfg *config.Config,
	paths *config.Paths,
	csv *exporter.CSVWriter,
	uploader *upload.Uploader,
	hub *websocket.Hub,
	metrics *infrastructure.IngestMetrics,
	logger *slog.Logger,
) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		cache:    cache,
		cfg:      cfg,
		paths:    paths,
		csv:      csv,
		uploader: uploader,
		hub:      hub,
		metrics:  metrics,
		logger:   logger.With(slog.String("service", "dashboard")),
	}
}

// Dataset returns the current dataset, ingesting the configured source on
// a cache miss. Fresh loads are announced to websocket subscribers.
func (s *DashboardService) Dataset(ctx context.Context) (*dataset.Dataset, error) {
	start := time.Now()

	ds, hit, err := s.cache.Get(ctx, s.cfg.Ingest.DatasetPath)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		if hit {
			s.metrics.CacheHits.Add(ctx, 1)
		} else {
			s.metrics.Runs.Add(ctx, 1)
			s.metrics.Duration.Record(ctx, time.Since(start).Seconds())
			s.metrics.Rows.Add(ctx, int64(ds.NumRows()))
		}
	}

	if !hit && s.hub != nil {
		s.hub.NotifyReload(ds.SourcePath(), ds.NumRows())
	}
	return ds, nil
}

// Reload drops the cached dataset and re-ingests the source file.
func (s *DashboardService) Reload(ctx context.Context) (*dataset.Dataset, error) {
	s.cache.Invalidate(s.cfg.Ingest.DatasetPath)
	return s.Dataset(ctx)
}

// selected applies the region selection to the current dataset.
func (s *DashboardService) selected(ctx context.Context, sel RegionSelection) (*dataset.Dataset, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	if !sel.Filtered {
		return ds, nil
	}
	return ds.FilterRegions(sel.Regions)
}

// Rows returns up to limit rows of the (optionally filtered) dataset with
// nulls rendered as nil.
func (s *DashboardService) Rows(ctx context.Context, sel RegionSelection, limit int) (*RowsResponse, error) {
	ds, err := s.selected(ctx, sel)
	if err != nil {
		return nil, err
	}
	return &RowsResponse{
		Rows:     ds.Rows(limit),
		Total:    ds.NumRows(),
		Warnings: analytics.ViewWarnings(ds),
	}, nil
}

// Regions returns the distinct region values for the filter sidebar.
func (s *DashboardService) Regions(ctx context.Context) ([]string, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return ds.Regions()
}

// ColumnInfo returns the per-column summary of the full dataset.
func (s *DashboardService) ColumnInfo(ctx context.Context) ([]analytics.ColumnSummary, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.ColumnInfo(ds), nil
}

// MonthlySales returns the monthly sales trend for the selection.
func (s *DashboardService) MonthlySales(ctx context.Context, sel RegionSelection) ([]analytics.MonthlyPoint, error) {
	ds, err := s.selected(ctx, sel)
	if err != nil {
		return nil, err
	}
	return analytics.MonthlySales(ds)
}

// RegionSales returns per-region sales totals for the selection.
func (s *DashboardService) RegionSales(ctx context.Context, sel RegionSelection) ([]analytics.RegionPoint, error) {
	ds, err := s.selected(ctx, sel)
	if err != nil {
		return nil, err
	}
	return analytics.RegionSales(ds)
}

// Correlation returns the profit/discount correlation matrix for the
// selection.
func (s *DashboardService) Correlation(ctx context.Context, sel RegionSelection) (*analytics.CorrelationMatrix, error) {
	ds, err := s.selected(ctx, sel)
	if err != nil {
		return nil, err
	}
	return analytics.ProfitDiscountCorrelation(ds)
}

// Export writes the selection's rows, aggregates and chart images to the
// data directory concurrently, then optionally uploads the bundle.
func (s *DashboardService) Export(ctx context.Context, sel RegionSelection, uploadBundle bool) (*ExportResult, error) {
	ds, err := s.selected(ctx, sel)
	if err != nil {
		return nil, err
	}

	paths := s.paths
	stamp := time.Now().Format("20060102-150405")

	type artifact struct {
		path string
		run  func() error
	}

	rowsPath := paths.GetDataPath(fmt.Sprintf("rows-%s.csv", stamp))
	artifacts := []artifact{
		{rowsPath, func() error { return s.csv.WriteDataset(rowsPath, ds) }},
	}

	if monthly, err := analytics.MonthlySales(ds); err == nil {
		csvPath := paths.GetDataPath(fmt.Sprintf("monthly-sales-%s.csv", stamp))
		pngPath := paths.GetChartPath(fmt.Sprintf("monthly-sales-%s.png", stamp))
		artifacts = append(artifacts,
			artifact{csvPath, func() error { return s.csv.WriteMonthlySales(csvPath, monthly) }},
			artifact{pngPath, func() error {
				return writePNG(pngPath, func(f *os.File) error {
					return charts.RenderMonthlySales(monthly, f)
				})
			}},
		)
	} else {
		s.logger.WarnContext(ctx, "monthly sales excluded from export", slog.String("reason", err.Error()))
	}

	if regional, err := analytics.RegionSales(ds); err == nil {
		csvPath := paths.GetDataPath(fmt.Sprintf("region-sales-%s.csv", stamp))
		pngPath := paths.GetChartPath(fmt.Sprintf("region-sales-%s.png", stamp))
		artifacts = append(artifacts,
			artifact{csvPath, func() error { return s.csv.WriteRegionSales(csvPath, regional) }},
			artifact{pngPath, func() error {
				return writePNG(pngPath, func(f *os.File) error {
					return charts.RenderRegionSales(regional, f)
				})
			}},
		)
	} else {
		s.logger.WarnContext(ctx, "region sales excluded from export", slog.String("reason", err.Error()))
	}

	if corr, err := analytics.ProfitDiscountCorrelation(ds); err == nil {
		pngPath := paths.GetChartPath(fmt.Sprintf("correlation-%s.png", stamp))
		artifacts = append(artifacts, artifact{pngPath, func() error {
			return writePNG(pngPath, func(f *os.File) error {
				return charts.RenderCorrelationHeatmap(corr, f)
			})
		}})
	} else {
		s.logger.WarnContext(ctx, "correlation excluded from export", slog.String("reason", err.Error()))
	}

	g, _ := errgroup.WithContext(ctx)
	files := make([]string, len(artifacts))
	for i, a := range artifacts {
		i, a := i, a
		g.Go(func() error {
			if err := a.run(); err != nil {
				return fmt.Errorf("failed to write %s: %w", a.path, err)
			}
			files[i] = a.path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &ExportResult{Files: files}

	if uploadBundle {
		if s.uploader == nil || !s.uploader.Enabled() {
			return nil, errors.New("upload requested but no bucket is configured")
		}
		uploaded, err := s.uploader.UploadFiles(ctx, "exports/"+stamp, files)
		if err != nil {
			return nil, err
		}
		result.Upload = uploaded
	}

	s.logger.InfoContext(ctx, "export complete",
		slog.Int("files", len(files)),
		slog.Bool("uploaded", uploadBundle))
	return result, nil
}

func writePNG(path string, render func(*os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
