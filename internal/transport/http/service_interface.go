package http

import (
	"context"

	"retailpulse/internal/analytics"
	"retailpulse/internal/dataset"
	"retailpulse/internal/services"
)

// DashboardServiceInterface defines the dashboard operations the handlers
// depend on. The concrete implementation lives in the services package;
// tests substitute mocks.
type DashboardServiceInterface interface {
	Rows(ctx context.Context, sel services.RegionSelection, limit int) (*services.RowsResponse, error)
	Regions(ctx context.Context) ([]string, error)
	ColumnInfo(ctx context.Context) ([]analytics.ColumnSummary, error)
	MonthlySales(ctx context.Context, sel services.RegionSelection) ([]analytics.MonthlyPoint, error)
	RegionSales(ctx context.Context, sel services.RegionSelection) ([]analytics.RegionPoint, error)
	Correlation(ctx context.Context, sel services.RegionSelection) (*analytics.CorrelationMatrix, error)
	Export(ctx context.Context, sel services.RegionSelection, upload bool) (*services.ExportResult, error)
	Reload(ctx context.Context) (*dataset.Dataset, error)
}
