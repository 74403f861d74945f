package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"retailpulse/internal/charts"
	apierrors "retailpulse/internal/errors"
	"retailpulse/internal/middleware"
)

// ChartHandler serves chart data as JSON or rendered PNG images.
type ChartHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ChartHandler {
	return &ChartHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "chart_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the chart routes.
func (h *ChartHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/monthly-sales", h.MonthlySales)
	r.Get("/region-sales", h.RegionSales)
	r.Get("/correlation", h.Correlation)

	return r
}

// chartFormat validates the format query parameter, defaulting to json.
func chartFormat(r *http.Request) (string, error) {
	format := r.URL.Query().Get("format")
	switch format {
	case "", "json":
		return "json", nil
	case "png":
		return "png", nil
	default:
		return "", apierrors.ErrValidation("format", "format must be json or png")
	}
}

// MonthlySales handles GET /api/charts/monthly-sales.
func (h *ChartHandler) MonthlySales(w http.ResponseWriter, r *http.Request) {
	format, err := chartFormat(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	points, err := h.service.MonthlySales(r.Context(), regionSelection(r))
	if err != nil {
		h.logChartError(r, "monthly sales", err)
		h.errorHandler.HandleError(w, r, mapDatasetError(err))
		return
	}

	if format == "png" {
		w.Header().Set("Content-Type", "image/png")
		if err := charts.RenderMonthlySales(points, w); err != nil {
			h.logChartError(r, "monthly sales", err)
		}
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   points,
		"count":  len(points),
	})
}

// RegionSales handles GET /api/charts/region-sales.
func (h *ChartHandler) RegionSales(w http.ResponseWriter, r *http.Request) {
	format, err := chartFormat(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	points, err := h.service.RegionSales(r.Context(), regionSelection(r))
	if err != nil {
		h.logChartError(r, "region sales", err)
		h.errorHandler.HandleError(w, r, mapDatasetError(err))
		return
	}

	if format == "png" {
		w.Header().Set("Content-Type", "image/png")
		if err := charts.RenderRegionSales(points, w); err != nil {
			h.logChartError(r, "region sales", err)
		}
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   points,
		"count":  len(points),
	})
}

// Correlation handles GET /api/charts/correlation.
func (h *ChartHandler) Correlation(w http.ResponseWriter, r *http.Request) {
	format, err := chartFormat(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	matrix, err := h.service.Correlation(r.Context(), regionSelection(r))
	if err != nil {
		h.logChartError(r, "correlation", err)
		h.errorHandler.HandleError(w, r, mapDatasetError(err))
		return
	}

	if format == "png" {
		w.Header().Set("Content-Type", "image/png")
		if err := charts.RenderCorrelationHeatmap(matrix, w); err != nil {
			h.logChartError(r, "correlation", err)
		}
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   matrix,
	})
}

func (h *ChartHandler) logChartError(r *http.Request, chart string, err error) {
	h.logger.ErrorContext(r.Context(), "chart request failed",
		slog.String("chart", chart),
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}
