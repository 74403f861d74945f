// Package http contains the chi HTTP handlers for the dashboard API.
package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"retailpulse/internal/analytics"
	"retailpulse/internal/dataset"
	apierrors "retailpulse/internal/errors"
	"retailpulse/internal/middleware"
	"retailpulse/internal/services"
)

// DataHandler handles data-related HTTP requests with RFC 7807 compliance.
type DataHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDataHandler creates a new data handler.
func NewDataHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the data routes.
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/rows", h.GetRows)
	r.Get("/regions", h.GetRegions)
	r.Get("/column-info", h.GetColumnInfo)
	r.Post("/reload", h.Reload)

	return r
}

// regionSelection parses the optional regions query parameter. An absent
// parameter means no filter; a present but empty one selects nothing.
func regionSelection(r *http.Request) services.RegionSelection {
	if !r.URL.Query().Has("regions") {
		return services.RegionSelection{}
	}

	var regions []string
	for _, part := range strings.Split(r.URL.Query().Get("regions"), ",") {
		if part = strings.TrimSpace(part); part != "" {
			regions = append(regions, part)
		}
	}
	return services.RegionSelection{Regions: regions, Filtered: true}
}

// GetRows handles GET /api/data/rows.
func (h *DataHandler) GetRows(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("limit", "limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	resp, err := h.service.Rows(r.Context(), regionSelection(r), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get rows",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, mapDatasetError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   resp.Rows,
		"count":  len(resp.Rows),
		"total":  resp.Total,
	})
}

// GetRegions handles GET /api/data/regions.
func (h *DataHandler) GetRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.service.Regions(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get regions",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		h.errorHandler.HandleError(w, r, mapDatasetError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   regions,
		"count":  len(regions),
	})
}

// GetColumnInfo handles GET /api/data/column-info.
func (h *DataHandler) GetColumnInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.ColumnInfo(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get column info",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		h.errorHandler.HandleError(w, r, mapDatasetError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   info,
		"count":  len(info),
	})
}

// Reload handles POST /api/data/reload, forcing re-ingestion of the source.
func (h *DataHandler) Reload(w http.ResponseWriter, r *http.Request) {
	ds, err := h.service.Reload(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to reload dataset",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		h.errorHandler.HandleError(w, r, mapDatasetError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"path":   ds.SourcePath(),
		"rows":   ds.NumRows(),
	})
}

// mapDatasetError translates ingestion and analytics failures into typed
// API errors; anything unrecognized passes through for generic handling.
func mapDatasetError(err error) error {
	var missing *analytics.MissingColumnsError
	switch {
	case errors.Is(err, dataset.ErrResourceNotFound):
		return apierrors.DatasetNotFoundError(err.Error())
	case errors.Is(err, dataset.ErrUnreadableEncoding):
		return apierrors.ErrDatasetUnreadable
	case errors.Is(err, dataset.ErrColumnCollision):
		return apierrors.New(http.StatusUnprocessableEntity, "COLUMN_COLLISION", err.Error())
	case errors.As(err, &missing):
		return apierrors.MissingColumnsError(missing.Columns)
	case errors.Is(err, dataset.ErrMissingColumn):
		return apierrors.New(http.StatusUnprocessableEntity, "MISSING_COLUMNS", err.Error())
	default:
		return err
	}
}
