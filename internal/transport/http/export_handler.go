package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "retailpulse/internal/errors"
	"retailpulse/internal/middleware"
	"retailpulse/internal/services"
)

// ExportRequest is the body of POST /api/export and POST /api/upload.
// Regions omitted entirely means export everything; an explicit empty
// list exports an empty selection.
type ExportRequest struct {
	Regions *[]string `json:"regions" validate:"omitempty,dive,min=1,max=64"`
}

// ExportHandler writes export bundles and pushes them to object storage.
type ExportHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewExportHandler creates a new export handler.
func NewExportHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportHandler {
	return &ExportHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "export_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
	}
}

// Routes returns the export routes.
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/export", h.Export)
	r.Post("/upload", h.Upload)

	return r
}

// Export handles POST /api/export: writes the CSV and chart bundle locally.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, false)
}

// Upload handles POST /api/upload: writes the bundle and pushes it to the
// configured bucket.
func (h *ExportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, true)
}

func (h *ExportHandler) run(w http.ResponseWriter, r *http.Request, upload bool) {
	reqID := middleware.GetReqID(r.Context())

	var req ExportRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("body", "request body must be valid JSON"))
			return
		}
		if err := h.validate.Struct(&req); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("regions", "region names must be 1-64 characters"))
			return
		}
	}

	sel := services.RegionSelection{}
	if req.Regions != nil {
		sel = services.RegionSelection{Regions: *req.Regions, Filtered: true}
	}

	result, err := h.service.Export(r.Context(), sel, upload)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "export failed",
			slog.Bool("upload", upload),
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, mapDatasetError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   result,
	})
}
