// Package app wires configuration, services, transport and lifecycle into
// a runnable dashboard application.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"retailpulse/internal/config"
	"retailpulse/internal/dataset"
	apierrors "retailpulse/internal/errors"
	"retailpulse/internal/exporter"
	"retailpulse/internal/infrastructure"
	customMiddleware "retailpulse/internal/middleware"
	"retailpulse/internal/services"
	transport "retailpulse/internal/transport/http"
	"retailpulse/internal/upload"
	"retailpulse/internal/websocket"
)

// Application holds the wired application state.
type Application struct {
	Config  *config.Config
	Paths   *config.Paths
	Logger  *slog.Logger
	Metrics *infrastructure.MetricsProviders

	Hub       *websocket.Hub
	Dashboard *services.DashboardService
	Health    *services.HealthService

	Router chi.Router
	Server *http.Server
}

// NewApplication loads configuration and wires every component.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, err
	}

	metrics, err := infrastructure.InitializeMetrics(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	ingestMetrics, err := infrastructure.NewIngestMetrics(metrics.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create ingest metrics: %w", err)
	}

	loader := dataset.NewLoader(logger,
		dataset.WithRenames(cfg.Ingest.Renames),
		dataset.WithDateFormats(cfg.Ingest.DateFormats))
	cache := dataset.NewCache(loader, logger)

	hub := websocket.NewHub(logger)
	uploader := upload.NewUploader(cfg.Upload, logger)
	csvWriter := exporter.NewCSVWriter(paths)

	app := &Application{
		Config:  cfg,
		Paths:   paths,
		Logger:  logger,
		Metrics: metrics,
		Hub:     hub,
		Dashboard: services.NewDashboardService(
			cache, cfg, paths, csvWriter, uploader, hub, ingestMetrics, logger),
		Health: services.NewHealthService(cfg, logger),
	}

	app.setupRouter()
	app.createServer()
	return app, nil
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		}))
	}
	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	errorHandler := apierrors.NewErrorHandler(a.Logger, false)
	dataHandler := transport.NewDataHandler(a.Dashboard, a.Logger, errorHandler)
	chartHandler := transport.NewChartHandler(a.Dashboard, a.Logger, errorHandler)
	exportHandler := transport.NewExportHandler(a.Dashboard, a.Logger, errorHandler)
	healthHandler := transport.NewHealthHandler(a.Health, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))

		r.Group(func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))
			r.Get("/health", healthHandler.HealthCheck)
			r.Get("/health/ready", healthHandler.ReadinessCheck)
		})

		r.Mount("/data", dataHandler.Routes())
		r.Mount("/charts", chartHandler.Routes())
		r.Mount("/", exportHandler.Routes())
	})

	r.Get("/metrics", a.Metrics.PrometheusHTTP.ServeHTTP)
	r.Get("/ws", a.Hub.ServeWS)

	r.Route("/static", func(r chi.Router) {
		r.Use(customMiddleware.Compress(5))
		r.Handle("/*", transport.ServeStatic(a.Paths.WebDir))
	})
	r.Get("/", transport.ServeDashboard(a.Paths.WebDir))

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Run starts the hub and HTTP server and blocks until ctx is canceled,
// then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	a.Hub.Start()

	// Warm the cache so the first request does not pay the ingestion cost.
	warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if _, err := a.Dashboard.Dataset(warmCtx); err != nil {
		a.Logger.Warn("dataset warm-up failed, first request will retry",
			slog.String("error", err.Error()))
	}
	cancel()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("HTTP server starting",
			slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	return a.Stop()
}

// Stop shuts the server, hub and metrics pipeline down within the
// configured shutdown timeout.
func (a *Application) Stop() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	a.Logger.Info("shutting down")

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("server shutdown failed", slog.String("error", err.Error()))
		return err
	}

	a.Hub.Stop()

	if err := a.Metrics.MeterProvider.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warn("metrics shutdown failed", slog.String("error", err.Error()))
	}

	infrastructure.CloseLogFile()
	return nil
}
