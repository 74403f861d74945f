package services

import (
	"context"
	"log/slog"
	"time"

	"retailpulse/internal/config"
)

// HealthStatus is the payload of the health endpoints.
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthService answers liveness and readiness probes.
type HealthService struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewHealthService creates the health service.
func NewHealthService(cfg *config.Config, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		cfg:    cfg,
		logger: logger.With(slog.String("service", "health")),
	}
}

// Liveness reports that the process is up.
func (s *HealthService) Liveness() HealthStatus {
	return HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
	}
}

// Readiness reports whether the service can serve data: the configured
// dataset file must exist and be a regular file.
func (s *HealthService) Readiness(ctx context.Context) HealthStatus {
	checks := make(map[string]string)
	status := "ready"

	if config.FileExists(s.cfg.Ingest.DatasetPath) {
		checks["dataset"] = "ok"
	} else {
		checks["dataset"] = "missing: " + s.cfg.Ingest.DatasetPath
		status = "degraded"
		s.logger.WarnContext(ctx, "readiness check failed",
			slog.String("dataset_path", s.cfg.Ingest.DatasetPath))
	}

	return HealthStatus{
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
	}
}
