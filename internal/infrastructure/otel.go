package infrastructure

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	ServiceName    = "retailpulse"
	ServiceVersion = "v1.0.0"
	MeterName      = "retailpulse"
)

// MetricsProviders holds the OpenTelemetry metrics pipeline backed by the
// Prometheus exporter.
type MetricsProviders struct {
	MeterProvider  *sdkmetric.MeterProvider
	Meter          metric.Meter
	PrometheusHTTP http.Handler
}

// InitializeMetrics wires an OTel meter provider to a Prometheus registry
// and returns the meter plus the /metrics HTTP handler.
func InitializeMetrics(logger *slog.Logger) (*MetricsProviders, error) {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(ServiceVersion),
		semconv.DeploymentEnvironment(env),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create otel resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	logger.Info("metrics pipeline initialized",
		slog.String("service", ServiceName),
		slog.String("environment", env))

	return &MetricsProviders{
		MeterProvider:  provider,
		Meter:          provider.Meter(MeterName),
		PrometheusHTTP: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}, nil
}

// IngestMetrics carries the instruments recorded by the ingestion pipeline.
type IngestMetrics struct {
	Runs      metric.Int64Counter
	CacheHits metric.Int64Counter
	Rows      metric.Int64Counter
	Duration  metric.Float64Histogram
}

// NewIngestMetrics creates the ingestion instruments on the given meter.
func NewIngestMetrics(meter metric.Meter) (*IngestMetrics, error) {
	runs, err := meter.Int64Counter("ingest_runs_total",
		metric.WithDescription("Number of full ingestion runs"))
	if err != nil {
		return nil, err
	}
	hits, err := meter.Int64Counter("ingest_cache_hits_total",
		metric.WithDescription("Number of dataset cache hits"))
	if err != nil {
		return nil, err
	}
	rows, err := meter.Int64Counter("ingest_rows_total",
		metric.WithDescription("Rows produced by ingestion runs"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("ingest_duration_seconds",
		metric.WithDescription("Wall time of ingestion runs"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &IngestMetrics{
		Runs:      runs,
		CacheHits: hits,
		Rows:      rows,
		Duration:  duration,
	}, nil
}
