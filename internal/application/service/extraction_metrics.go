package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// Metric names following OpenTelemetry naming conventions for extraction.
const (
	ExtractionFilesCounterName      = "extraction_files_total"
	ExtractionItemsCounterName      = "extraction_items_total"
	ExtractionErrorsCounterName     = "extraction_errors_total"
	ExtractionDurationHistogramName = "extraction_duration_seconds"
	ExtractionCoverageHistogramName = "extraction_doc_coverage_ratio"
)

// Common attribute keys for extraction metrics labeling.
const (
	AttrLanguage        = "language"
	AttrExtractionStage = "stage"
	AttrMetricsService  = "service_name"
)

// ExtractionMetrics defines the interface for extraction observability.
type ExtractionMetrics interface {
	// RecordFileExtracted records one successfully extracted file with its
	// item count, documented item count, and extraction duration.
	RecordFileExtracted(
		ctx context.Context,
		language string,
		itemCount int,
		documentedCount int,
		duration time.Duration,
	)

	// RecordExtractionError records an extraction failure at the given stage.
	RecordExtractionError(ctx context.Context, language, stage string)

	// GetInstanceID returns the metrics instance identifier.
	GetInstanceID() string
}

// ExtractionMetricsConfig holds configuration for extraction metrics.
type ExtractionMetricsConfig struct {
	InstanceID            string
	ServiceName           string
	ServiceVersion        string
	CustomDurationBuckets []float64
}

// DefaultExtractionMetrics implements ExtractionMetrics using OpenTelemetry.
type DefaultExtractionMetrics struct {
	config ExtractionMetricsConfig
	mu     sync.RWMutex

	filesCounter      metric.Int64Counter
	itemsCounter      metric.Int64Counter
	errorsCounter     metric.Int64Counter
	durationHistogram metric.Float64Histogram
	coverageHistogram metric.Float64Histogram
}

// NewExtractionMetrics creates an ExtractionMetrics instance with a default
// meter provider backed by a manual reader.
func NewExtractionMetrics(config ExtractionMetricsConfig) (ExtractionMetrics, error) {
	if config.InstanceID == "" {
		return nil, errors.New("instance ID cannot be empty")
	}
	if config.ServiceName == "" {
		return nil, errors.New("service name cannot be empty")
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", config.ServiceName),
			attribute.String("service.version", config.ServiceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewManualReader()),
	)

	return NewExtractionMetricsWithProvider(config, provider)
}

// NewExtractionMetricsWithProvider creates an ExtractionMetrics instance with
// a custom meter provider.
func NewExtractionMetricsWithProvider(
	config ExtractionMetricsConfig,
	provider metric.MeterProvider,
) (ExtractionMetrics, error) {
	if config.InstanceID == "" {
		return nil, errors.New("instance ID cannot be empty")
	}
	if config.ServiceName == "" {
		return nil, errors.New("service name cannot be empty")
	}

	meter := provider.Meter("extraction-metrics")

	filesCounter, err := meter.Int64Counter(ExtractionFilesCounterName,
		metric.WithDescription("Total number of files extracted"),
	)
	if err != nil {
		return nil, err
	}

	itemsCounter, err := meter.Int64Counter(ExtractionItemsCounterName,
		metric.WithDescription("Total number of documented items extracted"),
	)
	if err != nil {
		return nil, err
	}

	errorsCounter, err := meter.Int64Counter(ExtractionErrorsCounterName,
		metric.WithDescription("Total number of extraction errors"),
	)
	if err != nil {
		return nil, err
	}

	durationHistogramOptions := []metric.Float64HistogramOption{
		metric.WithDescription("File extraction duration in seconds"),
	}
	if len(config.CustomDurationBuckets) > 0 {
		durationHistogramOptions = append(durationHistogramOptions,
			metric.WithExplicitBucketBoundaries(config.CustomDurationBuckets...))
	}

	durationHistogram, err := meter.Float64Histogram(
		ExtractionDurationHistogramName,
		durationHistogramOptions...,
	)
	if err != nil {
		return nil, err
	}

	coverageHistogram, err := meter.Float64Histogram(ExtractionCoverageHistogramName,
		metric.WithDescription("Share of extracted items carrying documentation, per file"),
	)
	if err != nil {
		return nil, err
	}

	return &DefaultExtractionMetrics{
		config:            config,
		filesCounter:      filesCounter,
		itemsCounter:      itemsCounter,
		errorsCounter:     errorsCounter,
		durationHistogram: durationHistogram,
		coverageHistogram: coverageHistogram,
	}, nil
}

func (m *DefaultExtractionMetrics) RecordFileExtracted(
	ctx context.Context,
	language string,
	itemCount int,
	documentedCount int,
	duration time.Duration,
) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	attrs := metric.WithAttributes(
		attribute.String(AttrLanguage, language),
		attribute.String(AttrMetricsService, m.config.ServiceName),
	)

	m.filesCounter.Add(ctx, 1, attrs)
	m.itemsCounter.Add(ctx, int64(itemCount), attrs)
	m.durationHistogram.Record(ctx, duration.Seconds(), attrs)

	if itemCount > 0 {
		m.coverageHistogram.Record(ctx, float64(documentedCount)/float64(itemCount), attrs)
	}
}

func (m *DefaultExtractionMetrics) RecordExtractionError(ctx context.Context, language, stage string) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	m.errorsCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String(AttrLanguage, language),
			attribute.String(AttrExtractionStage, stage),
			attribute.String(AttrMetricsService, m.config.ServiceName),
		),
	)
}

func (m *DefaultExtractionMetrics) GetInstanceID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.InstanceID
}
