package ports

import (
	"context"
	"time"

	"github.com/ahrav/go-as1100/internal/domain"
)

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus,
// OpenTelemetry, or custom monitoring solutions.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// This is useful for tracking events like passed/failed runs or
	// gate decisions.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	// This is useful for tracking the latest score of each validator.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram.
	// This is useful for tracking distributions like weighted scores.
	RecordHistogram(metric string, value float64, labels map[string]string)
}

// ReportStore persists compliance reports once they are produced.
// The engine never calls it; callers decide whether a report is kept.
type ReportStore interface {
	// Save stores the report under its ID. Saving the same ID twice
	// returns an error.
	Save(ctx context.Context, report *domain.ComplianceReport) error

	// Get returns the report with the given ID, or a StoreError wrapping
	// ErrReportNotFound.
	Get(ctx context.Context, id string) (*domain.ComplianceReport, error)

	// List returns up to limit reports, newest first.
	List(ctx context.Context, limit int) ([]*domain.ComplianceReport, error)

	// Close releases the store's resources.
	Close() error
}
