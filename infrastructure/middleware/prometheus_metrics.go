// Package middleware provides cross-cutting concerns for the compliance
// engine: Prometheus metrics and OpenTelemetry tracing.
package middleware

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ahrav/go-as1100/internal/application"
	"github.com/ahrav/go-as1100/internal/ports"
)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It maps the engine's metric names onto dedicated vectors
// and routes anything else to generic operation metrics.
type PrometheusMetrics struct {
	runDuration     *prometheus.HistogramVec
	weightedScore   *prometheus.HistogramVec
	runsTotal       *prometheus.CounterVec
	faultsTotal     *prometheus.CounterVec
	gateDecisions   *prometheus.CounterVec
	validatorScores *prometheus.GaugeVec
	// scoresMu makes replacing a validator's score series atomic.
	scoresMu sync.Mutex

	operationLatency *prometheus.HistogramVec
	operationCounter *prometheus.CounterVec
	operationValues  *prometheus.HistogramVec
	systemGauges     *prometheus.GaugeVec
}

// scoreBuckets resolve the region around the default 0.95 threshold.
var scoreBuckets = []float64{0.5, 0.6, 0.7, 0.8, 0.85, 0.9, 0.925, 0.95, 0.975, 0.99, 1}

// NewPrometheusMetrics creates a PrometheusMetrics instance and registers
// its metrics with reg. A nil reg selects the default registerer.
// Registration is all or nothing: if any metric cannot be registered, for
// example because reg already holds it, the ones registered so far are
// removed and a *ports.MetricsError is returned.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	pm := &PrometheusMetrics{
		// Compliance run metrics.
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "compliance_run_duration_seconds",
				Help:    "Wall time of a full compliance run over one drawing.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"rubric"},
		),
		weightedScore: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    application.MetricWeightedScore,
				Help:    "Distribution of weighted compliance scores.",
				Buckets: scoreBuckets,
			},
			[]string{"rubric"},
		),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: application.MetricRunsTotal,
				Help: "Compliance runs by outcome: accepted, rejected or aborted.",
			},
			[]string{"outcome"},
		),
		faultsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: application.MetricFaultsTotal,
				Help: "Validator executions that panicked and were isolated.",
			},
			[]string{"validator"},
		),
		gateDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: application.MetricGateDecisions,
				Help: "Extraction confidence gate decisions by route.",
			},
			[]string{"decision"},
		),
		validatorScores: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: application.MetricValidatorScore,
				Help: "Most recent score of each automated validator.",
			},
			[]string{"validator", "passed"},
		),

		// General metrics for operations without a dedicated vector.
		operationLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "compliance_operation_duration_seconds",
				Help:    "Execution time of other compliance operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		operationCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "compliance_operations_total",
				Help: "Total number of other compliance operations.",
			},
			[]string{"operation"},
		),
		operationValues: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "compliance_operation_values",
				Help:    "Distribution of other recorded compliance values.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"metric"},
		),
		systemGauges: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "compliance_system_state",
				Help: "Other compliance state values.",
			},
			[]string{"metric"},
		),
	}

	if err := pm.register(reg); err != nil {
		return nil, err
	}
	return pm, nil
}

// register adds every collector to reg, undoing earlier registrations when
// one fails.
func (pm *PrometheusMetrics) register(reg prometheus.Registerer) error {
	collectors := []struct {
		name string
		c    prometheus.Collector
	}{
		{"compliance_run_duration_seconds", pm.runDuration},
		{application.MetricWeightedScore, pm.weightedScore},
		{application.MetricRunsTotal, pm.runsTotal},
		{application.MetricFaultsTotal, pm.faultsTotal},
		{application.MetricGateDecisions, pm.gateDecisions},
		{application.MetricValidatorScore, pm.validatorScores},
		{"compliance_operation_duration_seconds", pm.operationLatency},
		{"compliance_operations_total", pm.operationCounter},
		{"compliance_operation_values", pm.operationValues},
		{"compliance_system_state", pm.systemGauges},
	}

	for i, col := range collectors {
		if err := reg.Register(col.c); err != nil {
			for _, done := range collectors[:i] {
				reg.Unregister(done.c)
			}
			return ports.NewMetricsError(col.name, "register", err)
		}
	}
	return nil
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	switch operation {
	case application.MetricRunLatency:
		pm.runDuration.WithLabelValues(label(labels, "rubric")).Observe(duration.Seconds())
	default:
		pm.operationLatency.WithLabelValues(operation).Observe(duration.Seconds())
	}
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case application.MetricRunsTotal:
		pm.runsTotal.WithLabelValues(label(labels, "outcome")).Add(value)
	case application.MetricFaultsTotal:
		pm.faultsTotal.WithLabelValues(label(labels, "validator")).Add(value)
	case application.MetricGateDecisions:
		pm.gateDecisions.WithLabelValues(label(labels, "decision")).Add(value)
	default:
		pm.operationCounter.WithLabelValues(metric).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case application.MetricValidatorScore:
		validator := label(labels, "validator")
		passed := label(labels, "passed")
		// Only the latest pass state of a validator is exported.
		pm.scoresMu.Lock()
		pm.validatorScores.DeletePartialMatch(prometheus.Labels{"validator": validator})
		pm.validatorScores.WithLabelValues(validator, passed).Set(value)
		pm.scoresMu.Unlock()
	default:
		pm.systemGauges.WithLabelValues(metric).Set(value)
	}
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case application.MetricWeightedScore:
		pm.weightedScore.WithLabelValues(label(labels, "rubric")).Observe(value)
	default:
		pm.operationValues.WithLabelValues(metric).Observe(value)
	}
}

// label returns labels[key], or "unknown" when it is absent or empty.
func label(labels map[string]string, key string) string {
	if v := labels[key]; v != "" {
		return v
	}
	return "unknown"
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
