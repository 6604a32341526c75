package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-as1100/internal/domain"
	"github.com/ahrav/go-as1100/internal/ports"
	"github.com/ahrav/go-as1100/internal/testutils"
)

// stubEntry builds a registry entry around a StubValidator. Non-automated
// entries use the manual review type so they pass registry checks.
func stubEntry(name string, score, weight float64, automated bool) RegistryEntry {
	typ := "stub"
	if !automated {
		typ = ManualReviewType
	}
	return RegistryEntry{
		Descriptor: Descriptor{
			Name:          name,
			Type:          typ,
			Weight:        weight,
			PassThreshold: 0.8,
			Automated:     automated,
		},
		Validator: testutils.NewStubValidator(name, score, 0.8),
	}
}

func testSettings() RegistrySettings {
	return RegistrySettings{
		Name:                "test",
		Version:             "1.0.0",
		GlobalThreshold:     DefaultGlobalThreshold,
		ExtractionThreshold: DefaultExtractionThreshold,
		MaxConcurrency:      4,
	}
}

func mustRegistry(t *testing.T, entries ...RegistryEntry) *Registry {
	t.Helper()
	r, err := NewRegistry(testSettings(), entries...)
	require.NoError(t, err)
	return r
}

// as1100Rubric mirrors the weights of the built-in rubric.
func as1100Rubric() domain.Rubric {
	return domain.Rubric{
		Threshold: 0.95,
		Criteria: []domain.Criterion{
			{Name: "sheet_layout", Weight: 0.15, PassThreshold: 0.8, Automated: true},
			{Name: "line_standards", Weight: 0.20, PassThreshold: 0.8, Automated: true},
			{Name: "dimensioning", Weight: 0.25, PassThreshold: 0.7, Automated: true},
			{Name: "text_symbols", Weight: 0.15, PassThreshold: 0.8, Automated: true},
			{Name: "views_projection", Weight: 0.15, PassThreshold: 0.8, Automated: false},
			{Name: "manufacturing_info", Weight: 0.10, PassThreshold: 0.8, Automated: false},
		},
	}
}

func scored(score, threshold float64) domain.ValidationResult {
	return domain.MustValidationResult(domain.ResultInput{Score: score, PassThreshold: threshold})
}

// recordingMetrics captures every call made to it.
type recordingMetrics struct {
	mu       sync.Mutex
	counters map[string]float64
	gauges   map[string]float64
	hist     map[string][]float64
	latency  map[string]int
}

var _ ports.MetricsCollector = (*recordingMetrics)(nil)

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		counters: map[string]float64{},
		gauges:   map[string]float64{},
		hist:     map[string][]float64{},
		latency:  map[string]int{},
	}
}

func labelKey(metric string, labels map[string]string) string {
	key := metric
	for _, k := range []string{"outcome", "validator", "decision"} {
		if v, ok := labels[k]; ok {
			key += "/" + v
		}
	}
	return key
}

func (m *recordingMetrics) RecordLatency(op string, _ time.Duration, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latency[op]++
}

func (m *recordingMetrics) RecordCounter(metric string, v float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[labelKey(metric, labels)] += v
}

func (m *recordingMetrics) RecordGauge(metric string, v float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[labelKey(metric, labels)] = v
}

func (m *recordingMetrics) RecordHistogram(metric string, v float64, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hist[metric] = append(m.hist[metric], v)
}

// recordingObserver captures lifecycle callbacks.
type recordingObserver struct {
	mu        sync.Mutex
	started   []string
	finished  map[string]error
	runs      int
	runErr    error
	report    *domain.ComplianceReport
	decisions []domain.GateDecision
}

var _ RunObserver = (*recordingObserver)(nil)

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{finished: map[string]error{}}
}

func (o *recordingObserver) RunStarted(ctx context.Context, _ string, _ int) context.Context {
	return ctx
}

func (o *recordingObserver) ValidatorStarted(ctx context.Context, name string) context.Context {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, name)
	return ctx
}

func (o *recordingObserver) ValidatorFinished(_ context.Context, name string, _ *domain.ValidationResult, _ time.Duration, fault error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished[name] = fault
}

func (o *recordingObserver) RunFinished(_ context.Context, report *domain.ComplianceReport, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.runs++
	o.report = report
	o.runErr = err
}

func (o *recordingObserver) GateDecided(_ context.Context, d domain.GateDecision) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.decisions = append(o.decisions, d)
}
