package application

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-as1100/internal/domain"
	"github.com/ahrav/go-as1100/internal/ports"
	"github.com/ahrav/go-as1100/internal/testutils"
)

func newDefaultEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	registry, err := LoadDefaultRegistry()
	require.NoError(t, err)
	engine, err := NewEngine(registry, opts...)
	require.NoError(t, err)
	return engine
}

func TestNewEngine_RequiresRegistry(t *testing.T) {
	_, err := NewEngine(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

// TestEngine_Run_DefaultRubric runs the built-in rubric end to end over
// the reference drawings.
func TestEngine_Run_DefaultRubric(t *testing.T) {
	tests := []struct {
		name       string
		drawing    *domain.Drawing
		wantScore  float64
		wantPassed bool
		wantFailed []string
	}{
		{
			name:       "compliant drawing",
			drawing:    testutils.CompliantDrawing(),
			wantScore:  1,
			wantPassed: true,
		},
		{
			name:       "binding margin of 15mm",
			drawing:    testutils.DrawingWith(func(s *domain.DrawingSpec) { s.Margins.Left = 15 }),
			wantScore:  (0.15*2.0/3.0 + 0.20 + 0.25 + 0.15) / 0.75,
			wantPassed: false,
			wantFailed: []string{"sheet_layout"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newDefaultEngine(t)

			report, err := engine.Run(context.Background(), tt.drawing)
			require.NoError(t, err)

			assert.InDelta(t, tt.wantScore, report.WeightedScore, 1e-9)
			assert.Equal(t, tt.wantPassed, report.OverallPassed)
			assert.Equal(t, tt.wantFailed, report.Failed())
			assert.Equal(t, []string{"views_projection", "manufacturing_info"}, report.ManualReview)
			assert.Equal(t, 0.95, report.ThresholdUsed)
			assert.Len(t, report.Validators, 6)
			assert.Equal(t, tt.drawing.Name(), report.Drawing)
			assert.NotEmpty(t, report.ID)
		})
	}
}

func TestEngine_Run_StampsReport(t *testing.T) {
	fixed := time.Date(2026, 10, 18, 9, 30, 0, 0, time.FixedZone("AEST", 10*3600))
	engine := newDefaultEngine(t,
		WithClock(func() time.Time { return fixed }),
		WithIDGenerator(func() string { return "report-1" }),
	)

	report, err := engine.Run(context.Background(), testutils.CompliantDrawing())
	require.NoError(t, err)

	assert.Equal(t, "report-1", report.ID)
	assert.Equal(t, fixed.UTC(), report.CreatedAt)
	assert.Equal(t, time.UTC, report.CreatedAt.Location())
}

// TestEngine_Run_IsolatesPanics checks that one faulting validator is
// scored zero with a diagnostic while the others still count.
func TestEngine_Run_IsolatesPanics(t *testing.T) {
	healthy := testutils.NewStubValidator("healthy", 1, 0.8)
	registry := mustRegistry(t,
		RegistryEntry{
			Descriptor: Descriptor{Name: "healthy", Type: "stub", Weight: 0.5, PassThreshold: 0.8, Automated: true},
			Validator:  healthy,
		},
		RegistryEntry{
			Descriptor: Descriptor{Name: "broken", Type: "stub", Weight: 0.5, PassThreshold: 0.8, Automated: true},
			Validator:  testutils.NewPanickingValidator("broken", "index out of range"),
		},
	)
	metrics := newRecordingMetrics()
	observer := newRecordingObserver()
	engine, err := NewEngine(registry, WithMetrics(metrics), WithObserver(observer))
	require.NoError(t, err)

	report, err := engine.Run(context.Background(), testutils.CompliantDrawing())
	require.NoError(t, err)

	assert.Equal(t, int64(1), healthy.Calls())
	assert.InDelta(t, 0.5, report.WeightedScore, 1e-12)
	assert.False(t, report.OverallPassed)
	assert.True(t, report.Validators["healthy"].Passed)

	broken := report.Validators["broken"]
	assert.Equal(t, 0.0, broken.Score)
	assert.False(t, broken.Passed)
	require.Len(t, broken.Errors, 2)
	assert.Equal(t, "validator broken did not produce a result", broken.Errors[0])
	assert.Contains(t, broken.Errors[1], "index out of range")

	assert.Equal(t, 1.0, metrics.counters[MetricFaultsTotal+"/broken"])
	assert.ErrorIs(t, observer.finished["broken"], ports.ErrValidatorPanicked)
	assert.NoError(t, observer.finished["healthy"])
}

func TestEngine_Run_NilDrawing(t *testing.T) {
	engine := newDefaultEngine(t)

	report, err := engine.Run(context.Background(), nil)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, domain.ErrEmptyValue)
}

func TestEngine_Run_Cancelled(t *testing.T) {
	metrics := newRecordingMetrics()
	observer := newRecordingObserver()
	engine := newDefaultEngine(t, WithMetrics(metrics), WithObserver(observer))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := engine.Run(ctx, testutils.CompliantDrawing())
	assert.Nil(t, report)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "compliance run cancelled")

	assert.Equal(t, 1.0, metrics.counters[MetricRunsTotal+"/aborted"])
	assert.Equal(t, 1, observer.runs)
	assert.Nil(t, observer.report)
	assert.ErrorIs(t, observer.runErr, context.Canceled)
}

// countingValidator tracks the peak number of concurrent Validate calls.
type countingValidator struct {
	name    string
	active  *atomic.Int64
	peak    *atomic.Int64
	release <-chan struct{}
}

func (c countingValidator) Name() string { return c.name }

func (c countingValidator) Validate(*domain.Drawing) domain.ValidationResult {
	n := c.active.Add(1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	<-c.release
	c.active.Add(-1)
	return domain.MustValidationResult(domain.ResultInput{Score: 1, PassThreshold: 0.8})
}

func TestEngine_Run_BoundsConcurrency(t *testing.T) {
	var active, peak atomic.Int64
	release := make(chan struct{})

	settings := testSettings()
	settings.MaxConcurrency = 2
	entries := make([]RegistryEntry, 0, 6)
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		entries = append(entries, RegistryEntry{
			Descriptor: Descriptor{Name: name, Type: "stub", Weight: 1.0 / 6, PassThreshold: 0.8, Automated: true},
			Validator:  countingValidator{name: name, active: &active, peak: &peak, release: release},
		})
	}
	registry, err := NewRegistry(settings, entries...)
	require.NoError(t, err)
	engine, err := NewEngine(registry)
	require.NoError(t, err)

	done := make(chan *domain.ComplianceReport, 1)
	go func() {
		report, _ := engine.Run(context.Background(), testutils.CompliantDrawing())
		done <- report
	}()

	require.Eventually(t, func() bool { return active.Load() == 2 }, time.Second, time.Millisecond)
	close(release)

	select {
	case report := <-done:
		require.NotNil(t, report)
		assert.Equal(t, 1.0, report.WeightedScore)
	case <-time.After(5 * time.Second):
		t.Fatal("engine run did not finish")
	}
	assert.Equal(t, int64(2), peak.Load())
}

func TestEngine_Run_RecordsMetricsAndObservers(t *testing.T) {
	metrics := newRecordingMetrics()
	observer := newRecordingObserver()
	engine := newDefaultEngine(t, WithMetrics(metrics), WithObserver(observer))

	report, err := engine.Run(context.Background(), testutils.DrawingWith(func(s *domain.DrawingSpec) {
		s.Margins.Left = 15
	}))
	require.NoError(t, err)

	assert.Equal(t, 1, metrics.latency[MetricRunLatency])
	assert.Equal(t, []float64{report.WeightedScore}, metrics.hist[MetricWeightedScore])
	assert.Equal(t, 1.0, metrics.counters[MetricRunsTotal+"/rejected"])
	assert.InDelta(t, 2.0/3.0, metrics.gauges[MetricValidatorScore+"/sheet_layout"], 1e-12)
	assert.Equal(t, 1.0, metrics.gauges[MetricValidatorScore+"/dimensioning"])
	_, manualRecorded := metrics.gauges[MetricValidatorScore+"/views_projection"]
	assert.False(t, manualRecorded)

	assert.ElementsMatch(t, report.Order, observer.started)
	assert.Len(t, observer.finished, 6)
	assert.Equal(t, 1, observer.runs)
	assert.Same(t, report, observer.report)
	assert.NoError(t, observer.runErr)
}

func TestEngine_Decide(t *testing.T) {
	metrics := newRecordingMetrics()
	observer := newRecordingObserver()
	engine := newDefaultEngine(t, WithMetrics(metrics), WithObserver(observer))

	accepted := engine.Decide(context.Background(), domain.ExtractionResult{Confidence: 0.70})
	rejected := engine.Decide(context.Background(), domain.ExtractionResult{Confidence: 0.69})

	assert.True(t, accepted.UseAutomatic)
	assert.Equal(t, 0.70, accepted.Threshold)
	assert.False(t, rejected.UseAutomatic)

	assert.Equal(t, 1.0, metrics.counters[MetricGateDecisions+"/automatic"])
	assert.Equal(t, 1.0, metrics.counters[MetricGateDecisions+"/manual"])
	assert.Equal(t, []domain.GateDecision{accepted, rejected}, observer.decisions)
}

// TestEngine_Run_Deterministic runs the same drawing concurrently and
// requires identical scores and outcomes from every run.
func TestEngine_Run_Deterministic(t *testing.T) {
	engine := newDefaultEngine(t, WithIDGenerator(func() string { return "fixed" }))
	drawing := testutils.DrawingWith(func(s *domain.DrawingSpec) {
		s.Texts[0].FontFamily = "Arial"
		s.Dimensions[2].DecimalPlaces = 3
	})

	first, err := engine.Run(context.Background(), drawing)
	require.NoError(t, err)

	results := make(chan *domain.ComplianceReport, 8)
	for i := 0; i < cap(results); i++ {
		go func() {
			r, _ := engine.Run(context.Background(), drawing)
			results <- r
		}()
	}
	for i := 0; i < cap(results); i++ {
		r := <-results
		require.NotNil(t, r)
		assert.Equal(t, first.WeightedScore, r.WeightedScore)
		assert.Equal(t, first.Validators, r.Validators)
	}
}
