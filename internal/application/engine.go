package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-as1100/internal/domain"
	"github.com/ahrav/go-as1100/internal/ports"
)

// Metric names recorded by the engine through ports.MetricsCollector.
const (
	MetricRunLatency     = "compliance_run"
	MetricWeightedScore  = "compliance_weighted_score"
	MetricValidatorScore = "compliance_validator_score"
	MetricRunsTotal      = "compliance_runs_total"
	MetricFaultsTotal    = "compliance_validator_faults_total"
	MetricGateDecisions  = "extraction_gate_decisions_total"
)

// RunObserver receives lifecycle callbacks from the engine. Start hooks
// may return a derived context, which is passed to the matching finish
// hook; this is how tracing observers carry spans. Observers must be safe
// for concurrent use because validator hooks run in parallel.
type RunObserver interface {
	RunStarted(ctx context.Context, drawing string, validators int) context.Context
	ValidatorStarted(ctx context.Context, name string) context.Context
	ValidatorFinished(ctx context.Context, name string, result *domain.ValidationResult, elapsed time.Duration, fault error)
	RunFinished(ctx context.Context, report *domain.ComplianceReport, elapsed time.Duration, err error)
	GateDecided(ctx context.Context, decision domain.GateDecision)
}

// Engine runs every validator in a Registry against a drawing and folds
// the results into a ComplianceReport.
//
// Validators run in parallel, bounded by the registry's MaxConcurrency.
// Each one writes only to its own result slot, so no locking is needed
// and aggregation happens once every task has joined. A validator that
// panics is isolated: its slot stays empty and the aggregator scores it
// zero with a diagnostic, while the rest of the run proceeds.
type Engine struct {
	registry   *Registry
	aggregator domain.Aggregator
	gate       ConfidenceGate
	logger     ports.Logger
	metrics    ports.MetricsCollector
	observers  []RunObserver
	now        func() time.Time
	newID      func() string
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine's logger. The default discards output.
func WithLogger(logger ports.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics sets the collector that receives run metrics.
func WithMetrics(metrics ports.MetricsCollector) EngineOption {
	return func(e *Engine) { e.metrics = metrics }
}

// WithObserver adds a RunObserver. Observers are called in the order they
// were added.
func WithObserver(o RunObserver) EngineOption {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

// WithAggregator replaces the WeightedAggregator.
func WithAggregator(a domain.Aggregator) EngineOption {
	return func(e *Engine) {
		if a != nil {
			e.aggregator = a
		}
	}
}

// WithClock overrides the clock used to stamp reports and time runs.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator overrides report ID generation.
func WithIDGenerator(newID func() string) EngineOption {
	return func(e *Engine) {
		if newID != nil {
			e.newID = newID
		}
	}
}

// NewEngine creates an Engine for a frozen registry.
func NewEngine(registry *Registry, opts ...EngineOption) (*Engine, error) {
	if registry == nil || registry.Len() == 0 {
		return nil, fmt.Errorf("%w: engine requires a non-empty registry", domain.ErrInvalidConfiguration)
	}

	e := &Engine{
		registry:   registry,
		aggregator: WeightedAggregator{},
		logger:     nopLogger{},
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Registry returns the registry the engine runs.
func (e *Engine) Registry() *Registry { return e.registry }

// slot holds one validator's outcome.
type slot struct {
	result *domain.ValidationResult
	fault  error
}

// Run validates the drawing against every registered validator and returns
// the aggregated report. Validator faults never fail the run. Run returns
// an error only for a nil drawing or when ctx ends before every validator
// has finished; in that case no report is produced.
func (e *Engine) Run(ctx context.Context, drawing *domain.Drawing) (*domain.ComplianceReport, error) {
	if drawing == nil {
		return nil, fmt.Errorf("%w: drawing is nil", domain.ErrEmptyValue)
	}

	start := e.now()
	entries := e.registry.entries
	settings := e.registry.settings

	for _, o := range e.observers {
		ctx = o.RunStarted(ctx, drawing.Name(), len(entries))
	}
	e.logger.Debug("compliance run started",
		"drawing", drawing.Name(),
		"rubric", settings.Name,
		"validators", len(entries),
	)

	slots := make([]slot, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(settings.MaxConcurrency)

	for i, entry := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = e.runValidator(gctx, entry, drawing)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, e.abort(ctx, drawing, start, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, e.abort(ctx, drawing, start, err)
	}

	results := make(map[string]domain.ValidationResult, len(entries))
	for i, s := range slots {
		if s.result != nil {
			results[entries[i].Name] = *s.result
		}
	}

	report := e.aggregator.Aggregate(results, e.registry.Rubric())
	for i, s := range slots {
		if s.fault == nil {
			continue
		}
		name := entries[i].Name
		outcome := report.Validators[name]
		outcome.Errors = append(outcome.Errors, s.fault.Error())
		report.Validators[name] = outcome
	}
	report.ID = e.newID()
	report.Drawing = drawing.Name()
	report.CreatedAt = start.UTC()

	elapsed := e.now().Sub(start)
	e.recordRun(&report, elapsed)
	for _, o := range e.observers {
		o.RunFinished(ctx, &report, elapsed, nil)
	}

	e.logger.Info("compliance run finished",
		"report_id", report.ID,
		"drawing", report.Drawing,
		"weighted_score", report.WeightedScore,
		"threshold", report.ThresholdUsed,
		"passed", report.OverallPassed,
		"failed", report.Failed(),
		"manual_review", report.ManualReview,
		"elapsed", elapsed,
	)

	return &report, nil
}

// runValidator executes one validator, converting a panic into a
// ValidatorFaultError.
func (e *Engine) runValidator(ctx context.Context, entry RegistryEntry, drawing *domain.Drawing) (s slot) {
	for _, o := range e.observers {
		ctx = o.ValidatorStarted(ctx, entry.Name)
	}
	start := e.now()

	defer func() {
		if r := recover(); r != nil {
			s = slot{fault: ports.NewValidatorFaultError(entry.Name, fmt.Errorf("%w: %v", ports.ErrValidatorPanicked, r))}
			e.logger.Error("validator fault",
				"validator", entry.Name,
				"error", s.fault,
			)
			if e.metrics != nil {
				e.metrics.RecordCounter(MetricFaultsTotal, 1, map[string]string{"validator": entry.Name})
			}
		}

		elapsed := e.now().Sub(start)
		for _, o := range e.observers {
			o.ValidatorFinished(ctx, entry.Name, s.result, elapsed, s.fault)
		}
	}()

	result := entry.Validator.Validate(drawing)
	e.logger.Debug("validator finished",
		"validator", entry.Name,
		"score", result.Score,
		"passed", result.Passed,
		"errors", len(result.Errors),
	)
	return slot{result: &result}
}

// abort reports a run that ended before aggregation.
func (e *Engine) abort(ctx context.Context, drawing *domain.Drawing, start time.Time, err error) error {
	elapsed := e.now().Sub(start)
	if e.metrics != nil {
		e.metrics.RecordCounter(MetricRunsTotal, 1, map[string]string{"outcome": "aborted"})
	}
	for _, o := range e.observers {
		o.RunFinished(ctx, nil, elapsed, err)
	}
	e.logger.Warn("compliance run aborted",
		"drawing", drawing.Name(),
		"error", err,
		"elapsed", elapsed,
	)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("compliance run cancelled: %w", err)
	}
	return fmt.Errorf("compliance run failed: %w", err)
}

func (e *Engine) recordRun(report *domain.ComplianceReport, elapsed time.Duration) {
	if e.metrics == nil {
		return
	}
	outcome := "rejected"
	if report.OverallPassed {
		outcome = "accepted"
	}
	rubric := map[string]string{"rubric": e.registry.settings.Name}

	e.metrics.RecordLatency(MetricRunLatency, elapsed, rubric)
	e.metrics.RecordHistogram(MetricWeightedScore, report.WeightedScore, rubric)
	e.metrics.RecordCounter(MetricRunsTotal, 1, map[string]string{"outcome": outcome})
	for _, name := range report.Order {
		o := report.Validators[name]
		if !o.Automated {
			continue
		}
		e.metrics.RecordGauge(MetricValidatorScore, o.Score, map[string]string{
			"validator": name,
			"passed":    strconv.FormatBool(o.Passed),
		})
	}
}

// Decide applies the extraction confidence gate with the rubric's
// extraction threshold.
func (e *Engine) Decide(ctx context.Context, extraction domain.ExtractionResult) domain.GateDecision {
	decision := e.gate.Decide(extraction, e.registry.settings.ExtractionThreshold)

	if e.metrics != nil {
		route := "manual"
		if decision.UseAutomatic {
			route = "automatic"
		}
		e.metrics.RecordCounter(MetricGateDecisions, 1, map[string]string{"decision": route})
	}
	for _, o := range e.observers {
		o.GateDecided(ctx, decision)
	}
	e.logger.Info("extraction gate decision",
		"use_automatic", decision.UseAutomatic,
		"confidence", decision.Confidence,
		"threshold", decision.Threshold,
	)
	return decision
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (nopLogger) Close() error         { return nil }
