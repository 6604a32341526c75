package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-as1100/internal/application"
	"github.com/ahrav/go-as1100/internal/domain"
)

var _ application.RunObserver = (*OTelRunObserver)(nil)

// tracerName identifies spans produced by the compliance engine.
const tracerName = "github.com/ahrav/go-as1100/compliance"

// OTelRunObserver implements observability for compliance runs using
// OpenTelemetry tracing. Each run gets a span with one child span per
// validator; span state travels in the contexts the engine hands back, so
// a single observer serves concurrent runs.
type OTelRunObserver struct {
	tracer trace.Tracer
}

// NewOTelRunObserver creates an observer that traces with tp. A nil tp
// selects the global tracer provider.
func NewOTelRunObserver(tp trace.TracerProvider) *OTelRunObserver {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &OTelRunObserver{tracer: tp.Tracer(tracerName)}
}

// RunStarted implements application.RunObserver. It starts the run span.
func (o *OTelRunObserver) RunStarted(ctx context.Context, drawing string, validators int) context.Context {
	ctx, span := o.tracer.Start(ctx, "ComplianceEngine.Run")
	span.SetAttributes(
		attribute.String("compliance.drawing", drawing),
		attribute.Int("compliance.validators", validators),
	)
	return ctx
}

// ValidatorStarted implements application.RunObserver. It starts a child
// span for one validator.
func (o *OTelRunObserver) ValidatorStarted(ctx context.Context, name string) context.Context {
	ctx, span := o.tracer.Start(ctx, "Validator.Validate")
	span.SetAttributes(attribute.String("compliance.validator", name))
	return ctx
}

// ValidatorFinished implements application.RunObserver. It records the
// validator's score and ends its span.
func (o *OTelRunObserver) ValidatorFinished(
	ctx context.Context,
	name string,
	result *domain.ValidationResult,
	elapsed time.Duration,
	fault error,
) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	span.SetAttributes(attribute.Int64("compliance.elapsed_us", elapsed.Microseconds()))

	if fault != nil {
		span.RecordError(fault)
		span.SetStatus(codes.Error, "validator fault")
		return
	}
	if result == nil {
		return
	}

	span.SetAttributes(
		attribute.Float64("compliance.score", result.Score),
		attribute.Bool("compliance.passed", result.Passed),
		attribute.Int("compliance.errors", len(result.Errors)),
		attribute.Int("compliance.warnings", len(result.Warnings)),
	)
	span.SetStatus(codes.Ok, "")
}

// RunFinished implements application.RunObserver. It records the
// report's outcome, or the abort error, and ends the run span.
func (o *OTelRunObserver) RunFinished(
	ctx context.Context,
	report *domain.ComplianceReport,
	elapsed time.Duration,
	err error,
) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	span.SetAttributes(attribute.Int64("compliance.elapsed_us", elapsed.Microseconds()))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "compliance run aborted")
		return
	}

	span.SetAttributes(
		attribute.String("compliance.report_id", report.ID),
		attribute.Float64("compliance.weighted_score", report.WeightedScore),
		attribute.Float64("compliance.threshold", report.ThresholdUsed),
		attribute.Bool("compliance.passed", report.OverallPassed),
	)
	if failed := report.Failed(); len(failed) > 0 {
		span.AddEvent("compliance.validators_failed", trace.WithAttributes(
			attribute.StringSlice("validators", failed),
		))
	}
	if len(report.ManualReview) > 0 {
		span.AddEvent("compliance.manual_review", trace.WithAttributes(
			attribute.StringSlice("validators", report.ManualReview),
		))
	}
	span.SetStatus(codes.Ok, "")
}

// GateDecided implements application.RunObserver. It adds the decision
// as an event on the span in ctx, if any.
func (o *OTelRunObserver) GateDecided(ctx context.Context, decision domain.GateDecision) {
	trace.SpanFromContext(ctx).AddEvent("extraction.gate_decision", trace.WithAttributes(
		attribute.Bool("use_automatic", decision.UseAutomatic),
		attribute.Float64("confidence", decision.Confidence),
		attribute.Float64("threshold", decision.Threshold),
	))
}
