package middleware

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ahrav/go-as1100/internal/application"
	"github.com/ahrav/go-as1100/internal/domain"
	"github.com/ahrav/go-as1100/internal/testutils"
)

func newTestEngine(t *testing.T, opts ...application.EngineOption) *application.Engine {
	t.Helper()
	registry, err := application.LoadDefaultRegistry()
	require.NoError(t, err)
	engine, err := application.NewEngine(registry, opts...)
	require.NoError(t, err)
	return engine
}

func compliantDrawing() *domain.Drawing { return testutils.CompliantDrawing() }

// recordingProvider is a minimal TracerProvider that keeps every span it
// starts. Unimplemented methods fall through to the noop types.
type recordingProvider struct {
	noop.TracerProvider
	mu    sync.Mutex
	spans []*recordingSpan
}

func (p *recordingProvider) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return recordingTracer{provider: p}
}

func (p *recordingProvider) byName(name string) []*recordingSpan {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*recordingSpan
	for _, s := range p.spans {
		if s.name == name {
			out = append(out, s)
		}
	}
	return out
}

type recordingTracer struct {
	noop.Tracer
	provider *recordingProvider
}

func (t recordingTracer) Start(ctx context.Context, name string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
	span := &recordingSpan{name: name, attrs: map[attribute.Key]attribute.Value{}}
	if parent, ok := trace.SpanFromContext(ctx).(*recordingSpan); ok {
		span.parent = parent
	}
	t.provider.mu.Lock()
	t.provider.spans = append(t.provider.spans, span)
	t.provider.mu.Unlock()
	return trace.ContextWithSpan(ctx, span), span
}

type recordingSpan struct {
	noop.Span
	mu     sync.Mutex
	name   string
	parent *recordingSpan
	attrs  map[attribute.Key]attribute.Value
	events []string
	errs   []error
	status codes.Code
	ended  bool
}

func (s *recordingSpan) SetAttributes(kv ...attribute.KeyValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range kv {
		s.attrs[a.Key] = a.Value
	}
}

func (s *recordingSpan) AddEvent(name string, _ ...trace.EventOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, name)
}

func (s *recordingSpan) RecordError(err error, _ ...trace.EventOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *recordingSpan) SetStatus(code codes.Code, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = code
}

func (s *recordingSpan) End(...trace.SpanEndOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = true
}

func (s *recordingSpan) IsRecording() bool { return true }
