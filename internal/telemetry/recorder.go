package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/sdk/trace"
)

// SpanRecorder is an in-memory exporter. It is registered synchronously in
// tests so finished spans are visible as soon as they end.
type SpanRecorder struct {
	mu    sync.RWMutex
	spans []trace.ReadOnlySpan
}

func NewSpanRecorder() *SpanRecorder {
	return &SpanRecorder{
		spans: make([]trace.ReadOnlySpan, 0),
	}
}

func (r *SpanRecorder) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.spans = append(r.spans, spans...)
	return nil
}

func (r *SpanRecorder) Shutdown(ctx context.Context) error {
	return nil
}

func (r *SpanRecorder) GetSpansByName(name string) []trace.ReadOnlySpan {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []trace.ReadOnlySpan
	for _, span := range r.spans {
		if span.Name() == name {
			result = append(result, span)
		}
	}
	return result
}

func (r *SpanRecorder) GetSpansByOperation(operation string) []trace.ReadOnlySpan {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []trace.ReadOnlySpan
	for _, span := range r.spans {
		for _, attr := range span.Attributes() {
			if attr.Key == "operation" && attr.Value.AsString() == operation {
				result = append(result, span)
				break
			}
		}
	}
	return result
}

func (r *SpanRecorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.spans = make([]trace.ReadOnlySpan, 0)
}

func (r *SpanRecorder) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.spans)
}

// NewRecordingProvider returns a tracer provider that exports every span to
// recorder synchronously.
func NewRecordingProvider(recorder *SpanRecorder) *trace.TracerProvider {
	return trace.NewTracerProvider(
		trace.WithSyncer(recorder),
	)
}
