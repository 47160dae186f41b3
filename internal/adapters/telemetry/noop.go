package telemetry

import (
	"context"

	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
)

// NoOpTracer is a no-op implementation of ports.Tracer.
type NoOpTracer struct{}

// NewNoOpTracer creates a new NoOpTracer.
func NewNoOpTracer() *NoOpTracer {
	return &NoOpTracer{}
}

// Start creates a new no-op span.
func (t *NoOpTracer) Start(ctx context.Context, _ string) (context.Context, ports.Span) {
	return ctx, &NoOpSpan{}
}

// NoOpSpan is a no-op implementation of ports.Span.
type NoOpSpan struct{}

// End does nothing.
func (s *NoOpSpan) End() {}

// RecordError does nothing.
func (s *NoOpSpan) RecordError(_ error) {}

// SetAttribute does nothing.
func (s *NoOpSpan) SetAttribute(_ string, _ any) {}

// NoOpMetrics is a no-op implementation of ports.MatchMetrics.
type NoOpMetrics struct{}

// CacheHit does nothing.
func (NoOpMetrics) CacheHit(context.Context) {}

// CacheMiss does nothing.
func (NoOpMetrics) CacheMiss(context.Context) {}

// Joined does nothing.
func (NoOpMetrics) Joined(context.Context) {}

// Resolved does nothing.
func (NoOpMetrics) Resolved(context.Context, domain.MatchResult, error) {}
