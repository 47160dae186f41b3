package ports

import (
	"context"

	"go.trai.ch/delta/internal/core/domain"
)

//go:generate mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Tracer is the entry point for creating spans.
type Tracer interface {
	// Start creates a new span.
	Start(ctx context.Context, name string) (context.Context, Span)
}

// Span represents a unit of work.
type Span interface {
	// End completes the span.
	End()
	// RecordError records an error for the span.
	RecordError(err error)
	// SetAttribute adds a key-value pair to the span.
	SetAttribute(key string, value any)
}

// MatchMetrics records validator outcomes.
type MatchMetrics interface {
	// CacheHit records a match answered from the durable store.
	CacheHit(ctx context.Context)
	// CacheMiss records a match that had to be computed.
	CacheMiss(ctx context.Context)
	// Joined records a caller that attached to an in-flight computation.
	Joined(ctx context.Context)
	// Resolved records the outcome of a computed match.
	Resolved(ctx context.Context, result domain.MatchResult, err error)
}
