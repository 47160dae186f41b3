package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/zerr"
)

// Metric names recorded by OTelMetrics.
const (
	MetricStoreHits = "delta.match.store_hits"
	MetricComputed  = "delta.match.computed"
	MetricJoined    = "delta.match.joined"
	MetricResolved  = "delta.match.resolved"
)

// OutcomeError is the outcome attribute recorded for failed matches.
const OutcomeError = "error"

// OTelMetrics implements ports.MatchMetrics with OpenTelemetry counters.
type OTelMetrics struct {
	storeHits metric.Int64Counter
	computed  metric.Int64Counter
	joined    metric.Int64Counter
	resolved  metric.Int64Counter
}

// NewOTelMetrics creates the validator counters on a meter from provider.
func NewOTelMetrics(provider metric.MeterProvider) (*OTelMetrics, error) {
	meter := provider.Meter(InstrumentationName)
	m := &OTelMetrics{}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.storeHits, MetricStoreHits, "Matches answered from the durable store"},
		{&m.computed, MetricComputed, "Matches that started a dependency walk"},
		{&m.joined, MetricJoined, "Matches that joined an in-flight walk"},
		{&m.resolved, MetricResolved, "Walks that resolved, by outcome"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to create counter"), "metric", c.name)
		}
		*c.dst = counter
	}
	return m, nil
}

// CacheHit records a match answered from the durable store.
func (m *OTelMetrics) CacheHit(ctx context.Context) {
	m.storeHits.Add(ctx, 1)
}

// CacheMiss records a match that started a walk.
func (m *OTelMetrics) CacheMiss(ctx context.Context) {
	m.computed.Add(ctx, 1)
}

// Joined records a match that attached to an in-flight walk.
func (m *OTelMetrics) Joined(ctx context.Context) {
	m.joined.Add(ctx, 1)
}

// Resolved records the outcome of a walk.
func (m *OTelMetrics) Resolved(ctx context.Context, result domain.MatchResult, err error) {
	outcome := OutcomeError
	if err == nil && result != nil {
		outcome = domain.RecordOf(result).Kind
	}
	m.resolved.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
