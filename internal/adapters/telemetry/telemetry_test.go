package telemetry_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/delta/internal/adapters/telemetry"
	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
	"go.trai.ch/delta/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestInterfaceSatisfaction(_ *testing.T) {
	var _ ports.Tracer = (*telemetry.OTelTracer)(nil)
	var _ ports.Span = (*telemetry.OTelSpan)(nil)
	var _ ports.Tracer = (*telemetry.NoOpTracer)(nil)
	var _ ports.Span = (*telemetry.NoOpSpan)(nil)
	var _ ports.MatchMetrics = (*telemetry.OTelMetrics)(nil)
	var _ ports.MatchMetrics = telemetry.NoOpMetrics{}
	var _ sdktrace.SpanProcessor = (*telemetry.LogBridge)(nil)
}

func TestOTelTracer_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := telemetry.NewOTelTracer(tp)

	_, span := tracer.Start(context.Background(), "validator.match")
	span.SetAttribute("version", "12")
	span.SetAttribute("analysis_visited", 3)
	span.SetAttribute("store_hit", true)
	span.SetAttribute("ratio", 0.5)
	span.SetAttribute("keys", []string{"a", "b"})
	span.SetAttribute("other", domain.Version(4))
	span.RecordError(nil)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "validator.match", ended[0].Name())
	assert.Equal(t, codes.Unset, ended[0].Status().Code)

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range ended[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "12", attrs["version"].AsString())
	assert.Equal(t, int64(3), attrs["analysis_visited"].AsInt64())
	assert.True(t, attrs["store_hit"].AsBool())
	assert.InDelta(t, 0.5, attrs["ratio"].AsFloat64(), 0.0001)
	assert.Equal(t, []string{"a", "b"}, attrs["keys"].AsStringSlice())
	assert.Equal(t, "4", attrs["other"].AsString())
}

func TestOTelSpan_RecordError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := telemetry.NewOTelTracer(tp).Start(context.Background(), "validator.match")
	span.RecordError(errors.New("source offline"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "source offline", ended[0].Status().Description)
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "exception", ended[0].Events()[0].Name)
}

func TestNoOpTracer_Start(t *testing.T) {
	tracer := telemetry.NewNoOpTracer()
	ctx := context.Background()

	got, span := tracer.Start(ctx, "test-span")
	assert.Equal(t, ctx, got)
	require.NotNil(t, span)

	span.SetAttribute("key", "value")
	span.RecordError(errors.New("ignored"))
	span.End()
}

func TestLogBridge_WarnsOnFailedSpans(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewLogBridge(mockLogger)))
	tracer := telemetry.NewOTelTracer(tp)

	mockLogger.EXPECT().Warn("validator.match failed: source offline version=7").Times(1)

	_, ok := tracer.Start(context.Background(), "validator.match")
	ok.End()

	_, failed := tracer.Start(context.Background(), "validator.match")
	failed.SetAttribute("version", "7")
	failed.RecordError(errors.New("source offline"))
	failed.End()

	require.NoError(t, tp.Shutdown(context.Background()))
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestOTelMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := telemetry.NewOTelMetrics(mp)
	require.NoError(t, err)

	ctx := context.Background()
	m.CacheHit(ctx)
	m.CacheHit(ctx)
	m.CacheMiss(ctx)
	m.Joined(ctx)
	m.Resolved(ctx, domain.NoMatch{}, nil)
	m.Resolved(ctx, domain.NewAnalysisAndSourceMatch(5, 3), nil)
	m.Resolved(ctx, nil, errors.New("boom"))

	metrics := collect(t, reader)

	hits, ok := metrics[telemetry.MetricStoreHits].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, hits.DataPoints, 1)
	assert.Equal(t, int64(2), hits.DataPoints[0].Value)

	computed, ok := metrics[telemetry.MetricComputed].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(1), computed.DataPoints[0].Value)

	joined, ok := metrics[telemetry.MetricJoined].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(1), joined.DataPoints[0].Value)

	resolved, ok := metrics[telemetry.MetricResolved].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	byOutcome := map[string]int64{}
	for _, dp := range resolved.DataPoints {
		outcome, _ := dp.Attributes.Value("outcome")
		byOutcome[outcome.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{
		domain.KindNoMatch:                1,
		domain.KindAnalysisAndSourceMatch: 1,
		telemetry.OutcomeError:            1,
	}, byOutcome)
}

func TestNewProviders_Stdout(t *testing.T) {
	ctrl := gomock.NewController(t)
	var buf bytes.Buffer

	p, err := telemetry.NewProviders(domain.TelemetryExportStdout, &buf, mocks.NewMockLogger(ctrl))
	require.NoError(t, err)

	_, span := telemetry.NewOTelTracer(p.Tracer).Start(context.Background(), "validator.match")
	span.End()
	m, err := telemetry.NewOTelMetrics(p.Meter)
	require.NoError(t, err)
	m.CacheHit(context.Background())

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "validator.match")
	assert.Contains(t, buf.String(), telemetry.MetricStoreHits)
}

func TestNewProviders_None(t *testing.T) {
	ctrl := gomock.NewController(t)
	var buf bytes.Buffer

	p, err := telemetry.NewProviders(domain.TelemetryExportNone, &buf, mocks.NewMockLogger(ctrl))
	require.NoError(t, err)

	_, span := telemetry.NewOTelTracer(p.Tracer).Start(context.Background(), "validator.match")
	span.End()

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Empty(t, buf.String())
}

func TestNewProviders_UnknownExporter(t *testing.T) {
	ctrl := gomock.NewController(t)

	_, err := telemetry.NewProviders("jaeger", io.Discard, mocks.NewMockLogger(ctrl))
	require.ErrorIs(t, err, domain.ErrConfigParseFailed)
}

type failingProcessor struct {
	err error
}

func (failingProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}
func (failingProcessor) OnEnd(sdktrace.ReadOnlySpan) {}
func (p failingProcessor) Shutdown(context.Context) error { return p.err }
func (failingProcessor) ForceFlush(context.Context) error { return nil }

func TestProviders_ShutdownStopsMeterWhenTracerFails(t *testing.T) {
	flushErr := errors.New("collector unreachable")
	reader := sdkmetric.NewManualReader()
	p := &telemetry.Providers{
		Tracer: sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(failingProcessor{err: flushErr})),
		Meter:  sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	}

	err := p.Shutdown(context.Background())
	require.ErrorIs(t, err, flushErr)

	var rm metricdata.ResourceMetrics
	assert.ErrorIs(t, reader.Collect(context.Background(), &rm), sdkmetric.ErrReaderShutdown)
}
