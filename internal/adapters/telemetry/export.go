package telemetry

import (
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/delta/internal/build"
	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
	"go.trai.ch/zerr"
)

// NewProviders builds the tracer and meter providers. Failed spans are always
// reported through log. With the stdout exporter, spans and metrics are also
// written as JSON to w, at the latest when the providers shut down.
func NewProviders(export string, w io.Writer, log ports.Logger) (*Providers, error) {
	res := resource.NewSchemaless(
		attribute.String("service.name", "delta"),
		attribute.String("service.version", build.Version),
	)
	traceOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(NewLogBridge(log)),
	}
	meterOpts := []sdkmetric.Option{
		sdkmetric.WithResource(res),
	}

	switch export {
	case domain.TelemetryExportNone, "":
	case domain.TelemetryExportStdout:
		spans, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, zerr.Wrap(err, "failed to create span exporter")
		}
		metrics, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
		if err != nil {
			return nil, zerr.Wrap(err, "failed to create metric exporter")
		}
		traceOpts = append(traceOpts, sdktrace.WithBatcher(spans))
		meterOpts = append(meterOpts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metrics)))
	default:
		return nil, zerr.With(
			zerr.Wrap(domain.ErrConfigParseFailed, "unknown telemetry exporter"),
			"export", export,
		)
	}

	return &Providers{
		Tracer: sdktrace.NewTracerProvider(traceOpts...),
		Meter:  sdkmetric.NewMeterProvider(meterOpts...),
	}, nil
}
