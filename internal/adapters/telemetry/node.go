package telemetry

import (
	"context"
	"errors"
	"os"

	"github.com/grindlemire/graft"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/delta/internal/adapters/config"
	"go.trai.ch/delta/internal/adapters/logger"
	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
)

const (
	// ProviderNodeID is the unique identifier for the OpenTelemetry providers Graft node.
	ProviderNodeID graft.ID = "adapter.telemetry.provider"
	// TracerNodeID is the unique identifier for the tracer Graft node.
	TracerNodeID graft.ID = "adapter.telemetry"
	// MetricsNodeID is the unique identifier for the match metrics Graft node.
	MetricsNodeID graft.ID = "adapter.telemetry.metrics"
)

// Providers holds the SDK providers backing the tracer and metrics adapters.
type Providers struct {
	Tracer *sdktrace.TracerProvider
	Meter  *sdkmetric.MeterProvider
}

// Shutdown flushes and stops both providers. A failing tracer does not keep the
// meter from stopping.
func (p *Providers) Shutdown(ctx context.Context) error {
	return errors.Join(p.Tracer.Shutdown(ctx), p.Meter.Shutdown(ctx))
}

func init() {
	graft.Register(graft.Node[*Providers]{
		ID:        ProviderNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID, config.SettingsNodeID},
		Run: func(ctx context.Context) (*Providers, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			settings, err := graft.Dep[domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			return NewProviders(settings.TelemetryExport, os.Stderr, log)
		},
	})

	graft.Register(graft.Node[ports.Tracer]{
		ID:        TracerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{ProviderNodeID},
		Run: func(ctx context.Context) (ports.Tracer, error) {
			p, err := graft.Dep[*Providers](ctx)
			if err != nil {
				return nil, err
			}
			return NewOTelTracer(p.Tracer), nil
		},
	})

	graft.Register(graft.Node[ports.MatchMetrics]{
		ID:        MetricsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{ProviderNodeID},
		Run: func(ctx context.Context) (ports.MatchMetrics, error) {
			p, err := graft.Dep[*Providers](ctx)
			if err != nil {
				return nil, err
			}
			m, err := NewOTelMetrics(p.Meter)
			if err != nil {
				return nil, err
			}
			return m, nil
		},
	})
}
