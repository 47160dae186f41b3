package validator

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/delta/internal/adapters/cas"       //nolint:depguard // Wired in engine wiring
	"go.trai.ch/delta/internal/adapters/changelog" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/delta/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/delta/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/delta/internal/core/ports"
)

// NodeID is the unique identifier for the validator Graft node.
const NodeID graft.ID = "engine.validator"

func init() {
	graft.Register(graft.Node[*Validator]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			changelog.SourceNodeID,
			cas.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
			telemetry.MetricsNodeID,
		},
		Run: func(ctx context.Context) (*Validator, error) {
			source, err := graft.Dep[ports.DeltaSource](ctx)
			if err != nil {
				return nil, err
			}

			store, err := graft.Dep[ports.MatchStore](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			metrics, err := graft.Dep[ports.MatchMetrics](ctx)
			if err != nil {
				return nil, err
			}

			return New(source, store, log, tracer, metrics), nil
		},
	})
}
