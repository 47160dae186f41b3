package app

import (
	"context"
	"io"

	"github.com/grindlemire/graft"
	"go.trai.ch/delta/internal/adapters/cas"       //nolint:depguard // Wired in app layer
	"go.trai.ch/delta/internal/adapters/changelog" //nolint:depguard // Wired in app layer
	"go.trai.ch/delta/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/delta/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/delta/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
	"go.trai.ch/delta/internal/engine/validator"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// jsonSwitcher is implemented by loggers that can switch to JSON output.
type jsonSwitcher interface {
	SetJSON(enable bool)
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.DepotLoaderNodeID,
			config.SettingsNodeID,
			changelog.RecorderNodeID,
			validator.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			loader, err := graft.Dep[ports.DepotLoader](ctx)
			if err != nil {
				return nil, err
			}

			settings, err := graft.Dep[domain.Settings](ctx)
			if err != nil {
				return nil, err
			}

			recorder, err := graft.Dep[ports.ChangeRecorder](ctx)
			if err != nil {
				return nil, err
			}

			v, err := graft.Dep[*validator.Validator](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(loader, recorder, v, log).WithParallelism(settings.Parallelism), nil
		},
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			config.SettingsNodeID,
			telemetry.ProviderNodeID,
			cas.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	a, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	settings, err := graft.Dep[domain.Settings](ctx)
	if err != nil {
		return nil, err
	}

	providers, err := graft.Dep[*telemetry.Providers](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.MatchStore](ctx)
	if err != nil {
		return nil, err
	}

	if s, ok := log.(jsonSwitcher); ok {
		s.SetJSON(settings.LogJSON)
	}

	c := &Components{
		App:      a,
		Logger:   log,
		Settings: settings,
	}
	if closer, ok := store.(io.Closer); ok {
		c.closers = append(c.closers, func(context.Context) error { return closer.Close() })
	}
	c.closers = append(c.closers, providers.Shutdown)
	return c, nil
}
