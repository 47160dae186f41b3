package config

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/delta/internal/adapters/logger"
	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// DepotLoaderNodeID is the unique identifier for the depot loader Graft node.
	DepotLoaderNodeID graft.ID = "adapter.depot_loader"
	// SettingsLoaderNodeID is the unique identifier for the settings loader Graft node.
	SettingsLoaderNodeID graft.ID = "adapter.settings_loader"
	// SettingsNodeID is the unique identifier for the loaded settings Graft node.
	SettingsNodeID graft.ID = "adapter.settings"
)

func init() {
	graft.Register(graft.Node[ports.DepotLoader]{
		ID:        DepotLoaderNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.DepotLoader, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewDepotLoader(log), nil
		},
	})

	graft.Register(graft.Node[ports.SettingsLoader]{
		ID:        SettingsLoaderNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.SettingsLoader, error) {
			return NewSettingsLoader(), nil
		},
	})

	graft.Register(graft.Node[domain.Settings]{
		ID:        SettingsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{SettingsLoaderNodeID},
		Run: func(ctx context.Context) (domain.Settings, error) {
			loader, err := graft.Dep[ports.SettingsLoader](ctx)
			if err != nil {
				return domain.Settings{}, err
			}
			cwd, err := os.Getwd()
			if err != nil {
				return domain.Settings{}, zerr.Wrap(err, "failed to get working directory")
			}
			return loader.Load(cwd)
		},
	})
}
