package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/delta/internal/adapters/config"
	"go.trai.ch/delta/internal/adapters/logger"
	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
)

// NodeID is the unique identifier for the match store Graft node.
const NodeID graft.ID = "adapter.match_store"

func init() {
	graft.Register(graft.Node[ports.MatchStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.SettingsNodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.MatchStore, error) {
			settings, err := graft.Dep[domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return Open(settings, log)
		},
	})
}
