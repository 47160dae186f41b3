package changelog

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/delta/internal/core/ports"
)

const (
	// LogNodeID is the unique identifier for the change log Graft node.
	LogNodeID graft.ID = "adapter.changelog"
	// SourceNodeID is the unique identifier for the delta source Graft node.
	SourceNodeID graft.ID = "adapter.changelog.source"
	// RecorderNodeID is the unique identifier for the change recorder Graft node.
	RecorderNodeID graft.ID = "adapter.changelog.recorder"
)

func init() {
	graft.Register(graft.Node[*Log]{
		ID:        LogNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Log, error) {
			return New(), nil
		},
	})

	graft.Register(graft.Node[ports.DeltaSource]{
		ID:        SourceNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{LogNodeID},
		Run: func(ctx context.Context) (ports.DeltaSource, error) {
			log, err := graft.Dep[*Log](ctx)
			if err != nil {
				return nil, err
			}
			return NewCoalescing(log), nil
		},
	})

	graft.Register(graft.Node[ports.ChangeRecorder]{
		ID:        RecorderNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{LogNodeID},
		Run: func(ctx context.Context) (ports.ChangeRecorder, error) {
			log, err := graft.Dep[*Log](ctx)
			if err != nil {
				return nil, err
			}
			return log, nil
		},
	})
}
