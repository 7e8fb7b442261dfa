package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/guard/internal/adapters/logger"
	"go.trai.ch/guard/internal/core/ports"
)

// SnapshotNodeID is the unique identifier for the snapshot store Graft node.
const SnapshotNodeID graft.ID = "adapter.fs.snapshot"

func init() {
	graft.Register(graft.Node[ports.SnapshotStore]{
		ID:        SnapshotNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.SnapshotStore, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewSnapshotStore(log), nil
		},
	})
}
