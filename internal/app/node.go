package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/guard/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/guard/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/guard/internal/adapters/lockfile"  //nolint:depguard // Wired in app layer
	"go.trai.ch/guard/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/guard/internal/adapters/report"    //nolint:depguard // Wired in app layer
	"go.trai.ch/guard/internal/adapters/sandbox"   //nolint:depguard // Wired in app layer
	"go.trai.ch/guard/internal/adapters/shell"     //nolint:depguard // Wired in app layer
	"go.trai.ch/guard/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/guard/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			sandbox.NodeID,
			shell.NodeID,
			lockfile.NodeID,
			fs.SnapshotNodeID,
			report.NodeID,
			logger.NodeID,
			telemetry.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			telemetry.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	sb, err := graft.Dep[ports.Sandbox](ctx)
	if err != nil {
		return nil, err
	}

	executor, err := graft.Dep[ports.Executor](ctx)
	if err != nil {
		return nil, err
	}

	parser, err := graft.Dep[ports.LockfileParser](ctx)
	if err != nil {
		return nil, err
	}

	snapshots, err := graft.Dep[ports.SnapshotStore](ctx)
	if err != nil {
		return nil, err
	}

	reporter, err := graft.Dep[ports.Reporter](ctx)
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

	return New(loader, sb, executor, parser, snapshots, reporter, log, tracer), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
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

	components := &Components{
		App:    app,
		Logger: log,
	}
	if s, ok := tracer.(shutdowner); ok {
		components.closers = append(components.closers, s.Shutdown)
	}
	return components, nil
}
