package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pcell/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/pcell/internal/adapters/layoutio"  //nolint:depguard // Wired in app layer
	"go.trai.ch/pcell/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/pcell/internal/adapters/session"   //nolint:depguard // Wired in app layer
	"go.trai.ch/pcell/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/pcell/internal/core/ports"
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
			layoutio.NodeID,
			logger.NodeID,
			session.NodeID,
			telemetry.TracerNodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}
			codec, err := graft.Dep[ports.LayoutCodec](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			store, err := graft.Dep[ports.SessionStore](ctx)
			if err != nil {
				return nil, err
			}
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			a := New(loader, codec, log, tracer, store).
				WithStoreOpener(func(dir string) ports.SessionStore {
					return session.NewStore(dir)
				})
			return a, nil
		},
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: a, Logger: log}, nil
		},
	})
}
