package session

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pcell/internal/core/domain"
	"go.trai.ch/pcell/internal/core/ports"
)

const NodeID graft.ID = "adapter.session_store"

func init() {
	graft.Register(graft.Node[ports.SessionStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.SessionStore, error) {
			return NewStore(domain.DefaultSessionPath()), nil
		},
	})
}
