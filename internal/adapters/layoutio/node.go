package layoutio

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pcell/internal/core/ports"
)

const NodeID graft.ID = "adapter.layout_codec"

func init() {
	graft.Register(graft.Node[ports.LayoutCodec]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.LayoutCodec, error) {
			return NewCodec(), nil
		},
	})
}
