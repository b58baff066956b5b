package codeset

import (
	"context"

	"github.com/mlavigne/client-management/internal/core/events"
)

// BusNotifier turns unit-of-work commit notifications into codeset.changed
// events. Publishing is synchronous so the cache is already invalidated when
// the committing request returns.
type BusNotifier struct {
	bus *events.EventBus
}

func NewBusNotifier(bus *events.EventBus) *BusNotifier {
	return &BusNotifier{bus: bus}
}

func (n *BusNotifier) CodeSetGroupsChanged(ctx context.Context, typeCodes []string) {
	_ = n.bus.PublishSync(ctx, events.NewCodeSetChanged(typeCodes))
}
