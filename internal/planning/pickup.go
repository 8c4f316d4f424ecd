package planning

import (
	"context"

	"github.com/deliveroo-agent/core/internal/grid"
	"github.com/deliveroo-agent/core/internal/predicate"
)

// GoPickUp moves to a coordinate (via a go_to sub-intention, if not already
// there) and picks up a specific parcel.
type GoPickUp struct{}

// IsApplicableTo reports whether p is a go_pick_up predicate.
func (GoPickUp) IsApplicableTo(p predicate.Predicate) bool {
	return p.Action == predicate.GoPickUp
}

// Execute raises a go_to sub-intention if the agent isn't already on the
// target tile, then issues the pickup RPC and notifies the agent handle on
// success.
func (GoPickUp) Execute(ctx context.Context, in *Intention, handle AgentHandle, p predicate.Predicate) error {
	target := grid.Coord{X: p.X, Y: p.Y}
	if handle.Position() != target {
		sub := in.spawnChild(predicate.GoToPredicate(p.X, p.Y))
		if err := sub.Achieve(); err != nil {
			return err
		}
	}

	if in.Stopped() {
		return ErrStopped
	}
	ok, err := handle.ActionClient().EmitPickup()
	if err != nil {
		return err
	}
	if !ok {
		return errActionFailed
	}
	handle.PickedUpParcel(p.ParcelID)
	return nil
}
