package planning

import (
	"context"

	"github.com/deliveroo-agent/core/internal/grid"
	"github.com/deliveroo-agent/core/internal/predicate"
)

// GoDropOff moves to a coordinate (via a go_to sub-intention, if not already
// there) and drops off every carried parcel. The predicate's DepotID, if
// present, is a hint only — the depot to route to was already resolved by
// whoever pushed this predicate (spec.md §4.4).
type GoDropOff struct{}

// IsApplicableTo reports whether p is a go_drop_off predicate.
func (GoDropOff) IsApplicableTo(p predicate.Predicate) bool {
	return p.Action == predicate.GoDropOff
}

// Execute raises a go_to sub-intention if the agent isn't already on the
// target tile, then issues the putdown RPC and resets carried state on
// success.
func (GoDropOff) Execute(ctx context.Context, in *Intention, handle AgentHandle, p predicate.Predicate) error {
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
	ok, err := handle.ActionClient().EmitPutdown()
	if err != nil {
		return err
	}
	if !ok {
		return errActionFailed
	}
	handle.DropAllParcels()
	return nil
}
