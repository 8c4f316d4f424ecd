package planning

import (
	"context"
	"fmt"

	"github.com/deliveroo-agent/core/internal/grid"
	"github.com/deliveroo-agent/core/internal/pddlsolve"
	"github.com/deliveroo-agent/core/internal/predicate"
)

// GoToPDDL is a drop-in replacement for GoTo that plans with an external PDDL
// solver instead of A* (spec.md §4.4). It is never in DefaultLibrary(); a
// caller swaps it in by configuration when it wants the symbolic planner.
//
// Unlike GoTo, a move failure here fails soft (returns the error instead of
// recursively replanning) so the option generator's normal re-proposal
// cadence drives the retry, per spec.md §9's resolved open question.
type GoToPDDL struct {
	Domain *pddlsolve.Domain
	Config pddlsolve.Config
}

// IsApplicableTo reports whether p is a go_to predicate.
func (GoToPDDL) IsApplicableTo(p predicate.Predicate) bool {
	return p.Action == predicate.GoTo
}

// Execute asks the external solver for a tile path from the agent's current
// position to (p.X, p.Y), then follows it exactly like GoTo, except that a
// blocked move fails the plan outright instead of replanning in a loop.
func (g GoToPDDL) Execute(ctx context.Context, in *Intention, handle AgentHandle, p predicate.Predicate) error {
	start := handle.Position()
	end := grid.Coord{X: p.X, Y: p.Y}
	if start == end {
		return nil
	}
	if g.Domain == nil {
		return fmt.Errorf("planning.GoToPDDL: no domain loaded")
	}

	snap, err := handle.Map().Snapshot(ctx)
	if err != nil {
		return err
	}
	beliefs := snap.BeliefSet(false, nil)

	path, err := pddlsolve.Solve(ctx, g.Config, g.Domain, beliefs, start, end)
	if err != nil {
		return fmt.Errorf("planning.GoToPDDL: %w", err)
	}
	if len(path) == 0 {
		return ErrNoPath
	}

	for _, step := range path {
		if in.Stopped() {
			return ErrStopped
		}
		cur := handle.Position()
		if cur == step {
			continue
		}
		dir := directionTo(cur, step)
		ok, err := emitMoveWithRetry(in, handle.ActionClient(), dir)
		if err != nil {
			return err
		}
		if !ok {
			return errActionFailed
		}
	}
	return nil
}
