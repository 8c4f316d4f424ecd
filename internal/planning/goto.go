package planning

import (
	"context"
	"time"

	"github.com/deliveroo-agent/core/internal/client"
	"github.com/deliveroo-agent/core/internal/grid"
	"github.com/deliveroo-agent/core/internal/pathfind"
	"github.com/deliveroo-agent/core/internal/predicate"
)

// moveRetries is the number of extra attempts a blocked move gets before
// GoTo replans, and moveRetryGap is the pause between them (spec.md §4.4,
// §7 "Transient execution").
const (
	moveRetries  = 2
	moveRetryGap = 10 * time.Millisecond
)

// GoTo moves the agent to a fixed coordinate with no other side effect.
type GoTo struct{}

// IsApplicableTo reports whether p is a go_to predicate.
func (GoTo) IsApplicableTo(p predicate.Predicate) bool {
	return p.Action == predicate.GoTo
}

// Execute follows an A* path to (p.X, p.Y) one step at a time, retrying a
// blocked move before replanning (re-entering Execute with the same
// predicate).
func (GoTo) Execute(ctx context.Context, in *Intention, handle AgentHandle, p predicate.Predicate) error {
	start := handle.Position()
	end := grid.Coord{X: p.X, Y: p.Y}
	if start == end {
		return nil
	}

	snap, err := handle.Map().Snapshot(ctx)
	if err != nil {
		return err
	}
	path, err := pathfind.FindPath(snap, start, end)
	if err != nil {
		return err
	}
	if path == nil {
		return ErrNoPath
	}

	for _, step := range path {
		if in.Stopped() {
			return ErrStopped
		}
		cur := handle.Position()
		if cur == step {
			continue // sensor already reported arrival at this tile
		}
		dir := directionTo(cur, step)

		ok, err := emitMoveWithRetry(in, handle.ActionClient(), dir)
		if err != nil {
			return err
		}
		if !ok {
			// Retries exhausted: the map has likely moved under us. Replan.
			return GoTo{}.Execute(ctx, in, handle, p)
		}
	}
	return nil
}

// emitMoveWithRetry issues a move RPC, retrying up to moveRetries times with
// moveRetryGap between attempts if the server reports the move failed. It
// checks cancellation before each attempt, including the first.
func emitMoveWithRetry(in *Intention, ac client.ActionClient, dir client.Direction) (bool, error) {
	for attempt := 0; ; attempt++ {
		if in.Stopped() {
			return false, ErrStopped
		}
		ok, _, _, err := ac.EmitMove(dir)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		if attempt >= moveRetries {
			return false, nil
		}
		time.Sleep(moveRetryGap)
	}
}

// directionTo picks the cardinal direction from "from" toward an adjacent
// tile "to", preferring horizontal movement when both axes differ (spec.md
// §4.4).
func directionTo(from, to grid.Coord) client.Direction {
	dx := to.X - from.X
	dy := to.Y - from.Y
	if dx > 0 {
		return client.Right
	}
	if dx < 0 {
		return client.Left
	}
	if dy > 0 {
		return client.Down
	}
	return client.Up
}
