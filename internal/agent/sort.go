package agent

import (
	"math"
	"sort"

	"github.com/deliveroo-agent/core/internal/grid"
	"github.com/deliveroo-agent/core/internal/pathfind"
	"github.com/deliveroo-agent/core/internal/planning"
	"github.com/deliveroo-agent/core/internal/predicate"
)

// sortIntentionQueue enforces the priority policy (spec.md §4.6):
//  1. partition by action;
//  2. score and sort pickups by ascending A* distance from the current
//     position;
//  3. in dual-agent ModeNone, broadcast the sorted pickup ids so the
//     companion can update its ignore-list;
//  4. keep at most one drop-off and one goto;
//  5. rebuild as [pickups..., drop_off?, goto?];
//  6. if carriedParcelCount >= maxCarriedParcels, keep drop-offs only.
func (a *Agent) sortIntentionQueue() {
	a.mu.Lock()
	queueCopy := append([]*planning.Intention(nil), a.queue...)
	pos := a.pos
	carriedCount := a.carriedParcelCount
	maxCarried := a.maxCarriedParcels
	dualAgent := a.dualAgent
	mode := a.mode
	a.mu.Unlock()

	var pickups, dropoffs, gotos []*planning.Intention
	for _, in := range queueCopy {
		switch in.Predicate().Action {
		case predicate.GoPickUp:
			pickups = append(pickups, in)
		case predicate.GoDropOff:
			dropoffs = append(dropoffs, in)
		default:
			gotos = append(gotos, in)
		}
	}

	scores := a.scorePickups(pos, pickups)
	sort.SliceStable(pickups, func(i, j int) bool {
		return scores[pickups[i]] < scores[pickups[j]]
	})

	if dualAgent && mode == ModeNone && a.onPickupsSorted != nil {
		ids := make([]string, len(pickups))
		for i, in := range pickups {
			ids[i] = in.Predicate().ParcelID
		}
		a.onPickupsSorted(ids)
	}

	out := make([]*planning.Intention, 0, len(pickups)+2)
	out = append(out, pickups...)
	if len(dropoffs) > 0 {
		out = append(out, dropoffs[0])
	}
	if len(gotos) > 0 {
		out = append(out, gotos[0])
	}

	if carriedCount >= maxCarried {
		out = out[:0]
		if len(dropoffs) > 0 {
			out = append(out, dropoffs[0])
		}
	}

	a.mu.Lock()
	a.queue = out
	a.mu.Unlock()
}

// scorePickups computes A* path length from pos to each pickup's target tile.
// Unreachable pickups score +Inf, sorting them last.
func (a *Agent) scorePickups(pos grid.Coord, pickups []*planning.Intention) map[*planning.Intention]float64 {
	scores := make(map[*planning.Intention]float64, len(pickups))
	if len(pickups) == 0 {
		return scores
	}

	snap, err := a.m.Snapshot(a.runCtx())
	if err != nil {
		for _, in := range pickups {
			scores[in] = math.Inf(1)
		}
		return scores
	}

	for _, in := range pickups {
		p := in.Predicate()
		path, err := pathfind.FindPath(snap, pos, grid.Coord{X: p.X, Y: p.Y})
		if err != nil || path == nil {
			scores[in] = math.Inf(1)
			continue
		}
		scores[in] = float64(len(path))
	}
	return scores
}
