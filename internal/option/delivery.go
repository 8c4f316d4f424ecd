package option

import (
	"sync"

	"github.com/deliveroo-agent/core/internal/grid"
	"github.com/deliveroo-agent/core/internal/pathfind"
)

// tilesToAvoid is the persistent set of tiles findCommonDeliveryTile has
// already rejected. It is deliberately package-global and never reset
// between negotiations or between agent instances within one process —
// the negotiation protocol assumes every agent in this process converges on
// the same exclusion set over time rather than re-exploring rejected tiles.
var (
	tilesToAvoidMu sync.Mutex
	tilesToAvoid   = map[grid.Coord]struct{}{}
)

func isAvoided(c grid.Coord) bool {
	tilesToAvoidMu.Lock()
	defer tilesToAvoidMu.Unlock()
	_, ok := tilesToAvoid[c]
	return ok
}

func markAvoided(c grid.Coord) {
	tilesToAvoidMu.Lock()
	defer tilesToAvoidMu.Unlock()
	tilesToAvoid[c] = struct{}{}
}

// findCommonDeliveryTile implements spec.md §4.7's BFS hand-off negotiation:
// dequeue the first candidate; if it is not already avoided and is reachable
// from "from", accept it. Otherwise mark it avoided, enqueue its walkable
// neighbours (minus anything already avoided), and continue. Returns false
// once the frontier is exhausted.
func findCommonDeliveryTile(snap *grid.Snapshot, from grid.Coord, candidates []grid.Coord) (grid.Coord, bool) {
	queue := append([]grid.Coord(nil), candidates...)
	enqueued := map[grid.Coord]struct{}{}
	for _, c := range candidates {
		enqueued[c] = struct{}{}
	}

	for len(queue) > 0 {
		head := queue[0]
		queue = queue[1:]

		if !isAvoided(head) && snap.IsWalkable(head, false, nil) {
			path, err := pathfind.FindPath(snap, from, head)
			if err == nil && path != nil {
				return head, true
			}
		}

		markAvoided(head)
		for _, n := range neighbors4(head) {
			if isAvoided(n) {
				continue
			}
			if _, already := enqueued[n]; already {
				continue
			}
			if !snap.IsWalkable(n, false, nil) {
				continue
			}
			enqueued[n] = struct{}{}
			queue = append(queue, n)
		}
	}

	return grid.Coord{}, false
}

func neighbors4(c grid.Coord) []grid.Coord {
	return []grid.Coord{
		{X: c.X + 1, Y: c.Y},
		{X: c.X - 1, Y: c.Y},
		{X: c.X, Y: c.Y + 1},
		{X: c.X, Y: c.Y - 1},
	}
}
