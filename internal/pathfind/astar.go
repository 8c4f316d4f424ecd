// Package pathfind implements A* search over a grid.Snapshot's walkable tiles.
package pathfind

import (
	"container/heap"
	"math"

	"github.com/deliveroo-agent/core/internal/grid"
)

// FindPath searches for a shortest path from start to end over snap's walkable
// tiles, using Manhattan distance as the heuristic and unit edge costs.
//
// Returns an empty, non-nil path and a nil error if start == end (success —
// the agent is already at the destination). Returns (nil, nil) if end is unwalkable or
// unreachable — callers distinguish "no path" from "error" by checking both
// return values are nil; FindPath itself never returns a non-nil error for a
// missing route, only for malformed input.
//
// Precondition: snap must not be nil.
func FindPath(snap *grid.Snapshot, start, end grid.Coord) ([]grid.Coord, error) {
	return FindPathWithAgents(snap, start, end, false, nil)
}

// FindPathWithAgents is FindPath with explicit control over whether the
// companion's tile counts as an obstacle (see grid.Snapshot.IsWalkable).
func FindPathWithAgents(snap *grid.Snapshot, start, end grid.Coord, withAgents bool, companion *grid.Coord) ([]grid.Coord, error) {
	if snap == nil {
		return nil, errNilSnapshot
	}
	if start == end {
		return []grid.Coord{}, nil
	}
	if !snap.IsWalkable(end, withAgents, companion) {
		return nil, nil
	}

	walkable := snap.WalkableTiles(withAgents, companion)
	gScore := make(map[grid.Coord]float64, len(walkable))
	fScore := make(map[grid.Coord]float64, len(walkable))
	for _, t := range walkable {
		gScore[t.Coord()] = math.Inf(1)
		fScore[t.Coord()] = math.Inf(1)
	}
	if _, ok := gScore[start]; !ok {
		// Start tile isn't in the walkable set (e.g. occupied), but the search
		// still begins there — register it so the relaxation below has a base.
		gScore[start] = math.Inf(1)
		fScore[start] = math.Inf(1)
	}
	gScore[start] = 0
	fScore[start] = heuristic(start, end)

	open := &nodeHeap{}
	heap.Init(open)
	heap.Push(open, &node{coord: start, fScore: fScore[start]})
	inOpen := map[grid.Coord]bool{start: true}

	cameFrom := make(map[grid.Coord]grid.Coord)

	for open.Len() > 0 {
		current := heap.Pop(open).(*node)
		inOpen[current.coord] = false

		if current.coord == end {
			return reconstructPath(cameFrom, start, end), nil
		}

		neighbors := snap.NeighborTiles(tileAt(current.coord), true, withAgents, companion)
		for _, n := range neighbors {
			nc := n.Coord()
			tentativeG := gScore[current.coord] + 1
			if existing, ok := gScore[nc]; !ok || tentativeG < existing {
				cameFrom[nc] = current.coord
				gScore[nc] = tentativeG
				fScore[nc] = tentativeG + heuristic(nc, end)
				if !inOpen[nc] {
					heap.Push(open, &node{coord: nc, fScore: fScore[nc]})
					inOpen[nc] = true
				}
			}
		}
	}

	return nil, nil
}

func tileAt(c grid.Coord) grid.Tile {
	return grid.Tile{X: c.X, Y: c.Y}
}

func heuristic(a, b grid.Coord) float64 {
	return float64(a.Manhattan(b))
}

func reconstructPath(cameFrom map[grid.Coord]grid.Coord, start, end grid.Coord) []grid.Coord {
	path := []grid.Coord{end}
	current := end
	for current != start {
		prev, ok := cameFrom[current]
		if !ok {
			break
		}
		path = append(path, prev)
		current = prev
	}
	// reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	// drop the start tile itself; the returned path is the steps to take.
	if len(path) > 0 && path[0] == start {
		path = path[1:]
	}
	return path
}

// node is one entry in the A* open set.
type node struct {
	coord  grid.Coord
	fScore float64
	index  int
}

// nodeHeap is a min-heap over node.fScore. Ties break in heap insertion order,
// which is acceptable — spec.md §4.3 notes paths need not be unique.
type nodeHeap []*node

func (h nodeHeap) Len() int            { return len(h) }
func (h nodeHeap) Less(i, j int) bool  { return h[i].fScore < h[j].fScore }
func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *nodeHeap) Push(x any) {
	n := x.(*node)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
