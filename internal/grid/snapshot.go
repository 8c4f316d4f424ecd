package grid

import "fmt"

// Snapshot is an immutable, point-in-time copy of a WorldMap's belief state.
// It is safe to read from multiple goroutines and never mutates once returned by
// WorldMap.Snapshot; callers that need a fresher view must take a new snapshot.
type Snapshot struct {
	Width, Height int
	Tiles         []Tile
	DepotTiles    []Tile
	SpawnTiles    []Tile
	Parcels       []Parcel
	Adversaries   []AdversaryAgent

	LeaderPosition   *Coord
	FollowerPosition *Coord
}

// TileAt returns the tile at (x,y), or false if out of bounds.
func (s *Snapshot) TileAt(x, y int) (Tile, bool) {
	if x < 0 || x >= s.Width || y < 0 || y >= s.Height {
		return Tile{}, false
	}
	return s.Tiles[y*s.Width+x], true
}

// occupiedByAdversary reports whether an adversary currently sits on c.
func (s *Snapshot) occupiedByAdversary(c Coord) bool {
	for _, a := range s.Adversaries {
		if a.Coord() == c {
			return true
		}
	}
	return false
}

// IsWalkable reports whether c is a tile the agent may currently step onto:
// its type is Depot, Spawn, or Other; it is not occupied by an adversary; and,
// unless withAgents is true, it is not the companion's tile.
func (s *Snapshot) IsWalkable(c Coord, withAgents bool, companion *Coord) bool {
	t, ok := s.TileAt(c.X, c.Y)
	if !ok {
		return false
	}
	if t.Type == Wall {
		return false
	}
	if s.occupiedByAdversary(c) {
		return false
	}
	if !withAgents && companion != nil && *companion == c {
		return false
	}
	return true
}

// WalkableTiles returns every tile satisfying IsWalkable.
func (s *Snapshot) WalkableTiles(withAgents bool, companion *Coord) []Tile {
	out := make([]Tile, 0, len(s.Tiles))
	for _, t := range s.Tiles {
		if s.IsWalkable(t.Coord(), withAgents, companion) {
			out = append(out, t)
		}
	}
	return out
}

// NeighborTiles returns the 4-connected in-bounds neighbors of tile. If walkable
// is true, the result is intersected with WalkableTiles.
func (s *Snapshot) NeighborTiles(tile Tile, walkable bool, withAgents bool, companion *Coord) []Tile {
	deltas := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	out := make([]Tile, 0, 4)
	for _, d := range deltas {
		nx, ny := tile.X+d[0], tile.Y+d[1]
		t, ok := s.TileAt(nx, ny)
		if !ok {
			continue
		}
		if walkable && !s.IsWalkable(t.Coord(), withAgents, companion) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ParcelByID returns the parcel with the given id, or false if not present.
func (s *Snapshot) ParcelByID(id string) (Parcel, bool) {
	for _, p := range s.Parcels {
		if p.ID == id {
			return p, true
		}
	}
	return Parcel{}, false
}

// BeliefSet emits directional predicates ("below/above/left/right tileX_Y
// tileX'_Y'") for every pair of walkable, unoccupied adjacent tiles. It exists
// to feed the optional PDDL replanner; the normal A* pathfinder does not use it.
func (s *Snapshot) BeliefSet(withAgents bool, companion *Coord) []string {
	var out []string
	for _, t := range s.WalkableTiles(withAgents, companion) {
		right, ok := s.TileAt(t.X+1, t.Y)
		if ok && s.IsWalkable(right.Coord(), withAgents, companion) {
			out = append(out,
				fmt.Sprintf("right tile%d_%d tile%d_%d", t.X, t.Y, right.X, right.Y),
				fmt.Sprintf("left tile%d_%d tile%d_%d", right.X, right.Y, t.X, t.Y),
			)
		}
		below, ok := s.TileAt(t.X, t.Y+1)
		if ok && s.IsWalkable(below.Coord(), withAgents, companion) {
			out = append(out,
				fmt.Sprintf("below tile%d_%d tile%d_%d", below.X, below.Y, t.X, t.Y),
				fmt.Sprintf("above tile%d_%d tile%d_%d", t.X, t.Y, below.X, below.Y),
			)
		}
	}
	return out
}
