// Package grid implements the authoritative spatial belief the agent holds about the
// game map: tiles, depots, spawns, parcels, adversary agents, and the companion's
// last-known position.
package grid

import "fmt"

// TileType classifies a single grid cell.
type TileType int

const (
	// Wall tiles are never walkable.
	Wall TileType = iota
	// Spawn tiles are parcel-spawn areas.
	Spawn
	// Depot tiles accept parcel drop-offs.
	Depot
	// Other tiles are plain walkable ground.
	Other
)

func (t TileType) String() string {
	switch t {
	case Wall:
		return "wall"
	case Spawn:
		return "spawn"
	case Depot:
		return "depot"
	case Other:
		return "other"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// Coord is an integer grid coordinate.
type Coord struct {
	X, Y int
}

// Manhattan returns the Manhattan distance between c and other.
func (c Coord) Manhattan(other Coord) int {
	return absInt(c.X-other.X) + absInt(c.Y-other.Y)
}

// Adjacent reports whether other is a 4-connected neighbor of c.
func (c Coord) Adjacent(other Coord) bool {
	return c.Manhattan(other) == 1
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Tile is a single cell of the map.
//
// Invariant: a Tile stored in a WorldMap satisfies 0 <= X < width && 0 <= Y < height.
type Tile struct {
	X, Y int
	Type TileType
}

// Coord returns the tile's coordinate.
func (t Tile) Coord() Coord {
	return Coord{X: t.X, Y: t.Y}
}
