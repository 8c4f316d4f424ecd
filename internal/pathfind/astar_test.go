package pathfind

import (
	"context"
	"testing"

	"github.com/deliveroo-agent/core/internal/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func flatSnapshot(t *testing.T, width, height int, walls map[grid.Coord]bool) *grid.Snapshot {
	t.Helper()
	tiles := make([]grid.Tile, 0, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			typ := grid.Other
			if walls[grid.Coord{X: x, Y: y}] {
				typ = grid.Wall
			}
			tiles = append(tiles, grid.Tile{X: x, Y: y, Type: typ})
		}
	}
	m := grid.NewWorldMap()
	require.NoError(t, m.Init(width, height, tiles))
	snap, err := m.Snapshot(context.Background())
	require.NoError(t, err)
	return snap
}

func TestFindPath_Basic5x5(t *testing.T) {
	snap := flatSnapshot(t, 5, 5, nil)
	path, err := FindPath(snap, grid.Coord{X: 0, Y: 0}, grid.Coord{X: 2, Y: 3})
	require.NoError(t, err)
	require.NotNil(t, path)
	assert.Len(t, path, 5)
	assert.Equal(t, grid.Coord{X: 2, Y: 3}, path[len(path)-1])
}

func TestFindPath_BlockedColumn(t *testing.T) {
	walls := map[grid.Coord]bool{}
	for y := 0; y < 5; y++ {
		walls[grid.Coord{X: 1, Y: y}] = true
	}
	snap := flatSnapshot(t, 5, 5, walls)
	path, err := FindPath(snap, grid.Coord{X: 0, Y: 0}, grid.Coord{X: 2, Y: 0})
	require.NoError(t, err)
	assert.Nil(t, path)
}

func TestFindPath_SameStartAndEnd_ReturnsEmptyPath(t *testing.T) {
	snap := flatSnapshot(t, 3, 3, nil)
	path, err := FindPath(snap, grid.Coord{X: 1, Y: 1}, grid.Coord{X: 1, Y: 1})
	require.NoError(t, err)
	assert.NotNil(t, path)
	assert.Empty(t, path)
}

func TestFindPath_UnwalkableDestination_ReturnsNil(t *testing.T) {
	walls := map[grid.Coord]bool{{X: 2, Y: 2}: true}
	snap := flatSnapshot(t, 3, 3, walls)
	path, err := FindPath(snap, grid.Coord{X: 0, Y: 0}, grid.Coord{X: 2, Y: 2})
	require.NoError(t, err)
	assert.Nil(t, path)
}

func TestPropertyFindPath_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		width := rapid.IntRange(2, 6).Draw(t, "width")
		height := rapid.IntRange(2, 6).Draw(t, "height")

		walls := map[grid.Coord]bool{}
		nWalls := rapid.IntRange(0, width*height/3).Draw(t, "nWalls")
		for i := 0; i < nWalls; i++ {
			c := grid.Coord{
				X: rapid.IntRange(0, width-1).Draw(t, "wx"),
				Y: rapid.IntRange(0, height-1).Draw(t, "wy"),
			}
			walls[c] = true
		}

		tiles := make([]grid.Tile, 0, width*height)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				typ := grid.Other
				if walls[grid.Coord{X: x, Y: y}] {
					typ = grid.Wall
				}
				tiles = append(tiles, grid.Tile{X: x, Y: y, Type: typ})
			}
		}
		m := grid.NewWorldMap()
		if err := m.Init(width, height, tiles); err != nil {
			t.Fatalf("Init: %v", err)
		}
		snap, err := m.Snapshot(context.Background())
		if err != nil {
			t.Fatalf("Snapshot: %v", err)
		}

		a := grid.Coord{X: rapid.IntRange(0, width-1).Draw(t, "ax"), Y: rapid.IntRange(0, height-1).Draw(t, "ay")}
		b := grid.Coord{X: rapid.IntRange(0, width-1).Draw(t, "bx"), Y: rapid.IntRange(0, height-1).Draw(t, "by")}

		path, err := FindPath(snap, a, b)
		if err != nil {
			t.Fatalf("FindPath returned error: %v", err)
		}
		if path == nil {
			return // null ⇒ unreachable or unwalkable destination; nothing more to check.
		}
		if len(path) == 0 {
			if a != b {
				t.Fatalf("empty path returned for distinct start/end %v != %v", a, b)
			}
			return
		}

		if !a.Adjacent(path[0]) {
			t.Fatalf("path[0] %v is not adjacent to start %v", path[0], a)
		}
		if path[len(path)-1] != b {
			t.Fatalf("path does not end at destination: got %v want %v", path[len(path)-1], b)
		}
		for i := 1; i < len(path); i++ {
			if !path[i-1].Adjacent(path[i]) {
				t.Fatalf("path[%d] %v is not adjacent to path[%d] %v", i, path[i], i-1, path[i-1])
			}
		}
		for _, c := range path {
			if !snap.IsWalkable(c, false, nil) {
				t.Fatalf("path tile %v is not walkable", c)
			}
		}
	})
}
