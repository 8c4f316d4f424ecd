package option

import (
	"testing"

	"github.com/deliveroo-agent/core/internal/grid"
	"github.com/deliveroo-agent/core/internal/predicate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatSnapshot(width, height int) *grid.Snapshot {
	tiles := make([]grid.Tile, 0, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			tiles = append(tiles, grid.Tile{X: x, Y: y, Type: grid.Other})
		}
	}
	return &grid.Snapshot{Width: width, Height: height, Tiles: tiles}
}

type fixedSource struct{ n int }

func (f fixedSource) Intn(n int) int { return f.n % n }

func TestGenerateNormal_ProposesPickupsForUnignoredParcels(t *testing.T) {
	snap := flatSnapshot(10, 10)
	snap.Parcels = []grid.Parcel{
		{ID: "P1", X: 2, Y: 2},
		{ID: "P2", X: 3, Y: 3, CarriedBy: "other"},
		{ID: "P3", X: 4, Y: 4},
	}
	state := State{
		Position:        grid.Coord{X: 0, Y: 0},
		Mode:            ModeNone,
		ParcelsToIgnore: map[string]struct{}{"P3": {}},
	}

	result := Generate(snap, state, Config{MaxDistanceForRandomMove: 5}, fixedSource{0})

	require.Len(t, result.Predicates, 1)
	assert.Equal(t, predicate.GoPickUp, result.Predicates[0].Action)
	assert.Equal(t, "P1", result.Predicates[0].ParcelID)
}

func TestGenerateNormal_DropsOffAtNearestDepotWhenCarrying(t *testing.T) {
	snap := flatSnapshot(10, 10)
	snap.DepotTiles = []grid.Tile{{X: 9, Y: 9, Type: grid.Depot}, {X: 1, Y: 0, Type: grid.Depot}}
	for _, d := range snap.DepotTiles {
		snap.Tiles[d.Y*snap.Width+d.X] = d
	}
	state := State{
		Position:           grid.Coord{X: 0, Y: 0},
		Mode:                ModeNone,
		CarriedParcelCount: 1,
	}

	result := Generate(snap, state, Config{MaxDistanceForRandomMove: 5}, fixedSource{0})

	require.Len(t, result.Predicates, 1)
	assert.Equal(t, predicate.GoDropOff, result.Predicates[0].Action)
	assert.Equal(t, 1, result.Predicates[0].X)
	assert.Equal(t, 0, result.Predicates[0].Y)
}

func TestGenerateNormal_FallsBackToRandomSpawnWhenNothingElse(t *testing.T) {
	snap := flatSnapshot(10, 10)
	snap.SpawnTiles = []grid.Tile{{X: 2, Y: 0, Type: grid.Spawn}}
	for _, s := range snap.SpawnTiles {
		snap.Tiles[s.Y*snap.Width+s.X] = s
	}
	state := State{Position: grid.Coord{X: 0, Y: 0}, Mode: ModeNone}

	result := Generate(snap, state, Config{MaxDistanceForRandomMove: 5}, fixedSource{0})

	require.Len(t, result.Predicates, 1)
	assert.Equal(t, predicate.GoTo, result.Predicates[0].Action)
	assert.Equal(t, 2, result.Predicates[0].X)
}

func TestGenerateGather_SkipsParcelAlreadyAtDeliveryTile(t *testing.T) {
	snap := flatSnapshot(10, 10)
	snap.Parcels = []grid.Parcel{
		{ID: "P1", X: 5, Y: 5},
		{ID: "P2", X: 2, Y: 2},
	}
	dt := grid.Coord{X: 5, Y: 5}
	state := State{
		Position:     grid.Coord{X: 0, Y: 0},
		Mode:         ModeGather,
		DeliveryTile: &dt,
	}

	result := Generate(snap, state, Config{}, fixedSource{0})

	require.Len(t, result.Predicates, 1)
	assert.Equal(t, "P2", result.Predicates[0].ParcelID)
}

func TestGenerateGather_DropsOffAtDeliveryTileWhenCarrying(t *testing.T) {
	snap := flatSnapshot(10, 10)
	dt := grid.Coord{X: 4, Y: 4}
	state := State{
		Position:           grid.Coord{X: 0, Y: 0},
		Mode:                ModeGather,
		CarriedParcelCount: 1,
		DeliveryTile:       &dt,
	}

	result := Generate(snap, state, Config{}, fixedSource{0})

	require.Len(t, result.Predicates, 1)
	assert.Equal(t, predicate.GoDropOff, result.Predicates[0].Action)
	assert.Equal(t, 4, result.Predicates[0].X)
}

func TestGenerateGather_FallsBackToFirstSpawnWhenEmpty(t *testing.T) {
	snap := flatSnapshot(10, 10)
	snap.SpawnTiles = []grid.Tile{{X: 1, Y: 1, Type: grid.Spawn}, {X: 8, Y: 8, Type: grid.Spawn}}
	state := State{Position: grid.Coord{X: 0, Y: 0}, Mode: ModeGather}

	result := Generate(snap, state, Config{}, fixedSource{0})

	require.Len(t, result.Predicates, 1)
	assert.Equal(t, predicate.GoTo, result.Predicates[0].Action)
	assert.Equal(t, 1, result.Predicates[0].X)
	assert.Equal(t, 1, result.Predicates[0].Y)
}

func TestGenerateDeliver_GoesToDepotWhenNotCarryingAndAway(t *testing.T) {
	snap := flatSnapshot(10, 10)
	depot := grid.Coord{X: 9, Y: 9}
	state := State{
		Position: grid.Coord{X: 0, Y: 0},
		Mode:     ModeDeliver,
		Depot:    &depot,
	}

	result := Generate(snap, state, Config{MaxRetryCommonDelivery: 0}, fixedSource{0})

	require.NotEmpty(t, result.Predicates)
	assert.Equal(t, predicate.GoTo, result.Predicates[0].Action)
	assert.Equal(t, 9, result.Predicates[0].X)
}

func TestGenerateDeliver_OnlyPicksUpParcelsOnDeliveryTile(t *testing.T) {
	snap := flatSnapshot(10, 10)
	depot := grid.Coord{X: 0, Y: 0}
	dt := grid.Coord{X: 3, Y: 3}
	snap.Parcels = []grid.Parcel{
		{ID: "P1", X: 3, Y: 3},
		{ID: "P2", X: 7, Y: 7},
	}
	state := State{
		Position:        grid.Coord{X: 0, Y: 0},
		Mode:            ModeDeliver,
		Depot:           &depot,
		DeliveryTile:    &dt,
		DeliveryRetries: 99,
	}

	result := Generate(snap, state, Config{MaxRetryCommonDelivery: 1}, fixedSource{0})

	require.Len(t, result.Predicates, 1)
	assert.Equal(t, "P1", result.Predicates[0].ParcelID)
	assert.False(t, result.RetriedCommonDelivery)
}

func TestGenerateDeliver_DropsOffAtDepotWhenCarrying(t *testing.T) {
	snap := flatSnapshot(10, 10)
	depot := grid.Coord{X: 0, Y: 0}
	state := State{
		Position:           grid.Coord{X: 0, Y: 0},
		Mode:                ModeDeliver,
		Depot:              &depot,
		CarriedParcelCount: 1,
		DeliveryRetries:    99,
	}

	result := Generate(snap, state, Config{MaxRetryCommonDelivery: 1}, fixedSource{0})

	require.Len(t, result.Predicates, 1)
	assert.Equal(t, predicate.GoDropOff, result.Predicates[0].Action)
}

func TestGenerateDeliver_NegotiatesDeliveryTileWhenUnsetAndUnderBudget(t *testing.T) {
	snap := flatSnapshot(10, 10)
	snap.SpawnTiles = []grid.Tile{{X: 5, Y: 5, Type: grid.Spawn}}
	depot := grid.Coord{X: 0, Y: 0}
	state := State{
		Position:        grid.Coord{X: 0, Y: 0},
		Mode:            ModeDeliver,
		Depot:           &depot,
		DeliveryRetries: 0,
	}

	result := Generate(snap, state, Config{MaxRetryCommonDelivery: 3}, fixedSource{0})

	assert.True(t, result.RetriedCommonDelivery)
	require.NotNil(t, result.NegotiatedDeliveryTile)
	assert.Equal(t, grid.Coord{X: 5, Y: 5}, *result.NegotiatedDeliveryTile)
}

func TestFindCommonDeliveryTile_AcceptsFirstReachableUnavoidedCandidate(t *testing.T) {
	snap := flatSnapshot(10, 10)
	from := grid.Coord{X: 0, Y: 0}

	got, ok := findCommonDeliveryTile(snap, from, []grid.Coord{{X: 5, Y: 5}})

	require.True(t, ok)
	assert.Equal(t, grid.Coord{X: 5, Y: 5}, got)
}

func TestFindCommonDeliveryTile_SkipsAlreadyAvoidedAndExpandsNeighbours(t *testing.T) {
	snap := flatSnapshot(10, 10)
	from := grid.Coord{X: 0, Y: 0}
	blocked := grid.Coord{X: 3, Y: 3}
	markAvoided(blocked)
	defer func() {
		tilesToAvoidMu.Lock()
		delete(tilesToAvoid, blocked)
		tilesToAvoidMu.Unlock()
	}()

	got, ok := findCommonDeliveryTile(snap, from, []grid.Coord{blocked})

	require.True(t, ok)
	assert.NotEqual(t, blocked, got)
}

func TestFindCommonDeliveryTile_ReturnsFalseWhenFrontierExhausted(t *testing.T) {
	snap := &grid.Snapshot{Width: 1, Height: 1, Tiles: []grid.Tile{{X: 0, Y: 0, Type: grid.Wall}}}
	from := grid.Coord{X: 0, Y: 0}

	_, ok := findCommonDeliveryTile(snap, from, []grid.Coord{{X: 0, Y: 0}})

	assert.False(t, ok)
}
