package agent

import (
	"testing"
	"time"

	"github.com/deliveroo-agent/core/internal/client"
	"github.com/deliveroo-agent/core/internal/grid"
	"github.com/deliveroo-agent/core/internal/planning"
	"github.com/deliveroo-agent/core/internal/predicate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopActionClient struct{}

func (noopActionClient) EmitMove(dir client.Direction) (bool, int, int, error) {
	return true, 0, 0, nil
}
func (noopActionClient) EmitPickup() (bool, error)  { return true, nil }
func (noopActionClient) EmitPutdown() (bool, error) { return true, nil }
func (noopActionClient) EmitSay(recipientID string, message []byte) error {
	return nil
}

func flatMap(t *testing.T, width, height int) *grid.WorldMap {
	m := grid.NewWorldMap()
	tiles := make([]grid.Tile, 0, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			tiles = append(tiles, grid.Tile{X: x, Y: y, Type: grid.Other})
		}
	}
	require.NoError(t, m.Init(width, height, tiles))
	return m
}

func newTestAgent(t *testing.T, width, height int, opts ...Option) *Agent {
	m := flatMap(t, width, height)
	a := New("self", "companion", true, false, m, noopActionClient{}, planning.DefaultLibrary(), 4, opts...)
	a.SetPosition(0, 0, 0)
	return a
}

func TestPush_RejectsDuplicatePredicate(t *testing.T) {
	a := newTestAgent(t, 10, 10)
	a.Push(predicate.GoToPredicate(5, 5))
	a.Push(predicate.GoToPredicate(5, 5))
	assert.Equal(t, 1, a.QueueLen())
}

func TestSortIntentionQueue_PriorityScenario(t *testing.T) {
	a := newTestAgent(t, 10, 10)

	a.Push(predicate.GoPickUpPredicate(5, 5, "P1"))
	a.Push(predicate.GoPickUpPredicate(1, 0, "P2"))
	a.Push(predicate.GoDropOffPredicate(3, 3, ""))
	a.Push(predicate.GoToPredicate(7, 7))

	got := a.QueuedPredicates()
	require.Len(t, got, 4)
	assert.Equal(t, "P2", got[0].ParcelID)
	assert.Equal(t, "P1", got[1].ParcelID)
	assert.Equal(t, predicate.GoDropOff, got[2].Action)
	assert.Equal(t, predicate.GoTo, got[3].Action)
}

func TestSortIntentionQueue_CarrySaturationKeepsOnlyDropOff(t *testing.T) {
	a := newTestAgent(t, 10, 10)
	a.maxCarriedParcels = 2
	a.carriedParcelCount = 2

	a.Push(predicate.GoDropOffPredicate(0, 0, ""))
	a.Push(predicate.GoPickUpPredicate(4, 4, "P3"))

	got := a.QueuedPredicates()
	require.Len(t, got, 1)
	assert.Equal(t, predicate.GoDropOff, got[0].Action)
}

func TestPosition_BlocksUntilSetPosition(t *testing.T) {
	m := flatMap(t, 5, 5)
	a := New("self", "", false, false, m, noopActionClient{}, planning.DefaultLibrary(), 4)

	done := make(chan grid.Coord, 1)
	go func() { done <- a.Position() }()

	select {
	case <-done:
		t.Fatal("Position returned before SetPosition was ever called")
	case <-time.After(20 * time.Millisecond):
	}

	a.SetPosition(3, 4, 10)
	select {
	case got := <-done:
		assert.Equal(t, grid.Coord{X: 3, Y: 4}, got)
	case <-time.After(time.Second):
		t.Fatal("Position never unblocked after SetPosition")
	}
}

func TestSortIntentionQueue_BroadcastsPickupIdsInDualAgentModeNone(t *testing.T) {
	var broadcast []string
	m := flatMap(t, 10, 10)
	a := New("self", "companion", true, true, m, noopActionClient{}, planning.DefaultLibrary(), 4,
		WithOnPickupsSorted(func(ids []string) { broadcast = ids }))
	a.SetPosition(0, 0, 0)

	a.Push(predicate.GoPickUpPredicate(5, 5, "P1"))
	a.Push(predicate.GoPickUpPredicate(1, 0, "P2"))

	require.Len(t, broadcast, 2)
	assert.Equal(t, "P2", broadcast[0])
	assert.Equal(t, "P1", broadcast[1])
}

func TestSortIntentionQueue_DoesNotBroadcastWhenNotModeNone(t *testing.T) {
	called := false
	m := flatMap(t, 10, 10)
	a := New("self", "companion", true, true, m, noopActionClient{}, planning.DefaultLibrary(), 4,
		WithOnPickupsSorted(func(ids []string) { called = true }))
	a.SetPosition(0, 0, 0)
	a.SetMode(ModeGather)

	a.Push(predicate.GoPickUpPredicate(5, 5, "P1"))

	assert.False(t, called)
}
