package grid

import (
	"context"
	"fmt"
	"sync"
)

// WorldMap is the authoritative spatial belief the agent maintains about the game
// world: tiles, depots, spawns, parcels, adversary agents, and the companion's
// last-known position.
//
// WorldMap is safe for concurrent use: the world-state observer writes under Lock,
// and every reader takes a consistent snapshot under RLock before releasing the
// mutex, so a read never observes a partially-updated map (SPEC_FULL §5).
type WorldMap struct {
	mu sync.RWMutex

	width, height int
	tiles         []Tile // y*width+x
	depotTiles    []Tile
	spawnTiles    []Tile

	parcels     map[string]Parcel
	adversaries map[string]AdversaryAgent

	leaderPosition   *Coord
	followerPosition *Coord

	populated   bool
	populatedCh chan struct{}
}

// NewWorldMap returns an empty, not-yet-populated WorldMap.
func NewWorldMap() *WorldMap {
	return &WorldMap{
		parcels:     make(map[string]Parcel),
		adversaries: make(map[string]AdversaryAgent),
		populatedCh: make(chan struct{}),
	}
}

// Init sets the map dimensions and tile contents. It is expected to be called
// exactly once, from the world-state observer's onMap handler.
//
// Precondition: len(tiles) == width*height; every tile's X/Y matches its index.
// Postcondition: depotTiles and spawnTiles are rebuilt from the tile list; readers
// blocked in a wait-for-populated call are released.
func (m *WorldMap) Init(width, height int, tiles []Tile) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("grid.WorldMap.Init: width and height must be positive, got %dx%d", width, height)
	}
	if len(tiles) != width*height {
		return fmt.Errorf("grid.WorldMap.Init: expected %d tiles, got %d", width*height, len(tiles))
	}

	depots := make([]Tile, 0, 4)
	spawns := make([]Tile, 0, 4)
	for i, t := range tiles {
		wantX, wantY := i%width, i/width
		if t.X != wantX || t.Y != wantY {
			return fmt.Errorf("grid.WorldMap.Init: tile at index %d has coord (%d,%d), expected (%d,%d)", i, t.X, t.Y, wantX, wantY)
		}
		switch t.Type {
		case Depot:
			depots = append(depots, t)
		case Spawn:
			spawns = append(spawns, t)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.width, m.height = width, height
	m.tiles = append([]Tile(nil), tiles...)
	m.depotTiles = depots
	m.spawnTiles = spawns

	if !m.populated {
		m.populated = true
		close(m.populatedCh)
	}
	return nil
}

// UpdateTile replaces the tile at the given coordinate.
//
// Precondition: the coordinate must be in bounds.
func (m *WorldMap) UpdateTile(t Tile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.inBoundsLocked(t.X, t.Y) {
		return fmt.Errorf("grid.WorldMap.UpdateTile: (%d,%d) out of bounds %dx%d", t.X, t.Y, m.width, m.height)
	}
	idx := t.Y*m.width + t.X
	old := m.tiles[idx]
	m.tiles[idx] = t

	if old.Type == Depot && t.Type != Depot {
		m.depotTiles = removeTile(m.depotTiles, old)
	}
	if old.Type == Spawn && t.Type != Spawn {
		m.spawnTiles = removeTile(m.spawnTiles, old)
	}
	if t.Type == Depot && old.Type != Depot {
		m.depotTiles = append(m.depotTiles, t)
	}
	if t.Type == Spawn && old.Type != Spawn {
		m.spawnTiles = append(m.spawnTiles, t)
	}
	return nil
}

func removeTile(tiles []Tile, target Tile) []Tile {
	out := tiles[:0]
	for _, t := range tiles {
		if t.X != target.X || t.Y != target.Y {
			out = append(out, t)
		}
	}
	return out
}

func (m *WorldMap) inBoundsLocked(x, y int) bool {
	return x >= 0 && x < m.width && y >= 0 && y < m.height
}

// UpdateParcels drops expired parcels, then upserts newParcels by id, keeping the
// newer timestamp on conflict. Parcels with a non-empty CarriedBy, and new
// parcels that are already expired at now, are ignored.
func (m *WorldMap) UpdateParcels(newParcels []Parcel, now int64, decayIntervalSeconds int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, p := range m.parcels {
		if p.IsExpired(now, decayIntervalSeconds) {
			delete(m.parcels, id)
		}
	}
	for _, np := range newParcels {
		if np.CarriedBy != "" || np.IsExpired(now, decayIntervalSeconds) {
			continue
		}
		if existing, ok := m.parcels[np.ID]; ok && existing.Timestamp >= np.Timestamp {
			continue
		}
		m.parcels[np.ID] = np
	}
}

// ParcelPickedUp removes the parcel with the given id, if present.
func (m *WorldMap) ParcelPickedUp(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.parcels, id)
}

// UpdateAdversaryAgents upserts each entry by id, keeping the newer timestamp.
func (m *WorldMap) UpdateAdversaryAgents(agents []AdversaryAgent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range agents {
		if existing, ok := m.adversaries[a.ID]; ok && existing.Timestamp >= a.Timestamp {
			continue
		}
		m.adversaries[a.ID] = a
	}
}

// SetLeaderPosition records the leader's last-known coordinate.
func (m *WorldMap) SetLeaderPosition(c Coord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cc := c
	m.leaderPosition = &cc
}

// SetFollowerPosition records the follower's last-known coordinate.
func (m *WorldMap) SetFollowerPosition(c Coord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cc := c
	m.followerPosition = &cc
}

// Populated reports, without blocking, whether Init has been called at least
// once.
func (m *WorldMap) Populated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.populated
}

// waitPopulated blocks until Init has been called at least once, or ctx is done.
func (m *WorldMap) waitPopulated(ctx context.Context) error {
	m.mu.RLock()
	populated := m.populated
	ch := m.populatedCh
	m.mu.RUnlock()
	if populated {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns a point-in-time, independently-owned copy of the map's belief
// state, blocking until the map has been populated at least once.
func (m *WorldMap) Snapshot(ctx context.Context) (*Snapshot, error) {
	if err := m.waitPopulated(ctx); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := &Snapshot{
		Width:  m.width,
		Height: m.height,
		Tiles:  append([]Tile(nil), m.tiles...),
	}
	snap.DepotTiles = append([]Tile(nil), m.depotTiles...)
	snap.SpawnTiles = append([]Tile(nil), m.spawnTiles...)
	for _, p := range m.parcels {
		snap.Parcels = append(snap.Parcels, p)
	}
	for _, a := range m.adversaries {
		snap.Adversaries = append(snap.Adversaries, a)
	}
	if m.leaderPosition != nil {
		lp := *m.leaderPosition
		snap.LeaderPosition = &lp
	}
	if m.followerPosition != nil {
		fp := *m.followerPosition
		snap.FollowerPosition = &fp
	}
	return snap, nil
}

// WalkableTiles blocks until populated, then returns a walkable-tile snapshot.
// See Snapshot.WalkableTiles for the walkability rule.
func (m *WorldMap) WalkableTiles(ctx context.Context, withAgents bool, companion *Coord) ([]Tile, error) {
	snap, err := m.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.WalkableTiles(withAgents, companion), nil
}

// NeighborTiles blocks until populated, then returns tile's 4-connected
// in-bounds neighbors, optionally intersected with walkable tiles.
func (m *WorldMap) NeighborTiles(ctx context.Context, tile Tile, walkable bool, withAgents bool, companion *Coord) ([]Tile, error) {
	snap, err := m.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.NeighborTiles(tile, walkable, withAgents, companion), nil
}

// DepotTiles blocks until populated, then returns the current depot tiles.
func (m *WorldMap) DepotTiles(ctx context.Context) ([]Tile, error) {
	snap, err := m.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.DepotTiles, nil
}

// SpawnTiles blocks until populated, then returns the current spawn tiles.
func (m *WorldMap) SpawnTiles(ctx context.Context) ([]Tile, error) {
	snap, err := m.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.SpawnTiles, nil
}
