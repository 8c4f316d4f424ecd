package option

import (
	"math"

	"github.com/deliveroo-agent/core/internal/grid"
	"github.com/deliveroo-agent/core/internal/pathfind"
	"github.com/deliveroo-agent/core/internal/predicate"
)

// Generate is a pure function of beliefs (snap) plus mode (state.Mode) that
// proposes the predicates the agent should hold in its intention queue
// (spec.md §4.7). It never mutates snap, state, or any package-level state
// other than the TILES_TO_AVOID bookkeeping findCommonDeliveryTile performs.
func Generate(snap *grid.Snapshot, state State, cfg Config, rng Source) Result {
	switch state.Mode {
	case ModeGather:
		return generateGather(snap, state)
	case ModeDeliver:
		return generateDeliver(snap, state, cfg)
	default:
		return generateNormal(snap, state, cfg, rng)
	}
}

func canPickUp(p grid.Parcel, ignore map[string]struct{}) bool {
	if p.CarriedBy != "" {
		return false
	}
	_, ignored := ignore[p.ID]
	return !ignored
}

// generateNormal implements spec.md §4.7's "Normal (hand2Hand=None)" producer.
func generateNormal(snap *grid.Snapshot, state State, cfg Config, rng Source) Result {
	var preds []predicate.Predicate

	for _, p := range snap.Parcels {
		if canPickUp(p, state.ParcelsToIgnore) {
			preds = append(preds, predicate.GoPickUpPredicate(p.X, p.Y, p.ID))
		}
	}

	if state.CarriedParcelCount > 0 {
		if depot := nearestDepot(snap, state.Position); depot != nil {
			preds = append(preds, predicate.GoDropOffPredicate(depot.X, depot.Y, ""))
		}
	}

	if len(preds) == 0 {
		if target := randomSpawnTarget(snap, state.Position, cfg.MaxDistanceForRandomMove, rng); target != nil {
			preds = append(preds, predicate.GoToPredicate(target.X, target.Y))
		}
	}

	return Result{Predicates: preds}
}

// generateGather implements spec.md §4.7's "Gather (hand2Hand=Gather)" producer.
func generateGather(snap *grid.Snapshot, state State) Result {
	var preds []predicate.Predicate
	dt := state.DeliveryTile

	for _, p := range snap.Parcels {
		if !canPickUp(p, state.ParcelsToIgnore) {
			continue
		}
		if dt != nil && p.X == dt.X && p.Y == dt.Y {
			continue
		}
		preds = append(preds, predicate.GoPickUpPredicate(p.X, p.Y, p.ID))
	}

	if state.CarriedParcelCount > 0 && dt != nil {
		preds = append(preds, predicate.GoDropOffPredicate(dt.X, dt.Y, ""))
	}

	if len(preds) == 0 {
		if spawns := snap.SpawnTiles; len(spawns) > 0 {
			first := spawns[0]
			preds = append(preds, predicate.GoToPredicate(first.X, first.Y))
		}
	}

	return Result{Predicates: preds}
}

// generateDeliver implements spec.md §4.7's "Deliver (hand2Hand=Deliver)" producer.
func generateDeliver(snap *grid.Snapshot, state State, cfg Config) Result {
	var preds []predicate.Predicate
	var result Result

	carrying := state.CarriedParcelCount > 0
	depot := state.Depot

	if !carrying && depot != nil && state.Position != *depot {
		preds = append(preds, predicate.GoToPredicate(depot.X, depot.Y))
	}

	dt := state.DeliveryTile
	if dt == nil && state.DeliveryRetries < cfg.MaxRetryCommonDelivery {
		result.RetriedCommonDelivery = true
		if found, ok := findCommonDeliveryTile(snap, state.Position, deliveryCandidates(snap)); ok {
			result.NegotiatedDeliveryTile = &found
			dt = &found
		}
	}

	if dt != nil {
		for _, p := range snap.Parcels {
			if p.X == dt.X && p.Y == dt.Y {
				preds = append(preds, predicate.GoPickUpPredicate(p.X, p.Y, p.ID))
			}
		}
	}

	if carrying && depot != nil {
		preds = append(preds, predicate.GoDropOffPredicate(depot.X, depot.Y, ""))
	}

	result.Predicates = preds
	return result
}

// nearestDepot returns the depot tile with the shortest A* path from pos, or
// nil if no depot is reachable.
func nearestDepot(snap *grid.Snapshot, pos grid.Coord) *grid.Coord {
	var best *grid.Coord
	bestLen := math.MaxInt64
	for _, d := range snap.DepotTiles {
		c := d.Coord()
		path, err := pathfind.FindPath(snap, pos, c)
		if err != nil || path == nil {
			continue
		}
		if len(path) < bestLen {
			bestLen = len(path)
			cc := c
			best = &cc
		}
	}
	return best
}

// randomSpawnTarget implements spec.md §4.7's random-move fallback: filter
// spawn tiles by Euclidean distance, then by path length, falling back to
// the full spawn list when the Euclidean filter leaves nothing.
func randomSpawnTarget(snap *grid.Snapshot, pos grid.Coord, maxDist int, rng Source) *grid.Coord {
	spawns := snap.SpawnTiles
	if len(spawns) == 0 {
		return nil
	}

	var euclidFiltered []grid.Coord
	for _, s := range spawns {
		if euclidean(pos, s.Coord()) <= float64(maxDist) {
			euclidFiltered = append(euclidFiltered, s.Coord())
		}
	}

	candidates := euclidFiltered
	if len(candidates) == 0 {
		candidates = make([]grid.Coord, len(spawns))
		for i, s := range spawns {
			candidates[i] = s.Coord()
		}
	} else if pathFiltered := filterByPathLength(snap, pos, euclidFiltered, maxDist); len(pathFiltered) > 0 {
		candidates = pathFiltered
	}

	if len(candidates) == 0 {
		return nil
	}
	chosen := candidates[rng.Intn(len(candidates))]
	return &chosen
}

func filterByPathLength(snap *grid.Snapshot, pos grid.Coord, coords []grid.Coord, maxDist int) []grid.Coord {
	var out []grid.Coord
	for _, c := range coords {
		path, err := pathfind.FindPath(snap, pos, c)
		if err != nil || path == nil {
			continue
		}
		if len(path) <= maxDist {
			out = append(out, c)
		}
	}
	return out
}

func euclidean(a, b grid.Coord) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// deliveryCandidates seeds findCommonDeliveryTile's search with the current
// spawn tiles — a reasonable shared reference set, since both agents observe
// the same spawn tiles independently.
func deliveryCandidates(snap *grid.Snapshot) []grid.Coord {
	spawns := snap.SpawnTiles
	out := make([]grid.Coord, len(spawns))
	for i, s := range spawns {
		out[i] = s.Coord()
	}
	return out
}
