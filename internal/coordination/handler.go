package coordination

import (
	"context"
	"fmt"

	"github.com/deliveroo-agent/core/internal/agent"
	"github.com/deliveroo-agent/core/internal/grid"
	"github.com/deliveroo-agent/core/internal/message"
	"github.com/deliveroo-agent/core/internal/pathfind"
)

// Handler applies received coordination messages to a worker's Control and,
// for companion_position on the leader, runs first-contact role election.
// All methods are meant to be invoked from the Post-ed closure the owning
// agent loop runs, preserving the single-owner invariant (spec.md §5).
type Handler struct {
	ctrl   Control
	sender Sender
}

// NewHandler builds a Handler bound to one worker's Control and Sender.
func NewHandler(ctrl Control, sender Sender) *Handler {
	return &Handler{ctrl: ctrl, sender: sender}
}

// Handle dispatches env to the matching per-action handler.
func (h *Handler) Handle(ctx context.Context, env message.Envelope) error {
	switch env.Action {
	case message.MultiPickup:
		return h.handleMultiPickup(env)
	case message.CompanionPosition:
		return h.handleCompanionPosition(ctx, env)
	case message.Hand2Hand:
		return h.handleHand2Hand(ctx, env)
	case message.DeliveryTile:
		return h.handleDeliveryTile(env)
	default:
		return fmt.Errorf("coordination: unhandled action %q: %w", env.Action, ErrProtocolViolation)
	}
}

// handleMultiPickup implements spec.md §4.8: "replace the receiver's
// parcelsToIgnore with parcelIds."
func (h *Handler) handleMultiPickup(env message.Envelope) error {
	if env.MultiPickup == nil {
		return fmt.Errorf("coordination: multi_pickup with no payload: %w", ErrProtocolViolation)
	}
	h.ctrl.SetParcelsToIgnore(env.MultiPickup.ParcelIDs)
	return nil
}

// handleCompanionPosition implements spec.md §4.8's companion_position
// handler: update the sender's tile in the receiver's world map, and, on the
// leader, run role election on first reception.
func (h *Handler) handleCompanionPosition(ctx context.Context, env message.Envelope) error {
	if env.CompanionPosition == nil {
		return fmt.Errorf("coordination: companion_position with no payload: %w", ErrProtocolViolation)
	}
	c := grid.Coord{X: env.CompanionPosition.X, Y: env.CompanionPosition.Y}
	if h.ctrl.IsLeader() {
		h.ctrl.Map().SetFollowerPosition(c)
	} else {
		h.ctrl.Map().SetLeaderPosition(c)
	}

	if !h.ctrl.IsLeader() || h.ctrl.IsInitialized() {
		return nil
	}
	return h.runElection(ctx)
}

// runElection implements spec.md §4.8's leader-side role election: compute
// canDeliver/canGather reachability from the leader's own position, then
// command a behavior.
func (h *Handler) runElection(ctx context.Context) error {
	snap, err := h.ctrl.Map().Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("coordination: election snapshot: %w", err)
	}
	pos := h.ctrl.Position()
	canDeliver := reachableAny(snap, pos, snap.DepotTiles)
	canGather := reachableAny(snap, pos, snap.SpawnTiles)

	var behavior message.Behavior
	switch {
	case !canDeliver:
		behavior = message.BehaviorDeliver
		h.ctrl.SetMode(agent.ModeGather)
	case !canGather:
		behavior = message.BehaviorGather
		h.ctrl.SetMode(agent.ModeDeliver)
	default:
		behavior = message.BehaviorNone
	}

	h.ctrl.SetInitialized(true)
	return h.send(ctx, message.NewHand2Hand(behavior))
}

// handleHand2Hand implements spec.md §4.8's follower-side hand2hand
// handler: switch to the commanded mode, verifying the follower itself has
// the reachability the commanded mode requires.
func (h *Handler) handleHand2Hand(ctx context.Context, env message.Envelope) error {
	if env.Hand2Hand == nil {
		return fmt.Errorf("coordination: hand2hand with no payload: %w", ErrProtocolViolation)
	}
	snap, err := h.ctrl.Map().Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("coordination: hand2hand snapshot: %w", err)
	}
	pos := h.ctrl.Position()

	switch env.Hand2Hand.Behavior {
	case message.BehaviorDeliver:
		if !reachableAny(snap, pos, snap.DepotTiles) {
			violation := fmt.Errorf("coordination: commanded Deliver with no reachable depot: %w", ErrProtocolViolation)
			h.ctrl.Fatal(violation)
			return violation
		}
		h.ctrl.SetMode(agent.ModeDeliver)
	case message.BehaviorGather:
		if !reachableAny(snap, pos, snap.SpawnTiles) {
			violation := fmt.Errorf("coordination: commanded Gather with no reachable spawn: %w", ErrProtocolViolation)
			h.ctrl.Fatal(violation)
			return violation
		}
		h.ctrl.SetMode(agent.ModeGather)
	case message.BehaviorNone:
		h.ctrl.SetMode(agent.ModeNone)
	default:
		violation := fmt.Errorf("coordination: unknown hand2hand behavior %q: %w", env.Hand2Hand.Behavior, ErrProtocolViolation)
		h.ctrl.Fatal(violation)
		return violation
	}

	h.ctrl.SetInitialized(true)
	return nil
}

// handleDeliveryTile implements spec.md §4.8's delivery_tile handler: a
// gather agent records the negotiated tile; a deliverer that receives an
// error status clears its own, forcing re-negotiation.
func (h *Handler) handleDeliveryTile(env message.Envelope) error {
	if env.DeliveryTile == nil {
		return fmt.Errorf("coordination: delivery_tile with no payload: %w", ErrProtocolViolation)
	}
	switch env.DeliveryTile.Status {
	case message.DeliveryTileSet:
		h.ctrl.SetDeliveryTile(grid.Coord{X: env.DeliveryTile.X, Y: env.DeliveryTile.Y})
	case message.DeliveryTileError:
		h.ctrl.ClearDeliveryTile()
	default:
		return fmt.Errorf("coordination: delivery_tile with unknown status %q: %w", env.DeliveryTile.Status, ErrProtocolViolation)
	}
	return nil
}

func (h *Handler) send(ctx context.Context, env message.Envelope) error {
	return h.Send(ctx, env)
}

// Send encodes env and delivers it to the companion. Exported so callers
// outside Handle (sortIntentionQueue's multi_pickup broadcast, the option
// generator's delivery_tile{set}, and the companion_position report sent on
// each own-position update) can reuse the same encode-and-deliver path.
func (h *Handler) Send(ctx context.Context, env message.Envelope) error {
	data, err := message.Encode(env)
	if err != nil {
		return fmt.Errorf("coordination: encode %s: %w", env.Action, err)
	}
	return h.sender.SendToCompanion(ctx, data)
}

// reachableAny reports whether any of tiles has an A* path from pos.
func reachableAny(snap *grid.Snapshot, pos grid.Coord, tiles []grid.Tile) bool {
	for _, t := range tiles {
		path, err := pathfind.FindPath(snap, pos, t.Coord())
		if err == nil && path != nil {
			return true
		}
	}
	return false
}
