// Package coordination implements the dual-agent coordination protocol
// (spec.md §4.8, C8): the message handlers for multi_pickup,
// companion_position, hand2hand, and delivery_tile, plus the leader-side
// role-election logic that drives an agent's hand-to-hand behavior.
//
// Unlike internal/planning, Handler imports internal/agent directly: agent
// has no reason to ever import coordination (role election is driven from
// cmd/agent, outside-in), so there is no cycle to avoid. Control stays an
// interface purely for test substitution.
package coordination

import (
	"context"
	"errors"

	"github.com/deliveroo-agent/core/internal/agent"
	"github.com/deliveroo-agent/core/internal/client"
	"github.com/deliveroo-agent/core/internal/grid"
)

// ErrProtocolViolation is fatal for the worker that receives it: an
// unexpected hand-to-hand behavior request has broken the coordination
// assumption the protocol depends on (spec.md §7).
var ErrProtocolViolation = errors.New("coordination: protocol violation")

// Control is the subset of agent state a Handler reads and mutates in
// response to a coordination message. *agent.Agent satisfies this.
type Control interface {
	IsLeader() bool
	Mode() agent.Mode
	SetMode(agent.Mode)

	Map() *grid.WorldMap
	Position() grid.Coord

	Depot() *grid.Coord
	SetDepot(grid.Coord)

	DeliveryTile() *grid.Coord
	SetDeliveryTile(grid.Coord)
	ClearDeliveryTile()

	ParcelsToIgnore() map[string]struct{}
	SetParcelsToIgnore(ids []string)

	IsInitialized() bool
	SetInitialized(bool)

	CompanionID() string
	ActionClient() client.ActionClient

	Fatal(error)
}

// Sender delivers a coordination message to the companion agent.
type Sender interface {
	SendToCompanion(ctx context.Context, data []byte) error
}

// actionClientSender adapts a Control's ActionClient/CompanionID into a
// Sender, so callers that don't need a custom transport can use
// NewActionClientSender instead of writing their own adapter.
type actionClientSender struct {
	ctrl Control
}

// NewActionClientSender builds a Sender that delivers via
// ctrl.ActionClient().EmitSay to ctrl.CompanionID().
func NewActionClientSender(ctrl Control) Sender {
	return &actionClientSender{ctrl: ctrl}
}

func (s *actionClientSender) SendToCompanion(ctx context.Context, data []byte) error {
	return s.ctrl.ActionClient().EmitSay(s.ctrl.CompanionID(), data)
}
