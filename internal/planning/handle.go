package planning

import (
	"github.com/deliveroo-agent/core/internal/client"
	"github.com/deliveroo-agent/core/internal/grid"
)

// AgentHandle is the narrow view of agent state a Plan needs to execute. It is
// defined here, not in internal/agent, so that internal/agent can implement it
// structurally without internal/planning ever importing internal/agent — the
// "explicit collaborator injected at construction" rule from spec.md §9,
// applied to avoid a Plan→Agent→Plan import cycle.
type AgentHandle interface {
	// Position returns the agent's current coordinate. It blocks until the
	// first sensor-reported position has arrived (spec.md §9's resolved open
	// question: getCurrentPosition is always synchronous, not fire-and-forget).
	Position() grid.Coord

	// Map returns the shared world-state belief.
	Map() *grid.WorldMap

	// ActionClient returns the RPC surface used to move/pickup/putdown.
	ActionClient() client.ActionClient

	// PickedUpParcel notifies the agent that parcel id was picked up:
	// carriedParcelCount increments and the parcel leaves the map.
	PickedUpParcel(id string)

	// DropAllParcels notifies the agent that a putdown succeeded:
	// carriedParcelCount resets to zero.
	DropAllParcels()
}
