// Package option implements the option generator (spec.md §4.7, C7): a pure
// function of beliefs plus mode that proposes predicates for the agent to
// push onto its intention queue. Generate mutates nothing except the
// package-level tilesToAvoid set used by delivery-tile negotiation; the caller
// is responsible for pushing the returned predicates and applying the
// returned delivery-tile negotiation result.
package option

import (
	"github.com/deliveroo-agent/core/internal/grid"
	"github.com/deliveroo-agent/core/internal/predicate"
)

// State is the subset of agent state Generate needs. It is a plain value,
// not an interface onto internal/agent, so this package stays a pure
// function with zero dependency on agent state mutation.
type State struct {
	Position           grid.Coord
	Mode               Mode
	CarriedParcelCount int
	Depot              *grid.Coord // set only in Deliver mode
	DeliveryTile       *grid.Coord // set once negotiated
	DeliveryRetries    int
	ParcelsToIgnore    map[string]struct{}
}

// Config carries the env-driven thresholds Generate consults.
type Config struct {
	MaxDistanceForRandomMove int
	MaxRetryCommonDelivery   int
}

// Result is Generate's pure output: the predicates to push, plus any
// delivery-tile negotiation outcome the caller must apply back onto agent
// state and broadcast over the coordination channel.
type Result struct {
	Predicates []predicate.Predicate

	// NegotiatedDeliveryTile is non-nil when this call just found a shared
	// hand-off tile via findCommonDeliveryTile (Deliver mode only).
	NegotiatedDeliveryTile *grid.Coord

	// RetriedCommonDelivery reports whether this call attempted
	// findCommonDeliveryTile, whether or not it succeeded — the caller
	// should increment its retry counter exactly when this is true.
	RetriedCommonDelivery bool
}
