// Package planning implements the Plan Library (spec.md §4.4) and Intention
// (spec.md §4.5) together, since a Plan needs to raise sub-Intentions and an
// Intention needs to try Plans — splitting them into two packages would force
// an import cycle. This mirrors the teacher's own internal/game/ai package,
// which keeps Domain/Method/Operator/Planner/Registry together for the same
// reason.
package planning

import (
	"context"

	"github.com/deliveroo-agent/core/internal/predicate"
)

// Plan is the capability triple spec.md §4.4 describes, minus ParsePredicate:
// predicate.ParseWire already does wire-to-structured parsing (spec.md §9's
// "predicate as sum type" note), so a Plan only needs to decide applicability
// and execute.
//
// Execute must check in.Stopped() before every externally visible action
// (move/pickup/putdown RPC) and return ErrStopped immediately if it is set.
type Plan interface {
	// IsApplicableTo reports whether this Plan can execute p.
	IsApplicableTo(p predicate.Predicate) bool

	// Execute carries out p. in is the owning Intention, used to spawn
	// sub-intentions and to check cooperative cancellation.
	Execute(ctx context.Context, in *Intention, handle AgentHandle, p predicate.Predicate) error
}

// Library is an ordered list of Plans, tried in order by Intention.Achieve.
// The first applicable Plan wins; if it fails, the next applicable Plan (not
// the next Plan in the list) is tried.
type Library []Plan

// DefaultLibrary returns the standard plan library: GoTo, GoPickUp, GoDropOff.
// Swap the GoTo entry for a GoToPDDL instance to use the symbolic planner
// variant (spec.md §4.4, "a drop-in replacement chosen by configuration").
func DefaultLibrary() Library {
	return Library{GoTo{}, GoPickUp{}, GoDropOff{}}
}
