package planning

import "errors"

// Error taxonomy (spec.md §7). These are the only sentinel errors a Plan or
// Intention surfaces; everything else is wrapped with fmt.Errorf and treated
// as an ordinary plan failure (try the next applicable plan).
var (
	// ErrNoPath is returned when the pathfinder finds no route to a GoTo
	// destination. The owning Intention treats this as plan failure and tries
	// the next applicable plan.
	ErrNoPath = errors.New("planning: no path to destination")

	// ErrNoApplicablePlan is returned by Intention.Achieve when no plan in the
	// library matched the predicate, or every applicable plan failed.
	ErrNoApplicablePlan = errors.New("planning: no applicable plan")

	// ErrStopped is the cooperative-cancellation signal. It is never surfaced
	// to a human; the agent loop logs and discards it.
	ErrStopped = errors.New("planning: intention stopped")

	// errActionFailed wraps a hard RPC failure (pickup/putdown RPC returned
	// false after the move to the target tile succeeded, or GoToPDDL's move
	// was still rejected after its retries) that isn't a pathing problem. It still causes "try the next applicable plan", same as
	// ErrNoPath.
	errActionFailed = errors.New("planning: action RPC failed")
)
