// Package predicate defines the tagged-variant desire/intention payload the
// option generator produces and the plan library consumes: go_to, go_pick_up,
// and go_drop_off.
package predicate

import (
	"errors"
	"fmt"
)

// ErrMalformedPredicate is returned by ParseWire when a required field is
// missing (spec.md §7, "malformed predicate" — a hard error at parse time).
var ErrMalformedPredicate = errors.New("predicate: malformed predicate")

// Action tags the kind of predicate.
type Action int

const (
	// GoTo moves the agent to a coordinate with no other side effect.
	GoTo Action = iota
	// GoPickUp moves to a coordinate and picks up a specific parcel.
	GoPickUp
	// GoDropOff moves to a coordinate and drops off all carried parcels.
	GoDropOff
)

func (a Action) String() string {
	switch a {
	case GoTo:
		return "go_to"
	case GoPickUp:
		return "go_pick_up"
	case GoDropOff:
		return "go_drop_off"
	default:
		return fmt.Sprintf("unknown_action(%d)", int(a))
	}
}

// Predicate is the tagged tuple go_to(x,y) | go_pick_up(x,y,parcelId) |
// go_drop_off(x,y,depotId?).
//
// DepotID is a hint only: GoDropOff's executor never uses it to pick a depot (it
// routes to X, Y, which whoever pushed the predicate already resolved).
type Predicate struct {
	Action   Action
	X, Y     int
	ParcelID string  // required for GoPickUp, empty otherwise
	DepotID  *string // optional hint for GoDropOff, nil otherwise
}

// GoToPredicate builds a go_to(x,y) predicate.
func GoToPredicate(x, y int) Predicate {
	return Predicate{Action: GoTo, X: x, Y: y}
}

// GoPickUpPredicate builds a go_pick_up(x,y,parcelId) predicate.
//
// Precondition: parcelID must be non-empty.
func GoPickUpPredicate(x, y int, parcelID string) Predicate {
	return Predicate{Action: GoPickUp, X: x, Y: y, ParcelID: parcelID}
}

// GoDropOffPredicate builds a go_drop_off(x,y,depotId?) predicate. depotID may be
// empty, in which case the resulting predicate carries no depot hint.
func GoDropOffPredicate(x, y int, depotID string) Predicate {
	p := Predicate{Action: GoDropOff, X: x, Y: y}
	if depotID != "" {
		p.DepotID = &depotID
	}
	return p
}

// Equal reports whether two predicates are element-wise equal. DepotID is
// compared by value (nil and non-nil are never equal; two non-nil pointers with
// the same string value are equal), matching spec.md's "identical predicate
// (element-wise)" dedup rule.
func (p Predicate) Equal(other Predicate) bool {
	if p.Action != other.Action || p.X != other.X || p.Y != other.Y || p.ParcelID != other.ParcelID {
		return false
	}
	if (p.DepotID == nil) != (other.DepotID == nil) {
		return false
	}
	if p.DepotID != nil && *p.DepotID != *other.DepotID {
		return false
	}
	return true
}

// String renders a debugging representation, e.g. "go_pick_up(3,4,P7)".
func (p Predicate) String() string {
	switch p.Action {
	case GoPickUp:
		return fmt.Sprintf("go_pick_up(%d,%d,%s)", p.X, p.Y, p.ParcelID)
	case GoDropOff:
		if p.DepotID != nil {
			return fmt.Sprintf("go_drop_off(%d,%d,%s)", p.X, p.Y, *p.DepotID)
		}
		return fmt.Sprintf("go_drop_off(%d,%d)", p.X, p.Y)
	default:
		return fmt.Sprintf("go_to(%d,%d)", p.X, p.Y)
	}
}

// ParseWire parses the predicate encoded as a wire tuple:
// [action, x, y, idOrDepot] where idOrDepot is the parcel id for go_pick_up and
// an optional depot-id hint for go_drop_off. Logical fallback is used for the
// optional fourth element — a missing or empty value falls back to "no hint",
// never a bitwise-OR footgun (spec.md §9 open question).
//
// Precondition: tuple[0] must be one of "go_to", "go_pick_up", "go_drop_off".
func ParseWire(action string, x, y int, idOrDepot string) (Predicate, error) {
	switch action {
	case "go_to":
		return GoToPredicate(x, y), nil
	case "go_pick_up":
		if idOrDepot == "" {
			return Predicate{}, fmt.Errorf("predicate.ParseWire: go_pick_up requires a parcel id: %w", ErrMalformedPredicate)
		}
		return GoPickUpPredicate(x, y, idOrDepot), nil
	case "go_drop_off":
		return GoDropOffPredicate(x, y, idOrDepot), nil
	default:
		return Predicate{}, fmt.Errorf("predicate.ParseWire: unknown action %q: %w", action, ErrMalformedPredicate)
	}
}
