package option

import "fmt"

// Mode mirrors the hand-to-hand behavior an agent is running. It is
// deliberately not the same type as internal/agent's Mode: Generate is
// meant to be a pure function of beliefs plus mode (spec.md §4.7) with no
// dependency on the agent package at all — callers convert at the boundary.
type Mode int

const (
	ModeNone Mode = iota
	ModeGather
	ModeDeliver
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeGather:
		return "gather"
	case ModeDeliver:
		return "deliver"
	default:
		return fmt.Sprintf("unknown_mode(%d)", int(m))
	}
}
