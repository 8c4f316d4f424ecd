package agent

import "fmt"

// Mode is the hand-to-hand coordination behavior a dual-agent worker is
// running (spec.md §4.7/§4.8). A single-agent worker stays in ModeNone for
// its entire lifetime.
type Mode int

const (
	// ModeNone is the default, independent-operation behavior.
	ModeNone Mode = iota
	// ModeGather is the "pick up and hand off at a shared tile" half of a
	// hand-to-hand pairing.
	ModeGather
	// ModeDeliver is the "receive at the shared tile and deliver" half.
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
