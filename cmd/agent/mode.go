package main

import (
	"github.com/deliveroo-agent/core/internal/agent"
	"github.com/deliveroo-agent/core/internal/option"
)

// toOptionMode converts agent.Mode to option.Mode at the orchestration
// boundary. The two packages deliberately define distinct types
// (internal/option stays a pure function with zero dependency on
// internal/agent; see internal/option/mode.go's doc comment), so cmd/agent
// owns the translation. Coordination goes the other way directly in
// agent.Mode terms (internal/coordination imports internal/agent), so only
// this one direction is needed.
func toOptionMode(m agent.Mode) option.Mode {
	switch m {
	case agent.ModeGather:
		return option.ModeGather
	case agent.ModeDeliver:
		return option.ModeDeliver
	default:
		return option.ModeNone
	}
}
