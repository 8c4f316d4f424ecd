package planning

import (
	"context"
	"errors"
	"sync"

	"github.com/deliveroo-agent/core/internal/predicate"
)

// State is an Intention's lifecycle stage.
type State int

const (
	// Fresh intentions have not had Achieve called yet.
	Fresh State = iota
	// Running intentions are currently inside Achieve.
	Running
	// Completed intentions finished Achieve, successfully or not (err records
	// which).
	Completed
	// Stopped intentions were cancelled via Stop before or during Achieve.
	Stopped
)

// Intention is a single predicate the agent is trying to satisfy, plus the
// machinery to try plans in order and cascade cancellation to sub-intentions
// (spec.md §4.5).
//
// An Intention is not safe to Achieve concurrently from multiple goroutines;
// the single-owner agent loop (spec.md §5) never does so. Stop may be called
// from any goroutine.
type Intention struct {
	predicate predicate.Predicate
	library   Library
	handle    AgentHandle

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	state    State
	done     bool
	err      error
	children []*Intention
}

// New constructs a fresh Intention for p, owned by parentCtx (typically the
// agent's run context, or the parent Intention's context for sub-intentions).
func New(parentCtx context.Context, p predicate.Predicate, library Library, handle AgentHandle) *Intention {
	ctx, cancel := context.WithCancel(parentCtx)
	return &Intention{
		predicate: p,
		library:   library,
		handle:    handle,
		ctx:       ctx,
		cancel:    cancel,
		state:     Fresh,
	}
}

// Predicate returns the predicate this Intention is trying to satisfy.
func (in *Intention) Predicate() predicate.Predicate {
	return in.predicate
}

// State returns the Intention's current lifecycle stage.
func (in *Intention) State() State {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.state
}

// Achieve tries each applicable plan in library order until one succeeds, all
// fail, or the intention is stopped. It is idempotent: a second call returns
// the stored result from the first call without re-executing anything or
// emitting any further RPCs (spec.md §4.5, §8 "Idempotence").
func (in *Intention) Achieve() error {
	in.mu.Lock()
	if in.done {
		err := in.err
		in.mu.Unlock()
		return err
	}
	if in.state == Stopped {
		in.done = true
		in.err = ErrStopped
		err := in.err
		in.mu.Unlock()
		return err
	}
	in.state = Running
	in.mu.Unlock()

	err := in.run()

	in.mu.Lock()
	in.done = true
	in.err = err
	if errors.Is(err, ErrStopped) {
		in.state = Stopped
	} else {
		in.state = Completed
	}
	in.mu.Unlock()
	return err
}

func (in *Intention) run() error {
	for _, plan := range in.library {
		if err := in.checkStopped(); err != nil {
			return err
		}
		if !plan.IsApplicableTo(in.predicate) {
			continue
		}
		err := plan.Execute(in.ctx, in, in.handle, in.predicate)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrStopped) {
			return err
		}
		// Plan-level failure (ErrNoPath, errActionFailed, ...): try the next
		// applicable plan rather than aborting outright.
	}
	return ErrNoApplicablePlan
}

// Stopped reports whether this intention has been asked to stop. Plans call
// this before every externally visible action.
func (in *Intention) Stopped() bool {
	select {
	case <-in.ctx.Done():
		return true
	default:
		return false
	}
}

func (in *Intention) checkStopped() error {
	if in.Stopped() {
		return ErrStopped
	}
	return nil
}

// Stop marks this intention stopped and cascades depth-first to every
// sub-intention it has spawned (spec.md §4.5, §8 "Cancellation safety").
func (in *Intention) Stop() {
	in.mu.Lock()
	in.state = Stopped
	children := append([]*Intention(nil), in.children...)
	in.mu.Unlock()

	in.cancel()
	for _, c := range children {
		c.Stop()
	}
}

// spawnChild creates a sub-intention for subPredicate, registers it so Stop
// cascades to it, and returns it. Plans call this (e.g. GoPickUp raising a
// go_to sub-intention) instead of constructing an Intention directly, so the
// parent-child tree stays consistent.
func (in *Intention) spawnChild(subPredicate predicate.Predicate) *Intention {
	child := New(in.ctx, subPredicate, in.library, in.handle)
	in.mu.Lock()
	in.children = append(in.children, child)
	in.mu.Unlock()
	return child
}
