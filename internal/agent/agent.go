// Package agent implements the agent state and loop (spec.md §4.6, C6): the
// intention queue, its priority policy, and the single-owner scheduling loop
// that ties the observer, the option generator, and the plan library
// together. A single Agent is created per worker and lives for the process
// lifetime (spec.md §3).
package agent

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/deliveroo-agent/core/internal/client"
	"github.com/deliveroo-agent/core/internal/grid"
	"github.com/deliveroo-agent/core/internal/planning"
	"github.com/deliveroo-agent/core/internal/predicate"
	"go.uber.org/zap"
)

// Agent holds the mutable belief and intention state for one worker and
// implements planning.AgentHandle so plans can act on it without
// internal/planning importing this package (spec.md §9).
type Agent struct {
	log *zap.Logger

	id          string
	companionID string
	isLeader    bool
	dualAgent   bool

	m       *grid.WorldMap
	ac      client.ActionClient
	library planning.Library

	maxCarriedParcels int

	onPickupsSorted func(parcelIDs []string)
	onFatal         func(error)

	mailbox chan func()

	mu                 sync.Mutex
	ctx                context.Context
	pos                grid.Coord
	score              int
	posKnown           bool
	posCh              chan struct{}
	carriedParcelCount int
	mode               Mode
	depot              *grid.Coord
	deliveryTile       *grid.Coord
	deliveryRetries    int
	parcelsToIgnore    map[string]struct{}
	queue              []*planning.Intention
	initialized        bool
}

// Option configures an Agent at construction time.
type Option func(*Agent)

// WithLogger attaches a logger for intention-failure and fatal-error reporting.
func WithLogger(log *zap.Logger) Option {
	return func(a *Agent) { a.log = log }
}

// WithOnPickupsSorted registers the callback invoked after sortIntentionQueue
// whenever this is a dual-agent worker in ModeNone: ids is the freshly
// sorted, ordered list of pickup parcel ids to broadcast as a multi_pickup
// message (spec.md §4.6 step 3).
func WithOnPickupsSorted(fn func(parcelIDs []string)) Option {
	return func(a *Agent) { a.onPickupsSorted = fn }
}

// WithFatalHandler registers a callback invoked on a protocol violation
// (spec.md §7) — the caller is responsible for terminating the worker.
func WithFatalHandler(fn func(error)) Option {
	return func(a *Agent) { a.onFatal = fn }
}

// New constructs an Agent.
//
// Precondition: m, ac, and library must not be nil; maxCarriedParcels must be
// at least 1.
func New(id, companionID string, isLeader, dualAgent bool, m *grid.WorldMap, ac client.ActionClient, library planning.Library, maxCarriedParcels int, opts ...Option) *Agent {
	a := &Agent{
		id:                id,
		companionID:       companionID,
		isLeader:          isLeader,
		dualAgent:         dualAgent,
		m:                 m,
		ac:                ac,
		library:           library,
		maxCarriedParcels: maxCarriedParcels,
		mailbox:           make(chan func(), 64),
		pos:               grid.Coord{X: -1, Y: -1},
		posCh:             make(chan struct{}),
		parcelsToIgnore:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ID returns the agent's own id.
func (a *Agent) ID() string { return a.id }

// CompanionID returns the companion agent's id (empty for a single-agent
// worker).
func (a *Agent) CompanionID() string { return a.companionID }

// IsLeader reports whether this worker started with isLeader=true.
func (a *Agent) IsLeader() bool { return a.isLeader }

// Map returns the shared world-state belief.
func (a *Agent) Map() *grid.WorldMap { return a.m }

// ActionClient returns the RPC surface used to move/pickup/putdown.
func (a *Agent) ActionClient() client.ActionClient { return a.ac }

// Post hands fn to the agent's owning goroutine for execution, preserving the
// single-owner invariant (spec.md §5): sensor callbacks and message handlers
// run on their own goroutines and must never touch Agent state directly.
func (a *Agent) Post(fn func()) {
	a.mailbox <- fn
}

// Position returns the agent's current coordinate, blocking until the first
// sensor-reported position has arrived (spec.md §9's resolved open question:
// getCurrentPosition is always synchronous).
func (a *Agent) Position() grid.Coord {
	a.mu.Lock()
	known := a.posKnown
	ch := a.posCh
	a.mu.Unlock()
	if !known {
		<-ch
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pos
}

// PositionKnown reports, without blocking, whether the first sensor-reported
// position has arrived yet. Callers that must not block the owning
// goroutine (the periodic option-generation timer, fired before any sensor
// event has landed) check this before calling Position.
func (a *Agent) PositionKnown() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.posKnown
}

// SetPosition records the agent's own position and score, as reported by the
// world-state observer's onYou/onAgentsSensing handler.
func (a *Agent) SetPosition(x, y, score int) {
	a.mu.Lock()
	a.pos = grid.Coord{X: x, Y: y}
	a.score = score
	if !a.posKnown {
		a.posKnown = true
		close(a.posCh)
	}
	a.mu.Unlock()
}

// Score returns the agent's last-reported score.
func (a *Agent) Score() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.score
}

// PickedUpParcel implements planning.AgentHandle: increments
// carriedParcelCount and removes the parcel from the map.
func (a *Agent) PickedUpParcel(id string) {
	a.mu.Lock()
	a.carriedParcelCount++
	a.mu.Unlock()
	a.m.ParcelPickedUp(id)
}

// DropAllParcels implements planning.AgentHandle: resets carriedParcelCount
// to zero.
func (a *Agent) DropAllParcels() {
	a.mu.Lock()
	a.carriedParcelCount = 0
	a.mu.Unlock()
}

// CarriedParcelCount returns the number of parcels currently carried.
func (a *Agent) CarriedParcelCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.carriedParcelCount
}

// Mode returns the current hand-to-hand behavior.
func (a *Agent) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// SetMode switches the hand-to-hand behavior.
func (a *Agent) SetMode(mode Mode) {
	a.mu.Lock()
	a.mode = mode
	a.mu.Unlock()
}

// Depot returns the depot assigned to a Deliver-mode agent, or nil.
func (a *Agent) Depot() *grid.Coord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return copyCoord(a.depot)
}

// SetDepot records the depot assigned to a Deliver-mode agent.
func (a *Agent) SetDepot(c grid.Coord) {
	a.mu.Lock()
	a.depot = &c
	a.mu.Unlock()
}

// DeliveryTile returns the negotiated shared hand-off tile, or nil if not yet
// negotiated.
func (a *Agent) DeliveryTile() *grid.Coord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return copyCoord(a.deliveryTile)
}

// SetDeliveryTile records the negotiated shared hand-off tile.
func (a *Agent) SetDeliveryTile(c grid.Coord) {
	a.mu.Lock()
	a.deliveryTile = &c
	a.mu.Unlock()
}

// ClearDeliveryTile forgets the negotiated hand-off tile, forcing
// re-negotiation (spec.md §4.8, delivery_tile{status:error}).
func (a *Agent) ClearDeliveryTile() {
	a.mu.Lock()
	a.deliveryTile = nil
	a.mu.Unlock()
}

// DeliveryRetries returns how many times findCommonDeliveryTile has been
// attempted.
func (a *Agent) DeliveryRetries() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.deliveryRetries
}

// IncrementDeliveryRetries records one more findCommonDeliveryTile attempt.
func (a *Agent) IncrementDeliveryRetries() {
	a.mu.Lock()
	a.deliveryRetries++
	a.mu.Unlock()
}

// ParcelsToIgnore returns a snapshot of the current ignore-set.
func (a *Agent) ParcelsToIgnore() map[string]struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]struct{}, len(a.parcelsToIgnore))
	for id := range a.parcelsToIgnore {
		out[id] = struct{}{}
	}
	return out
}

// SetParcelsToIgnore replaces the ignore-set wholesale (spec.md §4.8,
// multi_pickup: "replace the receiver's parcelsToIgnore with parcelIds").
func (a *Agent) SetParcelsToIgnore(ids []string) {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	a.mu.Lock()
	a.parcelsToIgnore = set
	a.mu.Unlock()
}

// IsInitialized reports whether coordination handshaking has completed.
func (a *Agent) IsInitialized() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.initialized
}

// SetInitialized marks coordination handshaking complete. A single-agent
// worker should call this immediately at startup.
func (a *Agent) SetInitialized(v bool) {
	a.mu.Lock()
	a.initialized = v
	a.mu.Unlock()
}

// Fatal logs err and invokes the fatal-error callback, if any (spec.md §7,
// "protocol violation... is fatal for that worker").
func (a *Agent) Fatal(err error) {
	if a.log != nil {
		a.log.Error("agent: fatal error", zap.Error(err))
	}
	if a.onFatal != nil {
		a.onFatal(err)
	}
}

// Run executes the agent loop until ctx is done (spec.md §4.6): drain the
// mailbox (sensor/message handoffs), then, if the queue is non-empty and the
// agent is initialized, pop the head and await its achievement; otherwise
// yield cooperatively.
func (a *Agent) Run(ctx context.Context) error {
	a.mu.Lock()
	a.ctx = ctx
	a.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-a.mailbox:
			fn()
			continue
		default:
		}

		if a.IsInitialized() {
			if in, ok := a.popHead(); ok {
				if err := in.Achieve(); err != nil && !errors.Is(err, planning.ErrStopped) {
					if a.log != nil {
						a.log.Warn("agent: intention failed",
							zap.String("predicate", in.Predicate().String()), zap.Error(err))
					}
				}
				continue
			}
		}
		runtime.Gosched()
	}
}

// runCtx returns the agent's run context, or a background context before Run
// has started (tests call Push directly without a running loop).
func (a *Agent) runCtx() context.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ctx != nil {
		return a.ctx
	}
	return context.Background()
}

func (a *Agent) popHead() (*planning.Intention, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.queue) == 0 {
		return nil, false
	}
	head := a.queue[0]
	a.queue = a.queue[1:]
	return head, true
}

// Push creates an Intention for p and adds it to the queue, rejecting it if
// an element-wise-identical predicate is already queued, then re-sorts the
// queue (spec.md §4.6).
func (a *Agent) Push(p predicate.Predicate) {
	a.mu.Lock()
	for _, in := range a.queue {
		if in.Predicate().Equal(p) {
			a.mu.Unlock()
			return
		}
	}
	ctx := a.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	in := planning.New(ctx, p, a.library, a)
	a.queue = append(a.queue, in)
	a.mu.Unlock()

	a.sortIntentionQueue()
}

// QueueLen returns the current intention queue length.
func (a *Agent) QueueLen() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.queue)
}

// QueuedPredicates returns the predicates currently queued, in order.
func (a *Agent) QueuedPredicates() []predicate.Predicate {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]predicate.Predicate, len(a.queue))
	for i, in := range a.queue {
		out[i] = in.Predicate()
	}
	return out
}

func copyCoord(c *grid.Coord) *grid.Coord {
	if c == nil {
		return nil
	}
	cc := *c
	return &cc
}
