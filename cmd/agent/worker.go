package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/deliveroo-agent/core/internal/agent"
	"github.com/deliveroo-agent/core/internal/client/wsclient"
	"github.com/deliveroo-agent/core/internal/config"
	"github.com/deliveroo-agent/core/internal/coordination"
	"github.com/deliveroo-agent/core/internal/grid"
	"github.com/deliveroo-agent/core/internal/message"
	"github.com/deliveroo-agent/core/internal/observer"
	"github.com/deliveroo-agent/core/internal/option"
	"github.com/deliveroo-agent/core/internal/pddlsolve"
	"github.com/deliveroo-agent/core/internal/planning"
)

// workerSpec identifies one worker's role and credentials. DUAL_AGENT spawns
// two workers, a leader and a follower, sharing no memory (spec.md §5).
type workerSpec struct {
	token       string
	id          string
	companionID string
	isLeader    bool
	dualAgent   bool
}

// worker owns one agent's full stack: the websocket connection, the belief
// map, the observer that feeds it, the agent loop, and the coordination
// handler. It implements server.Service so a Lifecycle can start and stop it
// alongside its sibling.
type worker struct {
	log  *zap.Logger
	cfg  config.Config
	spec workerSpec

	cancel context.CancelFunc
	stopCh chan struct{}
}

func newWorker(log *zap.Logger, cfg config.Config, spec workerSpec) *worker {
	return &worker{log: log, cfg: cfg, spec: spec, stopCh: make(chan struct{})}
}

// AgentID implements server.AgentIdentifier so Lifecycle's start/stop logs
// carry this worker's game-server id alongside the generic "leader"/
// "follower" service name.
func (w *worker) AgentID() string { return w.spec.id }

// Start dials the game server, wires the BDI stack, and runs the agent loop
// until Stop cancels it. It implements server.Service and blocks until the
// agent loop returns.
func (w *worker) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	defer close(w.stopCh)

	log := w.log.With(zap.String("agent_id", w.spec.id), zap.Bool("leader", w.spec.isLeader))

	wsc, err := wsclient.Dial(ctx, w.cfg.Host, w.spec.token, log)
	if err != nil {
		return fmt.Errorf("worker %s: dial: %w", w.spec.id, err)
	}
	defer wsc.Close()

	m := grid.NewWorldMap()

	onFatal := func(err error) {
		log.Error("worker: fatal error, stopping", zap.Error(err))
		cancel()
	}

	// handler is assigned below, after ag exists — the closure only runs
	// later, in response to a sortIntentionQueue call, by which point
	// handler is set. This late-binding avoids a construction-order cycle
	// between ag (which the callback needs to reach) and handler (which
	// needs ag).
	var handler *coordination.Handler

	opts := []agent.Option{
		agent.WithLogger(log),
		agent.WithFatalHandler(onFatal),
	}
	if w.spec.dualAgent {
		opts = append(opts, agent.WithOnPickupsSorted(func(parcelIDs []string) {
			if err := handler.Send(ctx, message.NewMultiPickup(parcelIDs)); err != nil {
				log.Warn("worker: multi_pickup broadcast failed", zap.Error(err))
			}
		}))
	}

	library, err := w.planLibrary()
	if err != nil {
		return fmt.Errorf("worker %s: %w", w.spec.id, err)
	}

	ag := agent.New(w.spec.id, w.spec.companionID, w.spec.isLeader, w.spec.dualAgent, m, wsc,
		library, w.cfg.MaxCarriedParcels, opts...)

	sender := coordination.NewActionClientSender(ag)
	handler = coordination.NewHandler(ag, sender)

	if !w.spec.dualAgent {
		// A single-agent worker never coordinates, so it never waits for a
		// hand2hand handshake to set initialized.
		ag.SetInitialized(true)
	}

	optCfg := option.Config{
		MaxDistanceForRandomMove: w.cfg.MaxDistanceForRandomMove,
		MaxRetryCommonDelivery:   w.cfg.MaxRetryCommonDelivery,
	}
	rng := option.NewSource()

	generate := func() {
		ag.Post(func() {
			w.generateAndPush(ctx, ag, handler, optCfg, rng)
		})
	}

	obs := observer.New(log, m, w.spec.id, w.spec.companionID, w.spec.isLeader,
		observer.WithFatalHandler(ag.Fatal),
		observer.WithOnSenseUpdate(generate),
	)

	onMsg := func(senderID, senderName string, data []byte) {
		ag.Post(func() {
			env, err := message.Decode(data)
			if err != nil {
				log.Warn("worker: malformed coordination message", zap.String("from", senderID), zap.Error(err))
				return
			}
			if err := handler.Handle(ctx, env); err != nil {
				log.Warn("worker: coordination handler error", zap.Error(err))
			}
		})
	}

	positionHandler := func(x, y, score int) {
		ag.Post(func() {
			ag.SetPosition(x, y, score)
			if w.spec.dualAgent {
				if err := handler.Send(ctx, message.NewCompanionPosition(x, y)); err != nil {
					log.Warn("worker: companion_position broadcast failed", zap.Error(err))
				}
			}
		})
	}

	obs.Subscribe(wsc, positionHandler, onMsg)

	ticker := time.NewTicker(w.cfg.OptionGenerationInterval)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				generate()
			}
		}
	}()

	if err := ag.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// planLibrary builds the Plan library this worker runs GoTo predicates
// against: the default A*-based GoTo, or GoToPDDL when the worker's config
// opts into the symbolic planner (spec.md §4.4's "drop-in replacement chosen
// by configuration").
func (w *worker) planLibrary() (planning.Library, error) {
	if !w.cfg.UsePDDLPlanner {
		return planning.DefaultLibrary(), nil
	}

	domain, err := pddlsolve.LoadDomain(w.cfg.PDDLDomainPath)
	if err != nil {
		return nil, fmt.Errorf("loading PDDL domain: %w", err)
	}

	goToPDDL := planning.GoToPDDL{
		Domain: domain,
		Config: pddlsolve.Config{SolverPath: w.cfg.PDDLSolverPath},
	}
	return planning.Library{goToPDDL, planning.GoPickUp{}, planning.GoDropOff{}}, nil
}

// generateAndPush runs one round of option generation and applies its
// result: pushed predicates go onto the intention queue, a negotiated
// delivery tile is recorded and broadcast, and the retry counter advances
// exactly when a negotiation attempt was made (spec.md §4.7's Deliver
// producer). It must only be called from the agent's own goroutine (from
// inside an ag.Post closure).
func (w *worker) generateAndPush(ctx context.Context, ag *agent.Agent, handler *coordination.Handler, cfg option.Config, rng option.Source) {
	if !ag.Map().Populated() || !ag.PositionKnown() {
		return
	}

	snap, err := ag.Map().Snapshot(ctx)
	if err != nil {
		return
	}

	state := option.State{
		Position:           ag.Position(),
		Mode:               toOptionMode(ag.Mode()),
		CarriedParcelCount: ag.CarriedParcelCount(),
		Depot:              ag.Depot(),
		DeliveryTile:       ag.DeliveryTile(),
		DeliveryRetries:    ag.DeliveryRetries(),
		ParcelsToIgnore:    ag.ParcelsToIgnore(),
	}

	result := option.Generate(snap, state, cfg, rng)
	for _, p := range result.Predicates {
		ag.Push(p)
	}
	if result.RetriedCommonDelivery {
		ag.IncrementDeliveryRetries()
	}
	if result.NegotiatedDeliveryTile != nil {
		tile := *result.NegotiatedDeliveryTile
		ag.SetDeliveryTile(tile)
		if err := handler.Send(ctx, message.NewDeliveryTileSet(tile.X, tile.Y)); err != nil {
			w.log.Warn("worker: delivery_tile broadcast failed", zap.Error(err))
		}
	}
}

// Stop cancels the worker's context and waits for Start to return.
func (w *worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	<-w.stopCh
}
