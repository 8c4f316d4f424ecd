// Package observer implements the world-state observer (spec.md §4.2): it
// subscribes to the external client's sensor callbacks, translates raw sensor
// DTOs into grid.WorldMap updates, and holds the server-announced world-config
// constants.
//
// A single Observer is constructed once per agent and injected everywhere it is
// needed — there is no package-level singleton (spec.md §9's explicit redesign
// note).
package observer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/deliveroo-agent/core/internal/client"
	"github.com/deliveroo-agent/core/internal/grid"
	"go.uber.org/zap"
)

// ErrSensorAnomaly is returned (wrapped) when onMap observes an unknown tile
// type code. Per spec.md §7 this is a hard error at map initialization; the
// caller decides whether to terminate the worker via WithFatalHandler.
var ErrSensorAnomaly = errors.New("observer: sensor anomaly")

// Observer translates sensor events into grid.WorldMap updates and exposes the
// world-config constants announced by onConfig.
type Observer struct {
	log *zap.Logger
	m   *grid.WorldMap

	selfID      string
	companionID string
	isLeader    bool

	mu          sync.RWMutex
	cfg         client.Config
	cfgReceived bool

	nowFn     func() int64 // overridable for tests
	onFatal   func(error)  // invoked on a sensor anomaly (spec.md §7); defaults to logging only
	onSenseFn func()       // invoked after onParcelsSensing/onAgentsSensing finish applying an update
}

// Option configures an Observer at construction time.
type Option func(*Observer)

// WithClock overrides the Observer's now() source; tests use this to drive
// deterministic parcel-expiry scenarios.
func WithClock(nowFn func() int64) Option {
	return func(o *Observer) { o.nowFn = nowFn }
}

// WithFatalHandler registers a callback invoked when a sensor anomaly occurs
// (an unknown tile type code at map initialization, spec.md §7). The caller is
// responsible for terminating the worker; Observer itself never calls
// os.Exit/panic.
func WithFatalHandler(onFatal func(error)) Option {
	return func(o *Observer) { o.onFatal = onFatal }
}

// WithOnSenseUpdate registers a callback fired after onParcelsSensing and
// after onAgentsSensing finish applying a batch of sensor data — the option
// generator is triggered "on every onParcelsSensing [and] onAgentsSensing"
// per spec.md §4.7, in addition to its own fixed-interval timer.
func WithOnSenseUpdate(fn func()) Option {
	return func(o *Observer) { o.onSenseFn = fn }
}

// New constructs an Observer bound to m. selfID/companionID/isLeader identify
// which sensed agent is "self" (updates position, not the adversary list) and
// which is the companion (updates leader/follower position, not the adversary
// list either).
func New(log *zap.Logger, m *grid.WorldMap, selfID, companionID string, isLeader bool, opts ...Option) *Observer {
	o := &Observer{
		log:         log,
		m:           m,
		selfID:      selfID,
		companionID: companionID,
		isLeader:    isLeader,
		nowFn:       func() int64 { return time.Now().Unix() },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Config returns the world-config constants announced by onConfig, or false if
// onConfig has not fired yet.
func (o *Observer) Config() (client.Config, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.cfg, o.cfgReceived
}

// PositionHandler is notified whenever the agent's own position changes.
type PositionHandler func(x, y, score int)

// Subscribe registers this Observer's handlers on src, plus positionHandler for
// the agent's own position updates and msgHandler for sensor-level messages
// (observer.go intentionally does not depend on the agent or coordination
// packages — the caller supplies narrow callbacks instead, per SPEC_FULL §4's
// "explicit collaborators injected at construction" rule). msgHandler may be
// nil for a single-agent worker with no coordination traffic to receive.
func (o *Observer) Subscribe(src client.SensorSource, positionHandler PositionHandler, msgHandler func(senderID, senderName string, message []byte)) {
	src.Subscribe(client.EventHandlers{
		OnConfig:         o.onConfig,
		OnMap:            o.onMap,
		OnParcelsSensing: o.onParcelsSensing,
		OnAgentsSensing: func(agents []client.RawAgent) {
			o.onAgentsSensing(agents, positionHandler)
		},
		OnYou: func(y client.You) {
			if positionHandler != nil {
				positionHandler(y.X, y.Y, y.Score)
			}
		},
		OnMsg: msgHandler,
	})
}

// onConfig captures the world-config constants as the client adapter delivered
// them. ParcelDecayIntervalSeconds is a plain int64 here; neither adapter in
// this repository parses a unit-suffixed PARCEL_DECADING_INTERVAL string (the
// websocket adapter decodes the config frame straight into client.Config).
func (o *Observer) onConfig(cfg client.Config) {
	o.mu.Lock()
	o.cfg = cfg
	o.cfgReceived = true
	o.mu.Unlock()
}

// onMap builds the initial map from the server's raw tile codes.
//
// Precondition: every tile's TypeCode must be in {0,1,2,3,4,5}; any other value
// is a hard sensor anomaly (spec.md §7): the map is not applied, the error is
// logged, and the observer's fatal-error callback (if any) is invoked.
func (o *Observer) onMap(width, height int, rawTiles []client.RawTile) {
	if err := o.applyMap(width, height, rawTiles); err != nil {
		if o.log != nil {
			o.log.Error("observer: fatal sensor anomaly in onMap", zap.Error(err))
		}
		if o.onFatal != nil {
			o.onFatal(err)
		}
	}
}

func (o *Observer) applyMap(width, height int, rawTiles []client.RawTile) error {
	tiles := make([]grid.Tile, len(rawTiles))
	for i, rt := range rawTiles {
		typ, err := tileTypeFromCode(rt.TypeCode)
		if err != nil {
			return fmt.Errorf("observer.onMap: tile (%d,%d): %w", rt.X, rt.Y, err)
		}
		tiles[i] = grid.Tile{X: rt.X, Y: rt.Y, Type: typ}
	}
	return o.m.Init(width, height, tiles)
}

func tileTypeFromCode(code int) (grid.TileType, error) {
	switch code {
	case 0:
		return grid.Wall, nil
	case 1:
		return grid.Spawn, nil
	case 2:
		return grid.Depot, nil
	case 3, 4, 5:
		return grid.Other, nil
	default:
		return 0, fmt.Errorf("unknown tile type code %d: %w", code, ErrSensorAnomaly)
	}
}

// onParcelsSensing timestamps each non-carried sensed parcel with now and
// forwards the batch to the map.
func (o *Observer) onParcelsSensing(raw []client.RawParcel) {
	now := o.nowFn()
	cfg, _ := o.Config()

	parcels := make([]grid.Parcel, 0, len(raw))
	for _, rp := range raw {
		if rp.CarriedBy != "" {
			continue
		}
		parcels = append(parcels, grid.Parcel{
			ID:        rp.ID,
			X:         rp.X,
			Y:         rp.Y,
			Reward:    rp.Reward,
			Timestamp: now,
		})
	}
	o.m.UpdateParcels(parcels, now, cfg.ParcelDecayIntervalSeconds)
	if o.onSenseFn != nil {
		o.onSenseFn()
	}
}

// onAgentsSensing splits sensed agents: self updates the caller's position
// callback, the companion updates leader/follower position, and everyone else
// becomes an adversary forwarded to the map.
func (o *Observer) onAgentsSensing(raw []client.RawAgent, positionHandler PositionHandler) {
	now := o.nowFn()
	var adversaries []grid.AdversaryAgent

	for _, ra := range raw {
		switch ra.ID {
		case o.selfID:
			if positionHandler != nil {
				positionHandler(ra.X, ra.Y, ra.Score)
			}
		case o.companionID:
			if o.isLeader {
				o.m.SetFollowerPosition(grid.Coord{X: ra.X, Y: ra.Y})
			} else {
				o.m.SetLeaderPosition(grid.Coord{X: ra.X, Y: ra.Y})
			}
		default:
			adversaries = append(adversaries, grid.AdversaryAgent{ID: ra.ID, X: ra.X, Y: ra.Y, Timestamp: now})
		}
	}
	if len(adversaries) > 0 {
		o.m.UpdateAdversaryAgents(adversaries)
	}
	if o.onSenseFn != nil {
		o.onSenseFn()
	}
}
