// Package client defines the interfaces the BDI core consumes from the external
// game-server connection: sensor callbacks and action RPCs. The concrete
// websocket adapter and the scripted test adapter both implement SensorSource
// and ActionClient; the core never imports a concrete transport.
package client

// Direction is a cardinal move direction.
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Config carries the subset of server-announced configuration the core needs.
type Config struct {
	ParcelDecayIntervalSeconds int64
	ParcelsObservationDistance int
	ParcelRewardAvg            float64
	ParcelRewardVariance       float64
}

// RawTile is a single cell of the server's raw map encoding.
//
// TypeCode: 0=Wall, 1=Spawn, 2=Depot, 3/4/5=Other. Any other value is a hard
// sensor anomaly (spec.md §4.2/§7).
type RawTile struct {
	X, Y     int
	TypeCode int
}

// RawParcel is a single sensed parcel, as reported by the server.
type RawParcel struct {
	ID        string
	X, Y      int
	Reward    int
	CarriedBy string // empty when not carried
}

// RawAgent is a single sensed agent (self, companion, or adversary).
type RawAgent struct {
	ID    string
	X, Y  int
	Score int
}

// You is the agent's own position/score report.
type You struct {
	ID    string
	X, Y  int
	Score int
}

// EventHandlers bundles the sensor callbacks a SensorSource invokes. Each field
// may be nil; a nil handler means "this event is of no interest to the
// subscriber." All handlers are invoked on the SensorSource's own goroutine —
// subscribers that touch agent state must hand events off via a channel to
// preserve the single-owner invariant (SPEC_FULL §5).
type EventHandlers struct {
	OnConnect        func()
	OnDisconnect     func(reason string)
	OnConfig         func(Config)
	OnMap            func(width, height int, tiles []RawTile)
	OnYou            func(You)
	OnParcelsSensing func(parcels []RawParcel)
	OnAgentsSensing  func(agents []RawAgent)
	OnMsg            func(senderID, senderName string, message []byte)
}

// SensorSource is the subscription surface of the external game-server
// connection. Subscribe is called once, at construction time.
type SensorSource interface {
	Subscribe(handlers EventHandlers)
}

// ActionClient issues action RPCs against the external game server. EmitMove,
// EmitPickup and EmitPutdown report the server's success flag; EmitSay reports
// only an error.
type ActionClient interface {
	EmitMove(dir Direction) (ok bool, x, y int, err error)
	EmitPickup() (ok bool, err error)
	EmitPutdown() (ok bool, err error)
	EmitSay(recipientID string, message []byte) error
}
