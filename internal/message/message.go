// Package message defines the JSON wire format exchanged over the game's
// per-agent "say" channel for coordination between the two cooperating agents
// (spec.md §4.8).
package message

import "encoding/json"

// Action discriminates the message payload.
type Action string

const (
	MultiPickup       Action = "multi_pickup"
	CompanionPosition Action = "companion_position"
	Hand2Hand         Action = "hand2hand"
	DeliveryTile      Action = "delivery_tile"
)

// Behavior is the hand2hand payload's requested behavior.
type Behavior string

const (
	BehaviorNone    Behavior = "none"
	BehaviorGather  Behavior = "gather"
	BehaviorDeliver Behavior = "deliver"
)

// DeliveryTileStatus is the delivery_tile payload's status.
type DeliveryTileStatus string

const (
	DeliveryTileSet   DeliveryTileStatus = "set"
	DeliveryTileError DeliveryTileStatus = "error"
)

// Envelope is the outer, action-discriminated message shape. Exactly one of
// the typed payload fields is populated, matching Action.
type Envelope struct {
	Action Action `json:"action"`

	MultiPickup       *MultiPickupPayload       `json:"multi_pickup,omitempty"`
	CompanionPosition *CompanionPositionPayload `json:"companion_position,omitempty"`
	Hand2Hand         *Hand2HandPayload         `json:"hand2hand,omitempty"`
	DeliveryTile      *DeliveryTilePayload      `json:"delivery_tile,omitempty"`
}

// MultiPickupPayload carries the ordered pickup ids the sender wants the
// receiver to ignore.
type MultiPickupPayload struct {
	ParcelIDs []string `json:"parcelIds"`
}

// CompanionPositionPayload reports the sender's current tile.
type CompanionPositionPayload struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Hand2HandPayload commands the receiver into a relay role.
type Hand2HandPayload struct {
	Behavior Behavior `json:"behavior"`
}

// DeliveryTilePayload negotiates the shared hand-off tile.
type DeliveryTilePayload struct {
	Status DeliveryTileStatus `json:"status"`
	X      int                `json:"x,omitempty"`
	Y      int                `json:"y,omitempty"`
}

// Encode marshals env to its JSON wire representation.
func Encode(env Envelope) ([]byte, error) {
	return json.Marshal(env)
}

// Decode parses a JSON wire message into an Envelope.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

// NewMultiPickup builds a multi_pickup envelope.
func NewMultiPickup(parcelIDs []string) Envelope {
	return Envelope{Action: MultiPickup, MultiPickup: &MultiPickupPayload{ParcelIDs: parcelIDs}}
}

// NewCompanionPosition builds a companion_position envelope.
func NewCompanionPosition(x, y int) Envelope {
	return Envelope{Action: CompanionPosition, CompanionPosition: &CompanionPositionPayload{X: x, Y: y}}
}

// NewHand2Hand builds a hand2hand envelope.
func NewHand2Hand(behavior Behavior) Envelope {
	return Envelope{Action: Hand2Hand, Hand2Hand: &Hand2HandPayload{Behavior: behavior}}
}

// NewDeliveryTileSet builds a delivery_tile{status:set} envelope.
func NewDeliveryTileSet(x, y int) Envelope {
	return Envelope{Action: DeliveryTile, DeliveryTile: &DeliveryTilePayload{Status: DeliveryTileSet, X: x, Y: y}}
}

// NewDeliveryTileError builds a delivery_tile{status:error} envelope.
func NewDeliveryTileError() Envelope {
	return Envelope{Action: DeliveryTile, DeliveryTile: &DeliveryTilePayload{Status: DeliveryTileError}}
}
