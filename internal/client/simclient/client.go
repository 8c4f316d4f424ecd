package simclient

import (
	"fmt"
	"sync"

	"github.com/deliveroo-agent/core/internal/client"
)

// Client implements client.SensorSource and client.ActionClient by replaying
// a Fixture synchronously on Subscribe and returning scripted outcomes for
// each action RPC in order.
type Client struct {
	fixture *Fixture

	mu        sync.Mutex
	moveIdx   int
	pickupIdx int
	putdownIdx int

	Sent []SentMessage // EmitSay calls, recorded for test assertions
}

// SentMessage records one EmitSay call.
type SentMessage struct {
	RecipientID string
	Message     []byte
}

// New builds a Client that will replay fixture's events and scripted
// outcomes.
func New(fixture *Fixture) *Client {
	return &Client{fixture: fixture}
}

// Subscribe replays every scripted event against handlers synchronously, in
// order, on the calling goroutine — tests call Subscribe from their own
// goroutine to match the single-owner handoff contract real adapters use.
func (c *Client) Subscribe(handlers client.EventHandlers) {
	for _, ev := range c.fixture.Events {
		c.replay(ev, handlers)
	}
}

func (c *Client) replay(ev Event, h client.EventHandlers) {
	switch ev.Kind {
	case "connect":
		if h.OnConnect != nil {
			h.OnConnect()
		}
	case "disconnect":
		if h.OnDisconnect != nil {
			h.OnDisconnect(ev.DisconnectReason)
		}
	case "config":
		if h.OnConfig != nil {
			h.OnConfig(ev.Config)
		}
	case "map":
		if h.OnMap != nil {
			h.OnMap(ev.Width, ev.Height, ev.Tiles)
		}
	case "you":
		if h.OnYou != nil {
			h.OnYou(client.You{ID: ev.You.ID, X: ev.You.X, Y: ev.You.Y, Score: ev.You.Score})
		}
	case "parcels_sensing":
		if h.OnParcelsSensing != nil {
			h.OnParcelsSensing(ev.Parcels)
		}
	case "agents_sensing":
		if h.OnAgentsSensing != nil {
			h.OnAgentsSensing(ev.Agents)
		}
	case "msg":
		if h.OnMsg != nil {
			h.OnMsg(ev.SenderID, ev.SenderName, []byte(ev.Message))
		}
	}
}

// EmitMove returns the next scripted move outcome, or a zero-value success
// if the script is exhausted.
func (c *Client) EmitMove(dir client.Direction) (bool, int, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.moveIdx >= len(c.fixture.Moves) {
		return true, 0, 0, nil
	}
	m := c.fixture.Moves[c.moveIdx]
	c.moveIdx++
	if m.Error != "" {
		return false, 0, 0, fmt.Errorf("simclient: scripted move error: %s", m.Error)
	}
	return m.OK, m.X, m.Y, nil
}

// EmitPickup returns the next scripted pickup outcome.
func (c *Client) EmitPickup() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pickupIdx >= len(c.fixture.Pickups) {
		return true, nil
	}
	o := c.fixture.Pickups[c.pickupIdx]
	c.pickupIdx++
	if o.Error != "" {
		return false, fmt.Errorf("simclient: scripted pickup error: %s", o.Error)
	}
	return o.OK, nil
}

// EmitPutdown returns the next scripted putdown outcome.
func (c *Client) EmitPutdown() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.putdownIdx >= len(c.fixture.Putdown) {
		return true, nil
	}
	o := c.fixture.Putdown[c.putdownIdx]
	c.putdownIdx++
	if o.Error != "" {
		return false, fmt.Errorf("simclient: scripted putdown error: %s", o.Error)
	}
	return o.OK, nil
}

// EmitSay records the message instead of sending it anywhere.
func (c *Client) EmitSay(recipientID string, message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Sent = append(c.Sent, SentMessage{RecipientID: recipientID, Message: message})
	return nil
}
