// Package wsclient is the real game-server adapter: a thin, swappable
// websocket transport implementing client.SensorSource and
// client.ActionClient. It carries no game logic (spec.md §9) — every method
// either forwards a sensor event to the registered handlers or turns an
// action call into a request/response pair over the same socket.
//
// The read pump runs on its own goroutine and pushes every decoded frame
// into a buffered channel, mirroring the teacher's session.BridgeEntity
// (internal/game/session/entity.go): a dedicated dispatch goroutine drains
// that channel and is the only place frames are interpreted, so a slow or
// blocked handler can never stall the socket read loop.
package wsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/deliveroo-agent/core/internal/client"
	"github.com/deliveroo-agent/core/internal/credentials"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// frame is the wire envelope: sensor events carry event+data, action
// responses carry req_id+data, discriminated by which fields are populated.
type frame struct {
	Event string          `json:"event,omitempty"`
	ReqID string          `json:"req_id,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type moveResponse struct {
	OK bool `json:"ok"`
	X  int  `json:"x"`
	Y  int  `json:"y"`
}

type boolResponse struct {
	OK bool `json:"ok"`
}

// Client dials a game-server websocket endpoint and exposes it as
// client.SensorSource and client.ActionClient.
type Client struct {
	log   *zap.Logger
	token string

	conn    *websocket.Conn
	writeMu sync.Mutex
	frames  chan frame

	pendingMu sync.Mutex
	pending   map[string]chan frame
}

// Dial connects to url, authenticating with a bearer token. The connection's
// display name (from the token's claims) is logged for correlation only.
func Dial(ctx context.Context, url, token string, log *zap.Logger) (*Client, error) {
	header := http.Header{"Authorization": {"Bearer " + token}}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("wsclient.Dial: %w", err)
	}
	if log != nil {
		log.Info("wsclient: connected", zap.String("agent", credentials.DisplayName(token)))
	}
	return &Client{
		log:     log,
		token:   token,
		conn:    conn,
		frames:  make(chan frame, 256),
		pending: make(map[string]chan frame),
	}, nil
}

// Subscribe starts the read pump and dispatch loop, then returns
// immediately; handlers fire on the dispatch goroutine, not the caller's.
func (c *Client) Subscribe(handlers client.EventHandlers) {
	go c.readPump()
	go c.dispatch(handlers)
}

func (c *Client) readPump() {
	defer close(c.frames)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			if c.log != nil {
				c.log.Warn("wsclient: malformed frame", zap.Error(err))
			}
			continue
		}
		c.frames <- f
	}
}

func (c *Client) dispatch(h client.EventHandlers) {
	for f := range c.frames {
		if f.ReqID != "" {
			c.resolvePending(f)
			continue
		}
		c.dispatchEvent(f, h)
	}
	if h.OnDisconnect != nil {
		h.OnDisconnect("connection closed")
	}
}

func (c *Client) resolvePending(f frame) {
	c.pendingMu.Lock()
	ch, ok := c.pending[f.ReqID]
	if ok {
		delete(c.pending, f.ReqID)
	}
	c.pendingMu.Unlock()
	if ok {
		ch <- f
	}
}

func (c *Client) dispatchEvent(f frame, h client.EventHandlers) {
	switch f.Event {
	case "connect":
		if h.OnConnect != nil {
			h.OnConnect()
		}
	case "config":
		var cfg client.Config
		if err := json.Unmarshal(f.Data, &cfg); err == nil && h.OnConfig != nil {
			h.OnConfig(cfg)
		}
	case "map":
		var m struct {
			Width, Height int
			Tiles         []client.RawTile
		}
		if err := json.Unmarshal(f.Data, &m); err == nil && h.OnMap != nil {
			h.OnMap(m.Width, m.Height, m.Tiles)
		}
	case "you":
		var you client.You
		if err := json.Unmarshal(f.Data, &you); err == nil && h.OnYou != nil {
			h.OnYou(you)
		}
	case "parcels_sensing":
		var parcels []client.RawParcel
		if err := json.Unmarshal(f.Data, &parcels); err == nil && h.OnParcelsSensing != nil {
			h.OnParcelsSensing(parcels)
		}
	case "agents_sensing":
		var agents []client.RawAgent
		if err := json.Unmarshal(f.Data, &agents); err == nil && h.OnAgentsSensing != nil {
			h.OnAgentsSensing(agents)
		}
	case "msg":
		var m struct {
			SenderID   string `json:"sender_id"`
			SenderName string `json:"sender_name"`
			Message    string `json:"message"`
		}
		if err := json.Unmarshal(f.Data, &m); err == nil && h.OnMsg != nil {
			h.OnMsg(m.SenderID, m.SenderName, []byte(m.Message))
		}
	}
}

// call sends a request frame and blocks for its correlated response, or
// until timeout elapses.
func (c *Client) call(event string, payload any, timeout time.Duration) (frame, error) {
	reqID := uuid.New().String()
	ch := make(chan frame, 1)
	c.pendingMu.Lock()
	c.pending[reqID] = ch
	c.pendingMu.Unlock()

	data, err := json.Marshal(payload)
	if err != nil {
		return frame{}, fmt.Errorf("wsclient: marshal %s: %w", event, err)
	}

	c.writeMu.Lock()
	err = c.conn.WriteJSON(frame{Event: event, ReqID: reqID, Data: data})
	c.writeMu.Unlock()
	if err != nil {
		return frame{}, fmt.Errorf("wsclient: write %s: %w", event, err)
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-time.After(timeout):
		c.pendingMu.Lock()
		delete(c.pending, reqID)
		c.pendingMu.Unlock()
		return frame{}, fmt.Errorf("wsclient: %s timed out waiting for response", event)
	}
}

const rpcTimeout = 5 * time.Second

// EmitMove sends a move action and waits for the server's outcome.
func (c *Client) EmitMove(dir client.Direction) (bool, int, int, error) {
	resp, err := c.call("move", map[string]client.Direction{"direction": dir}, rpcTimeout)
	if err != nil {
		return false, 0, 0, err
	}
	var m moveResponse
	if err := json.Unmarshal(resp.Data, &m); err != nil {
		return false, 0, 0, fmt.Errorf("wsclient: decode move response: %w", err)
	}
	return m.OK, m.X, m.Y, nil
}

// EmitPickup sends a pickup action and waits for the server's outcome.
func (c *Client) EmitPickup() (bool, error) {
	resp, err := c.call("pickup", struct{}{}, rpcTimeout)
	if err != nil {
		return false, err
	}
	var b boolResponse
	if err := json.Unmarshal(resp.Data, &b); err != nil {
		return false, fmt.Errorf("wsclient: decode pickup response: %w", err)
	}
	return b.OK, nil
}

// EmitPutdown sends a putdown action and waits for the server's outcome.
func (c *Client) EmitPutdown() (bool, error) {
	resp, err := c.call("putdown", struct{}{}, rpcTimeout)
	if err != nil {
		return false, err
	}
	var b boolResponse
	if err := json.Unmarshal(resp.Data, &b); err != nil {
		return false, fmt.Errorf("wsclient: decode putdown response: %w", err)
	}
	return b.OK, nil
}

// EmitSay sends a coordination message to recipientID. No response is
// awaited — the coordination protocol assumes in-order, non-lossy delivery
// and treats say as fire-and-forget (spec.md §4.8).
func (c *Client) EmitSay(recipientID string, message []byte) error {
	payload := struct {
		RecipientID string `json:"recipient_id"`
		Message     string `json:"message"`
	}{RecipientID: recipientID, Message: string(message)}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("wsclient: marshal say: %w", err)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(frame{Event: "say", Data: data})
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
