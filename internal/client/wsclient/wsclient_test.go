package wsclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/deliveroo-agent/core/internal/client"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// echoServer upgrades the connection, sends a "you" event, then answers
// every "move" request frame with a fixed ok=true response carrying the
// request's own req_id.
func echoServer(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		you := frame{Event: "you", Data: mustJSON(t, client.You{ID: "self", X: 1, Y: 2, Score: 3})}
		require.NoError(t, conn.WriteJSON(you))

		for {
			var f frame
			if err := conn.ReadJSON(&f); err != nil {
				return
			}
			if f.Event == "move" {
				resp := frame{ReqID: f.ReqID, Data: mustJSON(t, moveResponse{OK: true, X: 5, Y: 6})}
				if err := conn.WriteJSON(resp); err != nil {
					return
				}
			}
		}
	}))
}

func mustJSON(t *testing.T, v any) []byte {
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func wsURL(httpURL string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http")
}

func TestDialSubscribeAndEmitMove(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := Dial(ctx, wsURL(srv.URL), "test-token", nil)
	require.NoError(t, err)
	defer c.Close()

	youCh := make(chan client.You, 1)
	c.Subscribe(client.EventHandlers{
		OnYou: func(you client.You) { youCh <- you },
	})

	select {
	case you := <-youCh:
		require.Equal(t, 1, you.X)
		require.Equal(t, 3, you.Score)
	case <-time.After(time.Second):
		t.Fatal("never received you event")
	}

	ok, x, y, err := c.EmitMove(client.Right)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 5, x)
	require.Equal(t, 6, y)
}
