package simclient

import (
	"testing"

	"github.com/deliveroo-agent/core/internal/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribe_ReplaysEventsInOrder(t *testing.T) {
	fixture := &Fixture{
		Events: []Event{
			{Kind: "connect"},
			{Kind: "you", You: You{ID: "self", X: 1, Y: 2, Score: 10}},
			{Kind: "parcels_sensing", Parcels: []client.RawParcel{{ID: "P1", X: 1, Y: 1, Reward: 5}}},
			{Kind: "msg", SenderID: "companion", Message: "hello"},
		},
	}
	c := New(fixture)

	var calls []string
	c.Subscribe(client.EventHandlers{
		OnConnect: func() { calls = append(calls, "connect") },
		OnYou: func(you client.You) {
			calls = append(calls, "you")
			assert.Equal(t, 1, you.X)
			assert.Equal(t, 10, you.Score)
		},
		OnParcelsSensing: func(parcels []client.RawParcel) {
			calls = append(calls, "parcels")
			require.Len(t, parcels, 1)
		},
		OnMsg: func(senderID, senderName string, message []byte) {
			calls = append(calls, "msg")
			assert.Equal(t, "hello", string(message))
		},
	})

	assert.Equal(t, []string{"connect", "you", "parcels", "msg"}, calls)
}

func TestEmitMove_ReturnsScriptedOutcomesInOrderThenDefaultsToSuccess(t *testing.T) {
	fixture := &Fixture{Moves: []MoveOutcome{{OK: true, X: 1, Y: 0}, {OK: false, X: 0, Y: 0}}}
	c := New(fixture)

	ok, x, y, err := c.EmitMove(client.Right)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, x)
	assert.Equal(t, 0, y)

	ok, _, _, err = c.EmitMove(client.Right)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, _, _, err = c.EmitMove(client.Right)
	require.NoError(t, err)
	assert.True(t, ok, "exhausted script defaults to success")
}

func TestEmitSay_RecordsSentMessages(t *testing.T) {
	c := New(&Fixture{})

	require.NoError(t, c.EmitSay("companion", []byte(`{"action":"multi_pickup"}`)))

	require.Len(t, c.Sent, 1)
	assert.Equal(t, "companion", c.Sent[0].RecipientID)
}
