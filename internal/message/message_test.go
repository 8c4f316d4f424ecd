package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_MultiPickup_RoundTrips(t *testing.T) {
	env := NewMultiPickup([]string{"P2", "P1"})
	data, err := Encode(env)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, MultiPickup, decoded.Action)
	require.NotNil(t, decoded.MultiPickup)
	assert.Equal(t, []string{"P2", "P1"}, decoded.MultiPickup.ParcelIDs)
}

func TestEncodeDecode_Hand2Hand_RoundTrips(t *testing.T) {
	env := NewHand2Hand(BehaviorDeliver)
	data, err := Encode(env)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.NotNil(t, decoded.Hand2Hand)
	assert.Equal(t, BehaviorDeliver, decoded.Hand2Hand.Behavior)
}

func TestEncodeDecode_DeliveryTile_SetAndError(t *testing.T) {
	set := NewDeliveryTileSet(3, 4)
	data, err := Encode(set)
	require.NoError(t, err)
	decoded, err := Decode(data)
	require.NoError(t, err)
	require.NotNil(t, decoded.DeliveryTile)
	assert.Equal(t, DeliveryTileSet, decoded.DeliveryTile.Status)
	assert.Equal(t, 3, decoded.DeliveryTile.X)

	errMsg := NewDeliveryTileError()
	data, err = Encode(errMsg)
	require.NoError(t, err)
	decoded, err = Decode(data)
	require.NoError(t, err)
	assert.Equal(t, DeliveryTileError, decoded.DeliveryTile.Status)
}

func TestDecode_MalformedJSON(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)
}
