package predicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredicate_Equal_ElementWise(t *testing.T) {
	p1 := GoPickUpPredicate(1, 2, "P1")
	p2 := GoPickUpPredicate(1, 2, "P1")
	p3 := GoPickUpPredicate(1, 2, "P2")
	assert.True(t, p1.Equal(p2))
	assert.False(t, p1.Equal(p3))

	d1 := GoDropOffPredicate(0, 0, "")
	d2 := GoDropOffPredicate(0, 0, "depotA")
	assert.False(t, d1.Equal(d2), "nil vs non-nil depot hint must not compare equal")
}

func TestParseWire_LogicalFallbackNotBitwise(t *testing.T) {
	p, err := ParseWire("go_drop_off", 3, 3, "")
	require.NoError(t, err)
	assert.Nil(t, p.DepotID)

	p, err = ParseWire("go_drop_off", 3, 3, "depotA")
	require.NoError(t, err)
	require.NotNil(t, p.DepotID)
	assert.Equal(t, "depotA", *p.DepotID)
}

func TestParseWire_GoPickUpRequiresParcelID(t *testing.T) {
	_, err := ParseWire("go_pick_up", 1, 1, "")
	assert.ErrorIs(t, err, ErrMalformedPredicate)
}

func TestParseWire_UnknownAction(t *testing.T) {
	_, err := ParseWire("fly_away", 0, 0, "")
	assert.ErrorIs(t, err, ErrMalformedPredicate)
}
