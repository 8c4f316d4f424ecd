package credentials

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestDisplayName_PrefersNameClaim(t *testing.T) {
	tok := signedToken(t, jwt.MapClaims{"name": "Alice", "sub": "agent-1"})
	assert.Equal(t, "Alice", DisplayName(tok))
}

func TestDisplayName_FallsBackToSubClaim(t *testing.T) {
	tok := signedToken(t, jwt.MapClaims{"sub": "agent-1"})
	assert.Equal(t, "agent-1", DisplayName(tok))
}

func TestDisplayName_ReturnsUnknownOnMalformedToken(t *testing.T) {
	assert.Equal(t, "unknown", DisplayName("not-a-jwt"))
}

func TestDisplayName_ReturnsUnknownWhenNoUsableClaim(t *testing.T) {
	tok := signedToken(t, jwt.MapClaims{"iat": 12345})
	assert.Equal(t, "unknown", DisplayName(tok))
}

func TestAgentID_ReturnsSubClaim(t *testing.T) {
	tok := signedToken(t, jwt.MapClaims{"sub": "agent-1"})
	id, ok := AgentID(tok)
	require.True(t, ok)
	assert.Equal(t, "agent-1", id)
}

func TestAgentID_FalseWhenNoSubClaim(t *testing.T) {
	tok := signedToken(t, jwt.MapClaims{"name": "Alice"})
	_, ok := AgentID(tok)
	assert.False(t, ok)
}

func TestAgentID_FalseOnMalformedToken(t *testing.T) {
	_, ok := AgentID("not-a-jwt")
	assert.False(t, ok)
}
