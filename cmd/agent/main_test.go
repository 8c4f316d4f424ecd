package main

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deliveroo-agent/core/internal/config"
)

func signedToken(t *testing.T, sub string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestBuildWorkerSpecs_SingleAgent(t *testing.T) {
	cfg := config.Config{Token: signedToken(t, "agent-1")}

	specs, err := buildWorkerSpecs(cfg)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "agent-1", specs[0].id)
	assert.True(t, specs[0].isLeader)
	assert.False(t, specs[0].dualAgent)
	assert.Empty(t, specs[0].companionID)
}

func TestBuildWorkerSpecs_DualAgentCrossReferencesCompanionIDs(t *testing.T) {
	cfg := config.Config{
		DualAgent: true,
		Token:     signedToken(t, "leader-1"),
		Token2:    signedToken(t, "follower-1"),
	}

	specs, err := buildWorkerSpecs(cfg)
	require.NoError(t, err)
	require.Len(t, specs, 2)

	leader, follower := specs[0], specs[1]
	assert.True(t, leader.isLeader)
	assert.Equal(t, "leader-1", leader.id)
	assert.Equal(t, "follower-1", leader.companionID)

	assert.False(t, follower.isLeader)
	assert.Equal(t, "follower-1", follower.id)
	assert.Equal(t, "leader-1", follower.companionID)
}

func TestBuildWorkerSpecs_FailsOnMalformedToken(t *testing.T) {
	_, err := buildWorkerSpecs(config.Config{Token: "not-a-jwt"})
	assert.Error(t, err)
}

func TestBuildWorkerSpecs_FailsOnMalformedSecondToken(t *testing.T) {
	cfg := config.Config{
		DualAgent: true,
		Token:     signedToken(t, "leader-1"),
		Token2:    "not-a-jwt",
	}
	_, err := buildWorkerSpecs(cfg)
	assert.Error(t, err)
}
