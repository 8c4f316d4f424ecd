package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deliveroo-agent/core/internal/agent"
	"github.com/deliveroo-agent/core/internal/option"
)

func TestToOptionMode(t *testing.T) {
	assert.Equal(t, option.ModeGather, toOptionMode(agent.ModeGather))
	assert.Equal(t, option.ModeDeliver, toOptionMode(agent.ModeDeliver))
	assert.Equal(t, option.ModeNone, toOptionMode(agent.ModeNone))
}
