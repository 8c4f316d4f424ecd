// Package simclient is an in-memory, YAML-scripted client.SensorSource and
// client.ActionClient for tests: it replays a fixed sequence of sensor events
// and returns scripted move/pickup/putdown outcomes, with no network
// involved. Grounded on internal/game/ai's declarative-YAML-to-struct loading
// pattern (internal/game/ai/domain.go's LoadDomains), applied here to a
// scripted fixture instead of a behavior-tree domain.
package simclient

import (
	"fmt"
	"os"

	"github.com/deliveroo-agent/core/internal/client"
	"gopkg.in/yaml.v3"
)

// Fixture is the YAML-decoded script: an ordered list of sensor events to
// replay on Subscribe, plus an ordered list of scripted action outcomes.
type Fixture struct {
	Events  []Event       `yaml:"events"`
	Moves   []MoveOutcome `yaml:"moves"`
	Pickups []BoolOutcome `yaml:"pickups"`
	Putdown []BoolOutcome `yaml:"putdowns"`
}

// Event is one tagged sensor callback, discriminated by Kind.
type Event struct {
	Kind string `yaml:"kind"`

	Config client.Config `yaml:"config,omitempty"`

	Width  int             `yaml:"width,omitempty"`
	Height int             `yaml:"height,omitempty"`
	Tiles  []client.RawTile `yaml:"tiles,omitempty"`

	You You `yaml:"you,omitempty"`

	Parcels []client.RawParcel `yaml:"parcels,omitempty"`

	Agents []client.RawAgent `yaml:"agents,omitempty"`

	SenderID   string `yaml:"sender_id,omitempty"`
	SenderName string `yaml:"sender_name,omitempty"`
	Message    string `yaml:"message,omitempty"`

	DisconnectReason string `yaml:"disconnect_reason,omitempty"`
}

// You mirrors client.You with yaml tags (client.You has none).
type You struct {
	ID    string `yaml:"id"`
	X     int    `yaml:"x"`
	Y     int    `yaml:"y"`
	Score int    `yaml:"score"`
}

// MoveOutcome is one scripted EmitMove response.
type MoveOutcome struct {
	OK    bool `yaml:"ok"`
	X     int  `yaml:"x"`
	Y     int  `yaml:"y"`
	Error string `yaml:"error,omitempty"`
}

// BoolOutcome is one scripted EmitPickup/EmitPutdown response.
type BoolOutcome struct {
	OK    bool   `yaml:"ok"`
	Error string `yaml:"error,omitempty"`
}

// LoadFixture reads and parses a fixture file from path.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("simclient.LoadFixture: %w", err)
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("simclient.LoadFixture: %w", err)
	}
	return &f, nil
}
