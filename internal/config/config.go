// Package config provides Viper-based environment-variable configuration
// loading for the agent process (spec.md §6).
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level process configuration, sourced entirely from
// environment variables — there is no configuration file (spec.md §6).
type Config struct {
	// Host is the game server URL.
	Host string
	// Token is the leader agent's credentials.
	Token string
	// Token2 is the follower agent's credentials; required when DualAgent is true.
	Token2 string
	// DualAgent, when true, spawns a leader and a follower worker.
	DualAgent bool
	// OptionGenerationInterval bounds how often the option generator fires on its timer.
	OptionGenerationInterval time.Duration
	// MaxCarriedParcels is the carry-saturation threshold (C6 sortIntentionQueue rule 6).
	MaxCarriedParcels int
	// MaxDistanceForRandomMove bounds the option generator's random-move search radius.
	MaxDistanceForRandomMove int
	// MaxRetryCommonDelivery bounds delivery-tile negotiation retries (C7 Deliver mode).
	MaxRetryCommonDelivery int
	// LogLevel is the zap logging verbosity: "debug", "info", "warn", "error".
	LogLevel string
	// UsePDDLPlanner swaps the default A*-based GoTo plan for GoToPDDL, the
	// symbolic-planner drop-in (spec.md §4.4).
	UsePDDLPlanner bool
	// PDDLDomainPath names the YAML file describing the PDDL domain; required
	// when UsePDDLPlanner is true.
	PDDLDomainPath string
	// PDDLSolverPath is the external solver binary GoToPDDL invokes. Defaults
	// to "pddl-solver" when empty.
	PDDLSolverPath string
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing
// the first violation.
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("config: HOST must not be empty")
	}
	if c.Token == "" {
		return fmt.Errorf("config: TOKEN must not be empty")
	}
	if c.DualAgent && c.Token2 == "" {
		return fmt.Errorf("config: TOKEN_2 must not be empty when DUAL_AGENT is true")
	}
	if c.OptionGenerationInterval <= 0 {
		return fmt.Errorf("config: OPTION_GENERATION_INTERVAL must be positive, got %s", c.OptionGenerationInterval)
	}
	if c.MaxCarriedParcels < 1 {
		return fmt.Errorf("config: MAX_CARRIED_PARCELS must be >= 1, got %d", c.MaxCarriedParcels)
	}
	if c.MaxDistanceForRandomMove < 0 {
		return fmt.Errorf("config: MAX_DISTANCE_FOR_RANDOM_MOVE must be >= 0, got %d", c.MaxDistanceForRandomMove)
	}
	if c.MaxRetryCommonDelivery < 0 {
		return fmt.Errorf("config: MAX_RETRY_COMMON_DELIVERY must be >= 0, got %d", c.MaxRetryCommonDelivery)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("config: LOG_LEVEL must be one of [debug, info, warn, error], got %q", c.LogLevel)
	}
	if c.UsePDDLPlanner && c.PDDLDomainPath == "" {
		return fmt.Errorf("config: PDDL_DOMAIN_PATH must not be empty when USE_PDDL_PLANNER is true")
	}
	return nil
}

// Load reads configuration from the process environment, applies the defaults
// from spec.md §6, and validates the result.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := Config{
		Host:                     v.GetString("HOST"),
		Token:                    v.GetString("TOKEN"),
		Token2:                   v.GetString("TOKEN_2"),
		DualAgent:                v.GetBool("DUAL_AGENT"),
		OptionGenerationInterval: v.GetDuration("OPTION_GENERATION_INTERVAL"),
		MaxCarriedParcels:        v.GetInt("MAX_CARRIED_PARCELS"),
		MaxDistanceForRandomMove: v.GetInt("MAX_DISTANCE_FOR_RANDOM_MOVE"),
		MaxRetryCommonDelivery:   v.GetInt("MAX_RETRY_COMMON_DELIVERY"),
		LogLevel:                 v.GetString("LOG_LEVEL"),
		UsePDDLPlanner:           v.GetBool("USE_PDDL_PLANNER"),
		PDDLDomainPath:           v.GetString("PDDL_DOMAIN_PATH"),
		PDDLSolverPath:           v.GetString("PDDL_SOLVER_PATH"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DUAL_AGENT", false)
	v.SetDefault("OPTION_GENERATION_INTERVAL", "200ms")
	v.SetDefault("MAX_CARRIED_PARCELS", 4)
	v.SetDefault("MAX_DISTANCE_FOR_RANDOM_MOVE", 5)
	v.SetDefault("MAX_RETRY_COMMON_DELIVERY", 10)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("USE_PDDL_PLANNER", false)
	v.SetDefault("PDDL_SOLVER_PATH", "pddl-solver")
}
