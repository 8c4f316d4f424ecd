// Package main provides the agent process binary: it reads configuration
// from the environment, dials the game server, and runs one worker (or two,
// under DUAL_AGENT) until terminated by a signal.
package main

import (
	"context"
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/deliveroo-agent/core/internal/config"
	"github.com/deliveroo-agent/core/internal/credentials"
	"github.com/deliveroo-agent/core/internal/observability"
	"github.com/deliveroo-agent/core/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	specs, err := buildWorkerSpecs(cfg)
	if err != nil {
		logger.Fatal("resolving agent identities", zap.Error(err))
	}

	logger.Info("starting agent process",
		zap.String("host", cfg.Host),
		zap.Bool("dual_agent", cfg.DualAgent),
		zap.Duration("option_generation_interval", cfg.OptionGenerationInterval),
	)

	lifecycle := server.NewLifecycle(logger)
	for _, spec := range specs {
		name := "leader"
		if !spec.isLeader {
			name = "follower"
		}
		lifecycle.Add(name, newWorker(logger, cfg, spec))
	}

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Fatal("agent process error", zap.Error(err))
	}
}

// buildWorkerSpecs resolves the leader's (and, under DUAL_AGENT, the
// follower's) own and companion ids from their tokens' "sub" claims before
// any sensor event arrives (internal/credentials.AgentID's doc comment
// explains why this must happen up front).
func buildWorkerSpecs(cfg config.Config) ([]workerSpec, error) {
	leaderID, ok := credentials.AgentID(cfg.Token)
	if !ok {
		return nil, fmt.Errorf("cmd/agent: TOKEN carries no usable sub claim")
	}

	if !cfg.DualAgent {
		return []workerSpec{{
			token:    cfg.Token,
			id:       leaderID,
			isLeader: true,
		}}, nil
	}

	followerID, ok := credentials.AgentID(cfg.Token2)
	if !ok {
		return nil, fmt.Errorf("cmd/agent: TOKEN_2 carries no usable sub claim")
	}

	return []workerSpec{
		{token: cfg.Token, id: leaderID, companionID: followerID, isLeader: true, dualAgent: true},
		{token: cfg.Token2, id: followerID, companionID: leaderID, isLeader: false, dualAgent: true},
	}, nil
}
