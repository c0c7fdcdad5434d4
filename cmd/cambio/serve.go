package main

import (
	"net"
	"time"

	"github.com/lox/cambio/cmd/cambio/shared"
	"github.com/lox/cambio/internal/config"
	"github.com/lox/cambio/internal/server"
	"github.com/lox/cambio/internal/spawner"
)

// ServeCmd runs the WebSocket game server. Flags override the config file.
type ServeCmd struct {
	Config    string   `type:"path" default:"cambio.hcl" help:"HCL config file (ignored when missing)"`
	Addr      string   `help:"Listen address (default from config, localhost:8080)"`
	Players   int      `help:"Players per game"`
	TimeoutMs int      `help:"Decision timeout in milliseconds"`
	Seed      *int64   `help:"Deterministic RNG seed (random when unset)"`
	Games     int      `help:"Stop after this many games (0 for unlimited)"`
	RecordDir string   `type:"path" help:"Write a TOML record of every game to this directory"`
	LogLevel  string   `help:"Log level (debug|info|warn|error)"`
	LogJSON   bool     `help:"Output JSON logs instead of console format"`
	Bots      []string `sep:"," help:"Built-in bots to seat in-process, e.g. greedy,random"`
}

func (c *ServeCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	srv := cfg.Server
	if c.Players != 0 {
		srv.Players = c.Players
	}
	if c.TimeoutMs != 0 {
		srv.TimeoutMS = c.TimeoutMs
	}
	if c.Seed != nil {
		srv.Seed = *c.Seed
	}
	if c.RecordDir != "" {
		srv.RecordDir = c.RecordDir
	}
	if c.LogLevel != "" {
		srv.LogLevel = c.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	addr := c.Addr
	if addr == "" {
		addr = cfg.ServerAddress()
	}

	logger, err := shared.NewLogger(srv.LogLevel, c.LogJSON)
	if err != nil {
		return err
	}

	seed := srv.Seed
	if c.Seed == nil && seed == 0 {
		seed = time.Now().UnixNano()
		logger.Info().Int64("seed", seed).Msg("Using random seed")
	} else {
		logger.Info().Int64("seed", seed).Msg("Using deterministic seed")
	}

	s, err := server.New(server.Config{
		Players:         srv.Players,
		DecisionTimeout: cfg.DecisionTimeout(),
		Seed:            seed,
		Games:           c.Games,
		RecordDir:       srv.RecordDir,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	logger.Info().
		Str("address", addr).
		Int("players", srv.Players).
		Dur("decision_timeout", cfg.DecisionTimeout()).
		Int("games", c.Games).
		Msg("Starting Cambio server")

	ctx, cancel := shared.SetupSignalHandlerWithLogger(logger)
	defer cancel()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	if len(c.Bots) > 0 {
		bots := spawner.NewWithSeed(ctx, "ws://"+ln.Addr().String()+"/ws", logger, seed)
		for _, name := range c.Bots {
			if err := bots.Spawn(spawner.BotSpec{Strategy: name}); err != nil {
				_ = ln.Close()
				return err
			}
		}
		defer func() {
			if err := bots.StopAll(); err != nil {
				logger.Warn().Err(err).Msg("Spawned bot failed")
			}
		}()
	}

	return s.ServeListener(ctx, ln)
}
