package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/cambio/cmd/cambio/shared"
	"github.com/lox/cambio/internal/config"
	"github.com/lox/cambio/internal/simulator"
)

// SimulateCmd plays a batch of bot games. Flags override the config file.
type SimulateCmd struct {
	Config    string   `type:"path" default:"cambio.hcl" help:"HCL config file (ignored when missing)"`
	Games     int      `help:"Number of games to simulate"`
	Seed      *int64   `help:"Base RNG seed (random when unset)"`
	Players   int      `help:"Players per game"`
	Workers   int      `help:"Parallel workers (default: number of CPUs)"`
	Bots      []string `sep:"," help:"Bot strategies, one for every seat or a single one for all"`
	TimeoutMs int      `help:"Per-game timeout in milliseconds"`
	RecordDir string   `type:"path" help:"Write a TOML record of every game to this directory"`
	Progress  bool     `help:"Print progress while running"`
	Verbose   bool     `short:"V" help:"Verbose logging"`
}

func (c *SimulateCmd) Run() error {
	cfg, err := c.load()
	if err != nil {
		return err
	}

	level := log.WarnLevel
	if c.Verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: level, ReportTimestamp: c.Verbose})

	sim := cfg.Simulation
	seed := sim.Seed
	if c.Seed == nil && seed == 0 {
		seed = time.Now().UnixNano()
	}

	bots := c.Bots
	if len(bots) == 0 {
		bots = cfg.Bots()
	}

	simCfg := simulator.Config{
		Games:     sim.Games,
		Seed:      seed,
		Players:   sim.Players,
		Bots:      bots,
		Workers:   sim.Workers,
		Timeout:   cfg.SimulationTimeout(),
		RecordDir: sim.RecordDir,
		Logger:    logger,
	}
	if c.Progress {
		step := max(simCfg.Games/20, 1)
		simCfg.Progress = func(done, total int) {
			if done%step == 0 || done == total {
				fmt.Fprintf(os.Stderr, "\r%d/%d games", done, total)
				if done == total {
					fmt.Fprintln(os.Stderr)
				}
			}
		}
	}

	s, err := simulator.New(simCfg)
	if err != nil {
		return err
	}

	ctx, cancel := shared.SetupSignalHandler()
	defer cancel()

	fmt.Printf("Starting simulation: %d games, %d players (seed: %d)\n", simCfg.Games, simCfg.Players, seed)
	start := time.Now()

	report, err := s.Run(ctx)
	if err != nil {
		return err
	}

	simulator.PrintSummary(os.Stdout, report, s.Config())
	fmt.Printf("Completed in %v\n", time.Since(start).Round(time.Millisecond))
	if simCfg.RecordDir != "" {
		fmt.Printf("Records written to %s\n", simCfg.RecordDir)
	}
	return nil
}

func (c *SimulateCmd) load() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}

	sim := cfg.Simulation
	if c.Games != 0 {
		sim.Games = c.Games
	}
	if c.Seed != nil {
		sim.Seed = *c.Seed
	}
	if c.Players != 0 {
		sim.Players = c.Players
		if len(cfg.Seats) != c.Players {
			cfg.Seats = nil
		}
	}
	if c.Workers != 0 {
		sim.Workers = c.Workers
	}
	if c.TimeoutMs != 0 {
		sim.TimeoutMS = c.TimeoutMs
	}
	if c.RecordDir != "" {
		sim.RecordDir = c.RecordDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
