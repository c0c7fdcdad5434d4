// Package config loads the optional HCL configuration file shared by the
// simulate and serve commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/cambio/internal/bot"
	"github.com/lox/cambio/internal/game"
)

// Config represents the complete configuration file
type Config struct {
	Simulation *SimulationSettings `hcl:"simulation,block"`
	Server     *ServerSettings     `hcl:"server,block"`
	Seats      []SeatConfig        `hcl:"seat,block"`
}

// SimulationSettings controls batch simulation runs
type SimulationSettings struct {
	Games     int    `hcl:"games,optional"`
	Seed      int64  `hcl:"seed,optional"`
	Players   int    `hcl:"players,optional"`
	Workers   int    `hcl:"workers,optional"`
	TimeoutMS int    `hcl:"timeout_ms,optional"`
	RecordDir string `hcl:"record_dir,optional"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address   string `hcl:"address,optional"`
	Port      int    `hcl:"port,optional"`
	Players   int    `hcl:"players,optional"`
	TimeoutMS int    `hcl:"timeout_ms,optional"`
	Seed      int64  `hcl:"seed,optional"`
	LogLevel  string `hcl:"log_level,optional"`
	RecordDir string `hcl:"record_dir,optional"`
}

// SeatConfig assigns a bot strategy to a simulation seat
type SeatConfig struct {
	Name string `hcl:"name,label"`
	Bot  string `hcl:"bot"`
}

const (
	defaultGames          = 1000
	defaultSimTimeoutMS   = 5000
	defaultAddress        = "localhost"
	defaultPort           = 8080
	defaultDecisionMS     = 10000
	defaultServerLogLevel = "info"
)

// Default returns the configuration used when no file is given
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load loads configuration from an HCL file. A missing file yields the
// defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Simulation == nil {
		c.Simulation = &SimulationSettings{}
	}
	if c.Simulation.Games == 0 {
		c.Simulation.Games = defaultGames
	}
	if c.Simulation.Players == 0 {
		c.Simulation.Players = game.DefaultPlayers
		if len(c.Seats) > 0 {
			c.Simulation.Players = len(c.Seats)
		}
	}
	if c.Simulation.TimeoutMS == 0 {
		c.Simulation.TimeoutMS = defaultSimTimeoutMS
	}

	if c.Server == nil {
		c.Server = &ServerSettings{}
	}
	if c.Server.Address == "" {
		c.Server.Address = defaultAddress
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.Players == 0 {
		c.Server.Players = game.DefaultPlayers
	}
	if c.Server.TimeoutMS == 0 {
		c.Server.TimeoutMS = defaultDecisionMS
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = defaultServerLogLevel
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	sim := c.Simulation
	if sim.Games <= 0 {
		return fmt.Errorf("simulation: games must be positive, got %d", sim.Games)
	}
	if err := validPlayers(sim.Players); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if sim.Workers < 0 {
		return fmt.Errorf("simulation: workers must not be negative, got %d", sim.Workers)
	}
	if sim.TimeoutMS < 0 {
		return fmt.Errorf("simulation: timeout_ms must not be negative, got %d", sim.TimeoutMS)
	}

	if len(c.Seats) > 0 && len(c.Seats) != sim.Players {
		return fmt.Errorf("simulation: %d seats configured for %d players", len(c.Seats), sim.Players)
	}
	seen := make(map[string]bool, len(c.Seats))
	for _, seat := range c.Seats {
		if seen[seat.Name] {
			return fmt.Errorf("seat %s: declared twice", seat.Name)
		}
		seen[seat.Name] = true
		if !bot.Valid(seat.Bot) {
			return fmt.Errorf("seat %s: invalid bot %s", seat.Name, seat.Bot)
		}
	}

	srv := c.Server
	if srv.Port < 1 || srv.Port > 65535 {
		return fmt.Errorf("server: invalid port: %d", srv.Port)
	}
	if err := validPlayers(srv.Players); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if srv.TimeoutMS <= 0 {
		return fmt.Errorf("server: timeout_ms must be positive, got %d", srv.TimeoutMS)
	}
	switch srv.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("server: invalid log_level %q", srv.LogLevel)
	}
	return nil
}

func validPlayers(n int) error {
	if n < game.MinPlayers || n > game.MaxPlayers {
		return fmt.Errorf("players must be between %d and %d, got %d", game.MinPlayers, game.MaxPlayers, n)
	}
	return nil
}

// Bots returns the per-seat bot lineup, or nil when no seats are declared.
func (c *Config) Bots() []string {
	if len(c.Seats) == 0 {
		return nil
	}
	bots := make([]string, len(c.Seats))
	for i, seat := range c.Seats {
		bots[i] = seat.Bot
	}
	return bots
}

// SimulationTimeout returns the per-game timeout.
func (c *Config) SimulationTimeout() time.Duration {
	return time.Duration(c.Simulation.TimeoutMS) * time.Millisecond
}

// DecisionTimeout returns how long the server waits for a remote decision.
func (c *Config) DecisionTimeout() time.Duration {
	return time.Duration(c.Server.TimeoutMS) * time.Millisecond
}

// ServerAddress returns the full listen address
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
