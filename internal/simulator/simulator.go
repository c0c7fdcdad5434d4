package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/cambio/internal/bot"
	"github.com/lox/cambio/internal/game"
	"github.com/lox/cambio/internal/gameid"
	"github.com/lox/cambio/internal/history"
	"github.com/lox/cambio/internal/match"
	"github.com/lox/cambio/internal/randutil"
	"github.com/lox/cambio/internal/statistics"
	"golang.org/x/sync/errgroup"
)

// ErrGameTimeout is returned when a single game exceeds Config.Timeout.
var ErrGameTimeout = errors.New("game timed out")

// AgentFactory builds the agent for a seat.
type AgentFactory func(name string, rng *rand.Rand, logger *log.Logger) (match.Agent, error)

// Config holds configuration for running simulations
type Config struct {
	Games   int
	Seed    int64
	Players int
	// Bots names the strategy per seat. A single name fills every seat.
	// Lineups rotate by one seat per game to cancel positional bias.
	Bots      []string
	Workers   int
	Timeout   time.Duration // Per game; zero disables the limit
	RecordDir string        // Save every game as a TOML record when set
	Logger    *log.Logger
	Clock     quartz.Clock
	NewAgent  AgentFactory
	// Progress, if set, is called after each finished game. It may be
	// called from several goroutines.
	Progress func(done, total int)
}

// GameOutcome is one finished simulated game.
type GameOutcome struct {
	Index  int
	Seed   int64
	ID     string
	Bots   []string
	Result *match.Result
	Path   string // Record path when RecordDir is set
}

// Simulator runs Cambio game simulations
type Simulator struct {
	config Config
	logger *log.Logger
}

// New validates the configuration and fills in defaults.
func New(config Config) (*Simulator, error) {
	if config.Games <= 0 {
		return nil, fmt.Errorf("games must be positive, got %d", config.Games)
	}
	if config.Players == 0 {
		config.Players = game.DefaultPlayers
	}
	if config.Players < game.MinPlayers || config.Players > game.MaxPlayers {
		return nil, fmt.Errorf("players must be between %d and %d, got %d", game.MinPlayers, game.MaxPlayers, config.Players)
	}
	if len(config.Bots) == 0 {
		config.Bots = []string{"random"}
	}
	if len(config.Bots) != 1 && len(config.Bots) != config.Players {
		return nil, fmt.Errorf("got %d bots for %d players", len(config.Bots), config.Players)
	}
	if config.NewAgent == nil {
		for _, name := range config.Bots {
			if !bot.Valid(name) {
				return nil, fmt.Errorf("unknown bot %q (available: %s)", name, strings.Join(bot.Names(), ", "))
			}
		}
		config.NewAgent = defaultAgent
	}
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.Timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative, got %v", config.Timeout)
	}
	if config.Clock == nil {
		config.Clock = quartz.NewReal()
	}
	logger := config.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Simulator{config: config, logger: logger.WithPrefix("simulator")}, nil
}

func defaultAgent(name string, rng *rand.Rand, logger *log.Logger) (match.Agent, error) {
	return bot.New(name, rng, logger)
}

// Config returns the effective configuration.
func (s *Simulator) Config() Config {
	return s.config
}

// Run plays every game and aggregates the results. Games are distributed over
// Workers goroutines; each game's seed depends only on Seed and its index, so
// the report is the same for any worker count. The first failing game cancels
// the rest.
func (s *Simulator) Run(ctx context.Context) (*statistics.Report, error) {
	outcomes, err := s.RunGames(ctx)
	if err != nil {
		return nil, err
	}

	report := statistics.NewReport()
	for _, o := range outcomes {
		r := o.Result
		if err := report.AddGame(o.Seed, o.Bots, r.Payoffs, r.Scores, r.Outcome, callerOf(r), r.Steps); err != nil {
			return nil, err
		}
	}

	if err := report.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return report, nil
}

// RunGames plays every game and returns the outcomes in game order.
func (s *Simulator) RunGames(ctx context.Context) ([]*GameOutcome, error) {
	outcomes := make([]*GameOutcome, s.config.Games)
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)

	start := time.Now()
	for i := range s.config.Games {
		g.Go(func() error {
			o, err := s.PlayGame(gctx, i)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			outcomes[i] = o
			n := int(done.Add(1))
			if s.config.Progress != nil {
				s.config.Progress(n, s.config.Games)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info("Simulation complete", "games", s.config.Games, "workers", s.config.Workers, "elapsed", time.Since(start).Round(time.Millisecond))
	return outcomes, nil
}

// PlayGame plays game i of the run.
func (s *Simulator) PlayGame(ctx context.Context, i int) (*GameOutcome, error) {
	seed := randutil.Derive(s.config.Seed, i)
	lineup := Lineup(s.config.Bots, s.config.Players, i)

	g, err := game.New(randutil.New(seed), game.WithPlayers(s.config.Players))
	if err != nil {
		return nil, err
	}

	agents := make([]match.Agent, len(lineup))
	for seat, name := range lineup {
		agents[seat], err = s.config.NewAgent(name, randutil.New(randutil.Derive(seed, seat)), s.logger)
		if err != nil {
			return nil, fmt.Errorf("seat %d: %w", seat, err)
		}
	}

	gctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	if s.config.Timeout > 0 {
		timer := s.config.Clock.AfterFunc(s.config.Timeout, func() {
			cancel(fmt.Errorf("%w after %v (seed: %d)", ErrGameTimeout, s.config.Timeout, seed))
		})
		defer timer.Stop()
	}

	res, err := match.Run(gctx, g, agents, match.WithLogger(s.logger))
	if err != nil {
		if cause := context.Cause(gctx); errors.Is(cause, ErrGameTimeout) {
			return nil, cause
		}
		return nil, fmt.Errorf("seed %d: %w", seed, err)
	}

	o := &GameOutcome{
		Index:  i,
		Seed:   seed,
		ID:     gameid.FromSeed(seed),
		Bots:   lineup,
		Result: res,
	}

	if s.config.RecordDir != "" {
		o.Path, err = history.Save(s.config.RecordDir, history.NewRecord(o.ID, seed, lineup, g))
		if err != nil {
			return nil, err
		}
	}

	s.logger.Debug("Game finished", "game", i, "seed", seed, "outcome", res.Outcome, "winner", lineup[res.Winner], "steps", res.Steps)
	return o, nil
}

// Lineup returns the seat assignment for game i.
func Lineup(bots []string, players, i int) []string {
	lineup := make([]string, players)
	for seat := range lineup {
		if len(bots) == 1 {
			lineup[seat] = bots[0]
		} else {
			lineup[seat] = bots[(seat+i)%len(bots)]
		}
	}
	return lineup
}

func callerOf(r *match.Result) int {
	for _, step := range r.Log {
		if step.Action == game.CallCambio {
			return step.Player
		}
	}
	return -1
}
