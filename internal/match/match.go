// Package match plays single Cambio games between agents.
//
// Run drives the game loop: it asks the acting seat's agent for an action,
// applies it, and checks card conservation after every step. Agents never
// touch the game directly, so an illegal decision is reported as an error
// rather than silently replaced.
package match

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/lox/cambio/internal/game"
)

// DefaultMaxSteps bounds a single game. Random play finishes well within it.
const DefaultMaxSteps = 1000

// ErrStepLimit is returned when a game does not finish within MaxSteps.
var ErrStepLimit = errors.New("step limit reached")

// Agent decides an action from a player's view.
type Agent interface {
	Decide(view game.StateView) game.Action
}

// ContextAgent is implemented by agents that block on I/O, such as remote
// or human players. Run prefers DecideContext when it is available.
type ContextAgent interface {
	DecideContext(ctx context.Context, view game.StateView) (game.Action, error)
}

// FromContext wraps a ContextAgent so it can be seated. Run always calls
// DecideContext on the result; Decide uses a background context and is only
// there for callers outside Run.
func FromContext(ca ContextAgent) Agent {
	return contextAgent{ca}
}

type contextAgent struct {
	ContextAgent
}

func (c contextAgent) Decide(view game.StateView) game.Action {
	a, _ := c.DecideContext(context.Background(), view)
	return a
}

// AgentFunc adapts a function to Agent.
type AgentFunc func(view game.StateView) game.Action

func (f AgentFunc) Decide(view game.StateView) game.Action { return f(view) }

// Result is the outcome of a finished game.
type Result struct {
	Payoffs []int
	Scores  []int
	Winner  int
	Outcome game.Outcome
	Steps   int
	Log     []game.StepRecord
}

// StepEvent is passed to observers after each accepted step.
type StepEvent struct {
	Step   int
	Player int
	Action game.Action
	// Next is the view of the player who acts next.
	Next game.StateView
}

type runConfig struct {
	maxSteps  int
	logger    *log.Logger
	observers []func(StepEvent)
}

// Option configures Run.
type Option func(*runConfig)

// WithMaxSteps overrides DefaultMaxSteps.
func WithMaxSteps(n int) Option {
	return func(c *runConfig) {
		c.maxSteps = n
	}
}

// WithLogger sets the logger for per-step debug output.
func WithLogger(logger *log.Logger) Option {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithObserver registers a callback invoked after every accepted step.
func WithObserver(fn func(StepEvent)) Option {
	return func(c *runConfig) {
		c.observers = append(c.observers, fn)
	}
}

// Run plays g to completion with one agent per seat. The game must be freshly
// dealt or mid-episode; Run does not reset it.
func Run(ctx context.Context, g *game.Game, agents []Agent, opts ...Option) (*Result, error) {
	if len(agents) != g.NumPlayers() {
		return nil, fmt.Errorf("got %d agents for %d players", len(agents), g.NumPlayers())
	}

	cfg := &runConfig{maxSteps: DefaultMaxSteps}
	for _, opt := range opts {
		opt(cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	logger = logger.WithPrefix("match")

	if err := g.CheckConservation(); err != nil {
		return nil, err
	}

	steps := 0
	for !g.IsOver() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("after %d steps: %w", steps, err)
		}
		if steps >= cfg.maxSteps {
			return nil, fmt.Errorf("%w: %d", ErrStepLimit, cfg.maxSteps)
		}

		player := g.PlayerID()
		view, err := g.State(player)
		if err != nil {
			return nil, err
		}

		action, err := decide(ctx, agents[player], view)
		if err != nil {
			return nil, fmt.Errorf("player %d decide: %w", player, err)
		}

		next, _, err := g.Step(action)
		if err != nil {
			logger.Error("Rejected action", "player", player, "action", action, "error", err)
			return nil, fmt.Errorf("player %d: %w", player, err)
		}
		steps++

		logger.Debug("Player action", "step", steps, "player", player, "action", action, "deck", next.DeckRemaining)

		if err := g.CheckConservation(); err != nil {
			logger.Error("Card conservation violated", "step", steps, "error", err)
			return nil, fmt.Errorf("step %d: %w", steps, err)
		}

		for _, fn := range cfg.observers {
			fn(StepEvent{Step: steps, Player: player, Action: action, Next: next})
		}
	}

	result := &Result{
		Payoffs: g.Payoffs(),
		Scores:  g.Scores(),
		Winner:  g.Winner(),
		Outcome: g.Outcome(),
		Steps:   steps,
		Log:     g.Log(),
	}
	logger.Debug("Game over", "outcome", result.Outcome, "winner", result.Winner, "scores", result.Scores, "steps", steps)
	return result, nil
}

func decide(ctx context.Context, agent Agent, view game.StateView) (game.Action, error) {
	if ca, ok := agent.(ContextAgent); ok {
		return ca.DecideContext(ctx, view)
	}
	return agent.Decide(view), nil
}
