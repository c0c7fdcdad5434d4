// Package bot provides built-in Cambio decision makers.
package bot

import (
	"fmt"
	"io"
	rand "math/rand/v2"
	"slices"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/lox/cambio/internal/game"
)

// Bot picks an action from a player's view. Decide is only called when the
// view's player is the one to act.
type Bot interface {
	Decide(view game.StateView) game.Action
}

// Factory builds a bot. Each seat gets its own RNG so games stay
// reproducible regardless of how many bots share a table.
type Factory func(rng *rand.Rand, logger *log.Logger) Bot

var registry = map[string]Factory{
	"random": func(rng *rand.Rand, _ *log.Logger) Bot { return NewRandBot(rng) },
	"draw":   func(rng *rand.Rand, _ *log.Logger) Bot { return NewDrawBot(rng) },
	"greedy": func(_ *rand.Rand, logger *log.Logger) Bot { return NewGreedyBot(logger) },
}

// New builds the named strategy.
func New(name string, rng *rand.Rand, logger *log.Logger) (Bot, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown bot strategy %q (available: %v)", name, Names())
	}
	if rng == nil {
		panic("rng is required for bot creation")
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return f(rng, logger), nil
}

// Names lists the registered strategies in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Valid reports whether name is a registered strategy.
func Valid(name string) bool {
	_, ok := registry[name]
	return ok
}

func pick(rng *rand.Rand, legal []game.Action) game.Action {
	if len(legal) == 0 {
		return game.DrawDeck
	}
	return legal[rng.IntN(len(legal))]
}

func has(legal []game.Action, a game.Action) bool {
	return slices.Contains(legal, a)
}
