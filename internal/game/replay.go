package game

import (
	"fmt"

	"github.com/lox/cambio/internal/randutil"
)

// Replay rebuilds a game from its seed and the sequence of accepted actions.
// Any action that is not legal at its point in the sequence fails the replay.
func Replay(seed int64, players int, actions []Action) (*Game, error) {
	g, err := New(randutil.New(seed), WithPlayers(players))
	if err != nil {
		return nil, err
	}
	for i, a := range actions {
		if _, _, err := g.Step(a); err != nil {
			return g, fmt.Errorf("replay step %d (%s): %w", i, a, err)
		}
	}
	return g, nil
}

// Actions extracts the action sequence from a step log.
func Actions(log []StepRecord) []Action {
	actions := make([]Action, len(log))
	for i, r := range log {
		actions[i] = r.Action
	}
	return actions
}
