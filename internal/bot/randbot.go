package bot

import (
	rand "math/rand/v2"

	"github.com/lox/cambio/internal/game"
)

// RandBot picks uniformly among the legal actions.
type RandBot struct {
	rng *rand.Rand
}

// NewRandBot creates a new RandBot instance
func NewRandBot(rng *rand.Rand) *RandBot {
	return &RandBot{rng: rng}
}

func (r *RandBot) Decide(view game.StateView) game.Action {
	return pick(r.rng, view.LegalActions)
}
