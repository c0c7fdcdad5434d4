package bot

import (
	rand "math/rand/v2"

	"github.com/lox/cambio/internal/game"
)

// DrawBot draws from the deck whenever it can and otherwise plays a random
// legal action. It never calls cambio on purpose, so it is a useful baseline
// opponent.
type DrawBot struct {
	rng *rand.Rand
}

func NewDrawBot(rng *rand.Rand) *DrawBot {
	return &DrawBot{rng: rng}
}

func (d *DrawBot) Decide(view game.StateView) game.Action {
	if has(view.LegalActions, game.DrawDeck) {
		return game.DrawDeck
	}
	return pick(d.rng, view.LegalActions)
}
