package bot

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/lox/cambio/internal/deck"
	"github.com/lox/cambio/internal/game"
)

const (
	// unknownEstimate is the expected score of an unseen card.
	unknownEstimate = 5
	// cambioThreshold is the estimated hand total at or below which the
	// greedy bot calls cambio.
	cambioThreshold = 6
	// keepThreshold is the highest top-discard score worth taking from the
	// pile.
	keepThreshold = 4
)

// GreedyBot keeps low cards, replaces its worst known card, and calls cambio
// once its estimated hand total is small enough.
type GreedyBot struct {
	logger *log.Logger
}

// NewGreedyBot creates a greedy bot. A nil logger discards decision logs.
func NewGreedyBot(logger *log.Logger) *GreedyBot {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &GreedyBot{logger: logger.WithPrefix("greedy")}
}

func (g *GreedyBot) Decide(view game.StateView) game.Action {
	var action game.Action
	var reason string
	if view.DrawPhase {
		action, reason = g.draw(view)
	} else {
		action, reason = g.place(view)
	}
	g.logger.Debug("decision", "player", view.PlayerID, "action", action, "reason", reason)
	return action
}

func (g *GreedyBot) draw(view game.StateView) (game.Action, string) {
	legal := view.LegalActions
	estimate := EstimateHand(view.Obs)

	if has(legal, game.CallCambio) && estimate <= cambioThreshold {
		return game.CallCambio, "estimated hand is low"
	}

	if top, ok := view.Public.TopCard.Get(); ok && has(legal, game.DrawPile) {
		_, worst := worstSlot(view.Obs)
		if top.Score() < worst && top.Score() <= keepThreshold {
			return game.DrawPile, "top discard beats worst slot"
		}
	}

	if has(legal, game.DrawDeck) {
		return game.DrawDeck, "default draw"
	}
	return legal[0], "only option"
}

func (g *GreedyBot) place(view game.StateView) (game.Action, string) {
	drawn, ok := view.DrawnCard.Get()
	if !ok {
		return game.Discard, "no drawn card visible"
	}

	slot, worst := worstSlot(view.Obs)
	if drawn.Score() < worst {
		a, err := game.SwapAction(slot)
		if err == nil {
			return a, "drawn card beats worst slot"
		}
	}
	return game.Discard, "drawn card is not an improvement"
}

// EstimateHand sums the known cards and charges unknownEstimate for each
// unseen slot.
func EstimateHand(obs [deck.HandSize]deck.OptionalCard) int {
	total := 0
	for _, slot := range obs {
		if c, ok := slot.Get(); ok {
			total += c.Score()
		} else {
			total += unknownEstimate
		}
	}
	return total
}

// worstSlot returns the slot with the highest expected score. Unknown slots
// count as unknownEstimate, so a known high card is replaced before an
// unknown one.
func worstSlot(obs [deck.HandSize]deck.OptionalCard) (int, int) {
	slot, worst := 0, -2
	for i, o := range obs {
		score := unknownEstimate
		if c, ok := o.Get(); ok {
			score = c.Score()
		}
		if score > worst {
			slot, worst = i, score
		}
	}
	return slot, worst
}
