// Package game implements the Cambio turn state machine.
//
// A Game owns one dealer and N players. Each ply is a draw-phase action
// (draw_deck, draw_pile or call_cambio) followed, after a draw, by an
// action-phase action (discard or swap_0..swap_3). Calling cambio starts a
// countdown of N-1 completed plies; the game also ends as soon as the deck
// is empty. The lowest hand score wins.
//
// # Basic Usage
//
//	g, err := game.New(randutil.New(42), game.WithPlayers(3))
//	for !g.IsOver() {
//	    view, _ := g.State(g.PlayerID())
//	    if _, _, err := g.Step(pick(view.LegalActions)); err != nil {
//	        // IllegalActionError: state is unchanged
//	    }
//	}
//	payoffs := g.Payoffs()
//
// # Deterministic Testing
//
// Games take an explicit RNG. Use game.WithDealer with
// deck.NewDealerFromCards for a fixed deck order, and Replay to rebuild a
// game from a seed and its action log.
package game
