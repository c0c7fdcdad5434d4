// Package encoding turns game actions and state views into the fixed-size
// numeric form used by learning agents. The engine itself never depends on
// this package.
package encoding

import (
	"fmt"

	"github.com/lox/cambio/internal/deck"
	"github.com/lox/cambio/internal/game"
)

const (
	handWidth        = 52
	discardWidth     = 52
	maxTrackedPlayer = 3
	discardsTracked  = 4

	// VectorSize is the length of the slice returned by Vector.
	VectorSize = handWidth + 1 + discardWidth + maxTrackedPlayer*discardsTracked + 4
)

// NumActions is the width of an action mask.
const NumActions = game.NumActions

// ActionID returns the stable index of an action.
func ActionID(a game.Action) (int, error) {
	if !a.Valid() {
		return 0, fmt.Errorf("invalid action %d", uint8(a))
	}
	return int(a), nil
}

// ActionFromID is the inverse of ActionID.
func ActionFromID(id int) (game.Action, error) {
	if id < 0 || id >= NumActions {
		return 0, fmt.Errorf("action id %d out of range", id)
	}
	return game.Action(id), nil
}

// LegalMask returns a 0/1 mask over action ids.
func LegalMask(view game.StateView) [NumActions]float32 {
	var mask [NumActions]float32
	for _, a := range view.LegalActions {
		mask[a] = 1
	}
	return mask
}

// Vector flattens a state view:
//
//	[0,52)    own known cards, one-hot by rank
//	52        top discard rank+1, 0 when the pile is empty
//	[53,105)  ranks present in the discard pile
//	[105,117) first four discards of players 0-2, rank+1
//	117       drawn card rank, -1 when none
//	118       draw phase flag
//	119       cambio called flag
//	120       current player
//
// Tables with more than three players only have their first three players'
// discards encoded.
func Vector(view game.StateView) []float32 {
	v := make([]float32, VectorSize)

	for _, slot := range view.Obs {
		if c, ok := slot.Get(); ok {
			v[int(c)] = 1
		}
	}

	off := handWidth
	if c, ok := view.Public.TopCard.Get(); ok {
		v[off] = float32(c) + 1
	}
	off++

	for _, c := range view.Public.DiscardPile {
		v[off+int(c)] = 1
	}
	off += discardWidth

	for p := range maxTrackedPlayer {
		for i, c := range firstN(view.Public.PlayerDiscards[p], discardsTracked) {
			v[off+p*discardsTracked+i] = float32(c) + 1
		}
	}
	off += maxTrackedPlayer * discardsTracked

	v[off] = -1
	if c, ok := view.DrawnCard.Get(); ok {
		v[off] = float32(c)
	}
	v[off+1] = boolFloat(view.DrawPhase)
	v[off+2] = boolFloat(view.CalledCambio)
	v[off+3] = float32(view.CurrentPlayer)

	return v
}

func firstN(cards []deck.Card, n int) []deck.Card {
	if len(cards) > n {
		return cards[:n]
	}
	return cards
}

func boolFloat(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
