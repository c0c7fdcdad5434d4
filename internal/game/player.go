package game

import (
	"fmt"

	"github.com/lox/cambio/internal/deck"
)

// Player holds a fixed four-slot hand and whether its owner has seen each
// slot's current card.
type Player struct {
	ID    int
	hand  [deck.HandSize]deck.Card
	known [deck.HandSize]bool
}

// NewPlayer creates a player with an empty, unseen hand.
func NewPlayer(id int) *Player {
	return &Player{ID: id}
}

// ReceiveInitialCards replaces the hand. Only slots 0 and 1 start known.
func (p *Player) ReceiveInitialCards(cards [deck.HandSize]deck.Card) {
	p.hand = cards
	p.known = [deck.HandSize]bool{true, true, false, false}
}

// SwapCard puts c into slot index and returns the card it replaces. The slot
// becomes known.
func (p *Player) SwapCard(index int, c deck.Card) (deck.Card, error) {
	if index < 0 || index >= deck.HandSize {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSwapIndex, index)
	}
	old := p.hand[index]
	p.hand[index] = c
	p.known[index] = true
	return old, nil
}

// Score sums the hand.
func (p *Player) Score() int {
	total := 0
	for _, c := range p.hand {
		total += c.Score()
	}
	return total
}

// Obs returns the hand as its owner sees it, unknown slots empty.
func (p *Player) Obs() [deck.HandSize]deck.OptionalCard {
	var obs [deck.HandSize]deck.OptionalCard
	for i, c := range p.hand {
		if p.known[i] {
			obs[i] = deck.Some(c)
		}
	}
	return obs
}

// Hand returns the true hand. It is never part of a StateView.
func (p *Player) Hand() [deck.HandSize]deck.Card {
	return p.hand
}

// Known returns the visibility flags.
func (p *Player) Known() [deck.HandSize]bool {
	return p.known
}
