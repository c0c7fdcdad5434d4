package deck

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"slices"
)

// ErrDeckEmpty is returned when a draw is attempted with no cards left.
var ErrDeckEmpty = errors.New("deck is empty")

const (
	// CopiesPerRank is how many of each non-joker rank the deck holds
	CopiesPerRank = 4
	// JokerCount is the number of jokers in the deck
	JokerCount = 2
	// Size is the total number of cards in a fresh deck
	Size = (NumRanks-1)*CopiesPerRank + JokerCount
	// HandSize is the number of cards dealt to each player
	HandSize = 4
)

// Counts is a multiset of cards indexed by rank.
type Counts [NumRanks]int

// Add records the given cards in the multiset.
func (c *Counts) Add(cards ...Card) {
	for _, card := range cards {
		c[card]++
	}
}

// Total returns the number of cards in the multiset.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// StartingCounts returns the multiset of a fresh deck.
func StartingCounts() Counts {
	var c Counts
	c.Add(Standard()...)
	return c
}

// Standard returns the 54 cards of a fresh deck in rank order.
func Standard() []Card {
	cards := make([]Card, 0, Size)
	for r := Ace; r <= RedKing; r++ {
		for range CopiesPerRank {
			cards = append(cards, r)
		}
	}
	for range JokerCount {
		cards = append(cards, Joker)
	}
	return cards
}

// Dealer owns the draw deck. Cards are drawn from the end of the slice.
type Dealer struct {
	cards   []Card
	initial []Card
	rng     *rand.Rand
}

// NewDealer creates a dealer holding a fresh, shuffled 54-card deck.
func NewDealer(rng *rand.Rand) *Dealer {
	if rng == nil {
		panic("rng is required for dealer creation")
	}
	d := &Dealer{
		initial: Standard(),
		rng:     rng,
	}
	d.Reset()
	return d
}

// NewDealerFromCards creates a dealer with a fixed deck order and no RNG.
// The last card of the slice is drawn first; Shuffle and Reset keep the order.
// Used for scripted games and tests.
func NewDealerFromCards(cards []Card) *Dealer {
	d := &Dealer{initial: slices.Clone(cards)}
	d.Reset()
	return d
}

// Reset restores the full deck and shuffles it
func (d *Dealer) Reset() {
	d.cards = append(d.cards[:0], d.initial...)
	d.Shuffle()
}

// Shuffle randomizes the order of the remaining cards. Dealers without an
// RNG keep their scripted order.
func (d *Dealer) Shuffle() {
	if d.rng == nil {
		return
	}
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns the top card.
func (d *Dealer) Draw() (Card, error) {
	n := len(d.cards)
	if n == 0 {
		return 0, ErrDeckEmpty
	}
	card := d.cards[n-1]
	d.cards = d.cards[:n-1]
	return card, nil
}

// DealFour draws a starting hand. The deck is left untouched if it holds
// fewer than four cards.
func (d *Dealer) DealFour() ([HandSize]Card, error) {
	var hand [HandSize]Card
	if len(d.cards) < HandSize {
		return hand, fmt.Errorf("deal %d cards from %d: %w", HandSize, len(d.cards), ErrDeckEmpty)
	}
	for i := range hand {
		hand[i], _ = d.Draw()
	}
	return hand, nil
}

// IsEmpty returns true if the deck has no cards left
func (d *Dealer) IsEmpty() bool {
	return len(d.cards) == 0
}

// Remaining returns the number of cards left in the deck
func (d *Dealer) Remaining() int {
	return len(d.cards)
}

// Cards returns a copy of the remaining deck, top card last.
func (d *Dealer) Cards() []Card {
	return slices.Clone(d.cards)
}
