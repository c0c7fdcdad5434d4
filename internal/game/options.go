package game

import "github.com/lox/cambio/internal/deck"

const (
	// DefaultPlayers is the table size used when no option overrides it
	DefaultPlayers = 3
	// MinPlayers is the smallest supported table
	MinPlayers = 2
	// MaxPlayers leaves at least two cards in the deck after the deal
	MaxPlayers = (deck.Size - 2) / deck.HandSize
)

// Option configures a Game during creation.
type Option func(*gameConfig)

type gameConfig struct {
	numPlayers int
	dealer     *deck.Dealer // overrides the RNG-built dealer
}

// WithPlayers sets the number of players.
func WithPlayers(n int) Option {
	return func(c *gameConfig) {
		c.numPlayers = n
	}
}

// WithDealer uses a prepared dealer, typically a scripted deck in tests.
func WithDealer(d *deck.Dealer) Option {
	return func(c *gameConfig) {
		c.dealer = d
	}
}
