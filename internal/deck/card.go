package deck

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Card is a Cambio card rank. Suits carry no meaning in the game so they are
// not represented.
type Card uint8

const (
	Joker Card = iota
	Ace
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	RedKing
)

// NumRanks is the number of distinct card ranks, jokers included.
const NumRanks = int(RedKing) + 1

// Valid reports whether c is a rank that exists in the deck.
func (c Card) Valid() bool {
	return c <= RedKing
}

// Score returns the points the card adds to a hand.
func (c Card) Score() int {
	switch {
	case c == Joker:
		return 0
	case c == RedKing:
		// Must come before the face card rule, 13 would otherwise score 10.
		return -1
	case c >= Jack:
		return 10
	default:
		return int(c)
	}
}

// String returns the short name of the card (e.g. "A", "10", "RK")
func (c Card) String() string {
	switch c {
	case Joker:
		return "JK"
	case Ace:
		return "A"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case RedKing:
		return "RK"
	}
	if c.Valid() {
		return strconv.Itoa(int(c))
	}
	return "?"
}

// ParseCard parses the short name produced by String. Plain rank numbers
// 0-13 are accepted as well.
func ParseCard(s string) (Card, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "JK", "JOKER":
		return Joker, nil
	case "A":
		return Ace, nil
	case "J":
		return Jack, nil
	case "Q":
		return Queen, nil
	case "RK", "K":
		return RedKing, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n >= NumRanks {
		return 0, fmt.Errorf("invalid card %q", s)
	}
	return Card(n), nil
}

// OptionalCard is a card slot that may be empty. The zero value is None.
type OptionalCard struct {
	card Card
	ok   bool
}

// None is the empty OptionalCard.
var None = OptionalCard{}

// Some wraps a present card.
func Some(c Card) OptionalCard {
	return OptionalCard{card: c, ok: true}
}

// Get returns the card and whether it is present.
func (o OptionalCard) Get() (Card, bool) {
	return o.card, o.ok
}

// IsSome reports whether a card is present.
func (o OptionalCard) IsSome() bool {
	return o.ok
}

func (o OptionalCard) String() string {
	if !o.ok {
		return "--"
	}
	return o.card.String()
}

// MarshalJSON encodes the card rank, or null when absent.
func (o OptionalCard) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(uint8(o.card))
}

// UnmarshalJSON accepts a rank number or null.
func (o *OptionalCard) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = None
		return nil
	}
	var n uint8
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("optional card: %w", err)
	}
	c := Card(n)
	if !c.Valid() {
		return fmt.Errorf("optional card: rank %d out of range", n)
	}
	*o = Some(c)
	return nil
}
