package game

import (
	"fmt"
	"strings"

	"github.com/lox/cambio/internal/deck"
)

// Action is one of the closed set of moves a player can make.
type Action uint8

const (
	DrawDeck Action = iota
	DrawPile
	CallCambio
	Discard
	Swap0
	Swap1
	Swap2
	Swap3
)

// NumActions is the size of the action vocabulary.
const NumActions = int(Swap3) + 1

var actionNames = [NumActions]string{
	DrawDeck:   "draw_deck",
	DrawPile:   "draw_pile",
	CallCambio: "call_cambio",
	Discard:    "discard",
	Swap0:      "swap_0",
	Swap1:      "swap_1",
	Swap2:      "swap_2",
	Swap3:      "swap_3",
}

// AllActions returns every action in vocabulary order.
func AllActions() []Action {
	all := make([]Action, NumActions)
	for i := range all {
		all[i] = Action(i)
	}
	return all
}

// SwapAction returns the action that swaps the drawn card into slot i.
func SwapAction(i int) (Action, error) {
	if i < 0 || i >= deck.HandSize {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSwapIndex, i)
	}
	return Swap0 + Action(i), nil
}

// Valid reports whether a is part of the vocabulary.
func (a Action) Valid() bool {
	return int(a) < NumActions
}

// SwapIndex returns the hand slot targeted by a swap action.
func (a Action) SwapIndex() (int, bool) {
	if a < Swap0 || a > Swap3 {
		return 0, false
	}
	return int(a - Swap0), true
}

func (a Action) String() string {
	if !a.Valid() {
		return fmt.Sprintf("action(%d)", uint8(a))
	}
	return actionNames[a]
}

// ParseAction parses an action token such as "swap_2".
func ParseAction(s string) (Action, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range actionNames {
		if name == s {
			return Action(i), nil
		}
	}
	if strings.HasPrefix(s, "swap_") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSwapIndex, s)
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// MarshalText encodes the action as its token.
func (a Action) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid action %d", uint8(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText decodes an action token.
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
