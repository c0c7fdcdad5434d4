package game

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIllegalAction is returned when an action is outside the legal set.
	ErrIllegalAction = errors.New("illegal action")
	// ErrInvalidSwapIndex is returned for a swap target outside [0,4).
	ErrInvalidSwapIndex = errors.New("invalid swap index")
	// ErrGameOver is returned when stepping a finished game.
	ErrGameOver = errors.New("game is over")
	// ErrConservation is returned when the card multiset no longer matches the
	// starting deck.
	ErrConservation = errors.New("card conservation violated")
	// ErrInvalidPlayer is returned for a player id outside the table.
	ErrInvalidPlayer = errors.New("invalid player")
)

// IllegalActionError describes a rejected step. The game state is unchanged.
type IllegalActionError struct {
	Action    Action
	Player    int
	DrawPhase bool
	Legal     []Action
	Over      bool
}

func (e *IllegalActionError) Error() string {
	if e.Over {
		return fmt.Sprintf("illegal action %s by player %d: game is over", e.Action, e.Player)
	}
	phase := "action"
	if e.DrawPhase {
		phase = "draw"
	}
	legal := make([]string, len(e.Legal))
	for i, a := range e.Legal {
		legal[i] = a.String()
	}
	return fmt.Sprintf("illegal action %s by player %d in %s phase (legal: %s)",
		e.Action, e.Player, phase, strings.Join(legal, ", "))
}

// Unwrap allows errors.Is to match ErrIllegalAction, and ErrGameOver for
// steps on a finished game.
func (e *IllegalActionError) Unwrap() []error {
	if e.Over {
		return []error{ErrIllegalAction, ErrGameOver}
	}
	return []error{ErrIllegalAction}
}
