package protocol

import (
	"fmt"

	"github.com/lox/cambio/internal/deck"
	"github.com/lox/cambio/internal/game"
)

// FromView converts an engine view to its wire form.
func FromView(v game.StateView) View {
	w := View{
		Seat:          v.PlayerID,
		Obs:           make([]int, len(v.Obs)),
		Legal:         make([]string, len(v.LegalActions)),
		TopCard:       cardToWire(v.Public.TopCard),
		DiscardPile:   cardsToWire(v.Public.DiscardPile),
		DrawnCard:     cardToWire(v.DrawnCard),
		DrawPhase:     v.DrawPhase,
		CalledCambio:  v.CalledCambio,
		CurrentPlayer: v.CurrentPlayer,
		NumPlayers:    v.NumPlayers,
		DeckRemaining: v.DeckRemaining,
	}
	for i, o := range v.Obs {
		w.Obs[i] = cardToWire(o)
	}
	for i, a := range v.LegalActions {
		w.Legal[i] = a.String()
	}
	w.PlayerDiscards = make([][]int, v.NumPlayers)
	for p := range w.PlayerDiscards {
		w.PlayerDiscards[p] = cardsToWire(v.Public.PlayerDiscards[p])
	}
	return w
}

// GameView converts a wire view back to an engine view, validating every
// card rank and action token.
func (w View) GameView() (game.StateView, error) {
	v := game.StateView{
		PlayerID:      w.Seat,
		DrawPhase:     w.DrawPhase,
		CalledCambio:  w.CalledCambio,
		CurrentPlayer: w.CurrentPlayer,
		NumPlayers:    w.NumPlayers,
		DeckRemaining: w.DeckRemaining,
	}
	if len(w.Obs) != deck.HandSize {
		return v, fmt.Errorf("view: %d observation slots, want %d", len(w.Obs), deck.HandSize)
	}

	var err error
	for i, r := range w.Obs {
		if v.Obs[i], err = cardFromWire(r); err != nil {
			return v, fmt.Errorf("view obs[%d]: %w", i, err)
		}
	}
	for _, tok := range w.Legal {
		a, err := game.ParseAction(tok)
		if err != nil {
			return v, fmt.Errorf("view legal: %w", err)
		}
		v.LegalActions = append(v.LegalActions, a)
	}
	if v.Public.TopCard, err = cardFromWire(w.TopCard); err != nil {
		return v, fmt.Errorf("view top card: %w", err)
	}
	if v.DrawnCard, err = cardFromWire(w.DrawnCard); err != nil {
		return v, fmt.Errorf("view drawn card: %w", err)
	}
	if v.Public.DiscardPile, err = cardsFromWire(w.DiscardPile); err != nil {
		return v, fmt.Errorf("view discard pile: %w", err)
	}
	v.Public.PlayerDiscards = make(map[int][]deck.Card, len(w.PlayerDiscards))
	for p, d := range w.PlayerDiscards {
		if v.Public.PlayerDiscards[p], err = cardsFromWire(d); err != nil {
			return v, fmt.Errorf("view discards of player %d: %w", p, err)
		}
	}
	return v, nil
}

func cardToWire(o deck.OptionalCard) int {
	if c, ok := o.Get(); ok {
		return int(c)
	}
	return NoCard
}

func cardsToWire(cards []deck.Card) []int {
	out := make([]int, len(cards))
	for i, c := range cards {
		out[i] = int(c)
	}
	return out
}

func cardFromWire(r int) (deck.OptionalCard, error) {
	if r == NoCard {
		return deck.None, nil
	}
	if r < 0 || r >= deck.NumRanks {
		return deck.None, fmt.Errorf("rank %d out of range", r)
	}
	return deck.Some(deck.Card(r)), nil
}

func cardsFromWire(ranks []int) ([]deck.Card, error) {
	out := make([]deck.Card, len(ranks))
	for i, r := range ranks {
		if r < 0 || r >= deck.NumRanks {
			return nil, fmt.Errorf("rank %d out of range", r)
		}
		out[i] = deck.Card(r)
	}
	return out, nil
}
