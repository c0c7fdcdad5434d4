package game

import "github.com/lox/cambio/internal/deck"

// PublicView is the information visible to every player.
type PublicView struct {
	TopCard        deck.OptionalCard   `json:"top_card"`
	DiscardPile    []deck.Card         `json:"discard_pile"`
	PlayerDiscards map[int][]deck.Card `json:"player_discards"`
}

// StateView is one player's view of the game. It never contains unseen
// cards: the owner's unknown slots are empty and the drawn card is only
// shown to the player holding it.
type StateView struct {
	PlayerID      int                              `json:"player_id"`
	Obs           [deck.HandSize]deck.OptionalCard `json:"obs"`
	LegalActions  []Action                         `json:"legal_actions"`
	Public        PublicView                       `json:"public"`
	DrawnCard     deck.OptionalCard                `json:"drawn_card"`
	DrawPhase     bool                             `json:"draw_phase"`
	CalledCambio  bool                             `json:"called_cambio"`
	CurrentPlayer int                              `json:"current_player"`
	NumPlayers    int                              `json:"num_players"`
	DeckRemaining int                              `json:"deck_remaining"`
}

// IsLegal reports whether a is in the view's legal set.
func (v StateView) IsLegal(a Action) bool {
	for _, l := range v.LegalActions {
		if l == a {
			return true
		}
	}
	return false
}

// IsTurn reports whether the viewing player is the one to act.
func (v StateView) IsTurn() bool {
	return v.PlayerID == v.CurrentPlayer
}
