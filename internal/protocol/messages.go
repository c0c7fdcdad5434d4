// Package protocol defines the binary WebSocket messages exchanged between
// the match server and bot clients. Every message is a msgpack map whose
// "type" key names the message.
package protocol

// Message types
const (
	// Client -> Server
	TypeHello  = "hello"
	TypeAction = "action"

	// Server -> Client
	TypeGameStart     = "game_start"
	TypeActionRequest = "action_request"
	TypePlayerAction  = "player_action"
	TypeGameOver      = "game_over"
	TypeError         = "error"
)

// Error codes
const (
	CodeIllegalAction  = "illegal_action"
	CodeInvalidMessage = "invalid_message"
	CodeTimeout        = "timeout"
	CodeAborted        = "aborted"
)

// NoCard marks an empty card slot on the wire.
const NoCard = -1

// Client -> Server Messages

// Hello is the first message a client sends.
type Hello struct {
	Name string `msg:"name"`
}

// Action answers an ActionRequest with an action token such as "draw_deck".
type Action struct {
	Action string `msg:"action"`
}

// Server -> Client Messages

// GameStart tells a client its seat in a new game.
type GameStart struct {
	GameID  string   `msg:"game_id"`
	Seat    int      `msg:"seat"`
	Players []string `msg:"players"`
}

// ActionRequest asks the acting seat for a decision.
type ActionRequest struct {
	GameID    string `msg:"game_id"`
	TimeoutMS int    `msg:"timeout_ms"`
	View      View   `msg:"view"`
}

// View is the wire form of a player's view. Card slots hold the rank, or
// NoCard when empty or hidden.
type View struct {
	Seat           int      `msg:"seat"`
	Obs            []int    `msg:"obs"`
	Legal          []string `msg:"legal"`
	TopCard        int      `msg:"top_card"`
	DiscardPile    []int    `msg:"discard_pile"`
	PlayerDiscards [][]int  `msg:"player_discards"`
	DrawnCard      int      `msg:"drawn_card"`
	DrawPhase      bool     `msg:"draw_phase"`
	CalledCambio   bool     `msg:"called_cambio"`
	CurrentPlayer  int      `msg:"current_player"`
	NumPlayers     int      `msg:"num_players"`
	DeckRemaining  int      `msg:"deck_remaining"`
}

// PlayerAction is broadcast after every accepted step.
type PlayerAction struct {
	GameID string `msg:"game_id"`
	Seat   int    `msg:"seat"`
	Action string `msg:"action"`
}

// GameOver is sent to every seat when a game ends.
type GameOver struct {
	GameID  string `msg:"game_id"`
	Seat    int    `msg:"seat"`
	Winner  int    `msg:"winner"`
	Outcome string `msg:"outcome"`
	Payoffs []int  `msg:"payoffs"`
	Scores  []int  `msg:"scores"`
}

// Error reports a rejected message or an aborted game.
type Error struct {
	Code    string `msg:"code"`
	Message string `msg:"message"`
}
