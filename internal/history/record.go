// Package history stores finished games as TOML records that can be
// replayed from their seed and action list.
package history

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lox/cambio/internal/game"
)

// Record is one finished game.
type Record struct {
	ID      string   `toml:"id"`
	Time    string   `toml:"time,omitempty"`
	Seed    int64    `toml:"seed"`
	Players int      `toml:"players"`
	Bots    []string `toml:"bots,omitempty"`
	Actions []string `toml:"actions"`
	Scores  []int    `toml:"scores"`
	Payoffs []int    `toml:"payoffs"`
	Outcome string   `toml:"outcome"`
	Caller  int      `toml:"cambio_caller"`
}

// NewRecord captures a finished game. bots may be nil for games between
// unnamed agents.
func NewRecord(id string, seed int64, bots []string, g *game.Game) *Record {
	log := g.Log()
	actions := make([]string, len(log))
	for i, step := range log {
		actions[i] = FormatAction(step.Player, step.Action)
	}
	return &Record{
		ID:      id,
		Time:    time.Now().UTC().Format(time.RFC3339),
		Seed:    seed,
		Players: g.NumPlayers(),
		Bots:    bots,
		Actions: actions,
		Scores:  g.Scores(),
		Payoffs: g.Payoffs(),
		Outcome: g.Outcome().String(),
		Caller:  g.CambioCaller(),
	}
}

// FormatAction renders a step as "p<seat> <action>" with 1-based seats.
func FormatAction(seat int, a game.Action) string {
	return fmt.Sprintf("p%d %s", seat+1, a)
}

// ParseAction is the inverse of FormatAction and returns the 0-based seat.
func ParseAction(s string) (int, game.Action, error) {
	player, token, ok := strings.Cut(strings.TrimSpace(s), " ")
	if !ok || !strings.HasPrefix(player, "p") {
		return 0, 0, fmt.Errorf("malformed action %q", s)
	}
	seat, err := strconv.Atoi(player[1:])
	if err != nil || seat < 1 {
		return 0, 0, fmt.Errorf("malformed seat in %q", s)
	}
	a, err := game.ParseAction(token)
	if err != nil {
		return 0, 0, fmt.Errorf("action %q: %w", s, err)
	}
	return seat - 1, a, nil
}
