package display

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/lox/cambio/internal/deck"
	"github.com/lox/cambio/internal/game"
	"github.com/lox/cambio/internal/match"
	"github.com/lox/cambio/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGame(t *testing.T, seed int64) *game.Game {
	t.Helper()
	g, err := game.New(randutil.New(seed))
	require.NoError(t, err)
	return g
}

func TestCard(t *testing.T) {
	d := New(&bytes.Buffer{}, WithNoColor())

	assert.Equal(t, "??", d.Card(deck.None))
	assert.Equal(t, "RK", d.Card(deck.Some(deck.RedKing)))
	assert.Equal(t, "10", d.Card(deck.Some(deck.Ten)))
	assert.Equal(t, "A ", d.Card(deck.Some(deck.Ace)))
}

func TestName(t *testing.T) {
	d := New(&bytes.Buffer{}, WithNoColor(), WithNames([]string{"You", ""}))

	assert.Equal(t, "You", d.Name(0))
	assert.Equal(t, "Player 2", d.Name(1))
	assert.Equal(t, "Player 3", d.Name(2))
}

func TestViewHidesUnknownSlots(t *testing.T) {
	g := newGame(t, 3)
	view, err := g.State(0)
	require.NoError(t, err)

	d := New(&bytes.Buffer{}, WithNoColor())
	out := d.View(view)

	hand := g.Player(0).Hand()
	assert.Contains(t, out, "0:"+d.Card(deck.Some(hand[0])))
	assert.Contains(t, out, "1:"+d.Card(deck.Some(hand[1])))
	assert.Contains(t, out, "2:??")
	assert.Contains(t, out, "3:??")
	assert.Contains(t, out, "Your turn")
	assert.Contains(t, out, "Top of pile: ??")
	assert.NotContains(t, out, "Drawn card")

	other, err := g.State(1)
	require.NoError(t, err)
	assert.Contains(t, d.View(other), "Player 1 to act")
}

func TestViewShowsDrawnCardAndDiscards(t *testing.T) {
	g := newGame(t, 3)
	view, _, err := g.Step(game.DrawDeck)
	require.NoError(t, err)

	d := New(&bytes.Buffer{}, WithNoColor())
	drawn, ok := view.DrawnCard.Get()
	require.True(t, ok)
	assert.Contains(t, d.View(view), "Drawn card: "+d.Card(deck.Some(drawn)))

	view, _, err = g.Step(game.Discard)
	require.NoError(t, err)
	assert.Contains(t, d.View(view), "Player 1 discarded: "+d.Card(deck.Some(drawn)))
}

func TestPrompt(t *testing.T) {
	d := New(&bytes.Buffer{}, WithNoColor())
	view := game.StateView{LegalActions: []game.Action{game.DrawDeck, game.CallCambio}}
	assert.Equal(t, "Your move [draw_deck, call_cambio]: ", d.Prompt(view))
}

func TestStep(t *testing.T) {
	d := New(&bytes.Buffer{}, WithNoColor(), WithNames([]string{"alice"}))
	assert.Equal(t, "alice: swap_2", d.Step(match.StepEvent{Player: 0, Action: game.Swap2}))
}

func TestFinal(t *testing.T) {
	g := newGame(t, 9)
	agents := make([]match.Agent, g.NumPlayers())
	for i := range agents {
		agents[i] = match.AgentFunc(func(v game.StateView) game.Action { return v.LegalActions[0] })
	}
	res, err := match.Run(context.Background(), g, agents)
	require.NoError(t, err)

	d := New(&bytes.Buffer{}, WithNoColor())
	out := d.Final(g, res)

	assert.Contains(t, out, "Game over")
	assert.Contains(t, out, res.Outcome.String())
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2+g.NumPlayers())
	assert.Contains(t, lines[2+res.Winner], "winner")
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	d := New(&buf, WithNoColor())
	d.Print("hello")
	d.Print("world\n")
	d.Printf("%d", 3)
	assert.Equal(t, "hello\nworld\n3", buf.String())
}
