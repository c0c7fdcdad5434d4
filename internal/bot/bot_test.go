package bot

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/cambio/internal/deck"
	"github.com/lox/cambio/internal/game"
	"github.com/lox/cambio/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKnownStrategies(t *testing.T) {
	assert.Equal(t, []string{"draw", "greedy", "random"}, Names())

	for _, name := range Names() {
		b, err := New(name, randutil.New(1), nil)
		require.NoError(t, err, name)
		require.NotNil(t, b)
		assert.True(t, Valid(name))
	}

	_, err := New("nope", randutil.New(1), nil)
	assert.ErrorContains(t, err, "unknown bot strategy")
	assert.False(t, Valid("nope"))
}

func TestBotsOnlyChooseLegalActions(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			for seed := range int64(20) {
				rng := randutil.New(seed)
				g, err := game.New(rng, game.WithPlayers(3))
				require.NoError(t, err)

				bots := make([]Bot, g.NumPlayers())
				for i := range bots {
					bots[i], err = New(name, randutil.New(randutil.Derive(seed, i)), nil)
					require.NoError(t, err)
				}

				for steps := 0; !g.IsOver() && steps < 500; steps++ {
					view, err := g.State(g.PlayerID())
					require.NoError(t, err)
					a := bots[g.PlayerID()].Decide(view)
					require.True(t, view.IsLegal(a), "%s chose illegal %s", name, a)
					_, _, err = g.Step(a)
					require.NoError(t, err)
				}
				assert.True(t, g.IsOver())
			}
		})
	}
}

func TestDrawBotAlwaysDraws(t *testing.T) {
	b := NewDrawBot(randutil.New(3))
	view := game.StateView{
		DrawPhase:    true,
		LegalActions: []game.Action{game.DrawDeck, game.DrawPile, game.CallCambio},
	}
	for range 10 {
		assert.Equal(t, game.DrawDeck, b.Decide(view))
	}

	view = game.StateView{LegalActions: []game.Action{game.Discard, game.Swap0, game.Swap1, game.Swap2, game.Swap3}}
	for range 10 {
		assert.True(t, view.IsLegal(b.Decide(view)))
	}
}

func TestRandBotCoversLegalSet(t *testing.T) {
	b := NewRandBot(randutil.New(11))
	view := game.StateView{LegalActions: []game.Action{game.Discard, game.Swap0, game.Swap1, game.Swap2, game.Swap3}}

	seen := map[game.Action]int{}
	for range 500 {
		seen[b.Decide(view)]++
	}
	assert.Len(t, seen, 5)
}

func hand(cards ...deck.OptionalCard) [deck.HandSize]deck.OptionalCard {
	var h [deck.HandSize]deck.OptionalCard
	copy(h[:], cards)
	return h
}

func TestGreedyBot(t *testing.T) {
	b, err := New("greedy", randutil.New(1), nil)
	require.NoError(t, err)

	drawPhase := []game.Action{game.DrawDeck, game.DrawPile, game.CallCambio}
	placePhase := []game.Action{game.Discard, game.Swap0, game.Swap1, game.Swap2, game.Swap3}

	tests := []struct {
		name string
		view game.StateView
		want game.Action
	}{
		{
			name: "calls cambio with a low hand",
			view: game.StateView{
				DrawPhase:    true,
				LegalActions: drawPhase,
				Obs:          hand(deck.Some(deck.Joker), deck.Some(deck.RedKing), deck.Some(deck.Ace), deck.Some(deck.Two)),
			},
			want: game.CallCambio,
		},
		{
			name: "takes a low top discard",
			view: game.StateView{
				DrawPhase:    true,
				LegalActions: drawPhase,
				Obs:          hand(deck.Some(deck.Queen), deck.Some(deck.Ace)),
				Public:       game.PublicView{TopCard: deck.Some(deck.Joker)},
			},
			want: game.DrawPile,
		},
		{
			name: "draws from the deck otherwise",
			view: game.StateView{
				DrawPhase:    true,
				LegalActions: drawPhase,
				Obs:          hand(deck.Some(deck.Queen), deck.Some(deck.Ace)),
				Public:       game.PublicView{TopCard: deck.Some(deck.Nine)},
			},
			want: game.DrawDeck,
		},
		{
			name: "replaces the worst known card",
			view: game.StateView{
				LegalActions: placePhase,
				Obs:          hand(deck.Some(deck.Two), deck.Some(deck.Jack)),
				DrawnCard:    deck.Some(deck.Three),
			},
			want: game.Swap1,
		},
		{
			name: "fills an unknown slot with a low card",
			view: game.StateView{
				LegalActions: placePhase,
				Obs:          hand(deck.Some(deck.Two), deck.Some(deck.Ace)),
				DrawnCard:    deck.Some(deck.Joker),
			},
			want: game.Swap2,
		},
		{
			name: "discards a high card",
			view: game.StateView{
				LegalActions: placePhase,
				Obs:          hand(deck.Some(deck.Two), deck.Some(deck.Ace)),
				DrawnCard:    deck.Some(deck.Queen),
			},
			want: game.Discard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Decide(tt.view))
		})
	}
}

func TestEstimateHand(t *testing.T) {
	assert.Equal(t, 20, EstimateHand(hand()))
	assert.Equal(t, 0+(-1)+5+5, EstimateHand(hand(deck.Some(deck.Joker), deck.Some(deck.RedKing))))
}

func TestGreedyBotLogging(t *testing.T) {
	view := game.StateView{
		DrawPhase:    true,
		LegalActions: []game.Action{game.DrawDeck, game.CallCambio},
	}

	assert.NotPanics(t, func() {
		NewGreedyBot(nil).Decide(view)
	})

	var buf bytes.Buffer
	b := NewGreedyBot(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))
	b.Decide(view)
	assert.Contains(t, buf.String(), "greedy")
	assert.Contains(t, buf.String(), "decision")
}
