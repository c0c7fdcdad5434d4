package main

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/lox/cambio/internal/display"
	"github.com/lox/cambio/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMove(t *testing.T) {
	tests := map[string]game.Action{
		"d":           game.DrawDeck,
		" P ":         game.DrawPile,
		"c":           game.CallCambio,
		"x":           game.Discard,
		"2":           game.Swap2,
		"swap_3":      game.Swap3,
		"CALL_CAMBIO": game.CallCambio,
	}
	for in, want := range tests {
		got, err := parseMove(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := parseMove("fold")
	assert.Error(t, err)
}

func TestHumanAgentRepromptsOnIllegalInput(t *testing.T) {
	var out bytes.Buffer
	h := &humanAgent{
		in: bufio.NewScanner(strings.NewReader("fold\nx\nd\n")),
		d:  display.New(&out, display.WithNoColor()),
	}
	view := game.StateView{
		DrawPhase:    true,
		NumPlayers:   3,
		LegalActions: []game.Action{game.DrawDeck, game.CallCambio},
	}

	a, err := h.DecideContext(context.Background(), view)
	require.NoError(t, err)
	assert.Equal(t, game.DrawDeck, a)

	text := out.String()
	assert.Contains(t, text, `unknown action "fold"`)
	assert.Contains(t, text, "illegal action discard")
	assert.Equal(t, 3, strings.Count(text, "Your move"))
}

func TestHumanAgentInputClosed(t *testing.T) {
	h := &humanAgent{
		in: bufio.NewScanner(strings.NewReader("")),
		d:  display.New(io.Discard, display.WithNoColor()),
	}
	_, err := h.DecideContext(context.Background(), game.StateView{LegalActions: []game.Action{game.DrawDeck}})
	assert.ErrorIs(t, err, io.EOF)
}
