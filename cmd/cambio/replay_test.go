package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lox/cambio/internal/encoding"
	"github.com/lox/cambio/internal/game"
	"github.com/lox/cambio/internal/gameid"
	"github.com/lox/cambio/internal/history"
	"github.com/lox/cambio/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteVectors(t *testing.T) {
	const seed = 17
	g, err := game.New(randutil.New(seed), game.WithPlayers(2))
	require.NoError(t, err)
	for !g.IsOver() {
		_, _, err := g.Step(g.LegalActions()[0])
		require.NoError(t, err)
	}
	rec := history.NewRecord(gameid.FromSeed(seed), seed, []string{"a", "b"}, g)

	var buf bytes.Buffer
	require.NoError(t, writeVectors(&buf, rec))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, len(rec.Actions))

	first := strings.Split(lines[0], "\t")
	require.Len(t, first, 5)
	assert.Equal(t, "0", first[0])
	assert.Equal(t, "0", first[1])
	assert.Equal(t, "0", first[2], "draw_deck is action 0")
	assert.Len(t, strings.Split(first[3], ","), encoding.NumActions)
	assert.Len(t, strings.Split(first[4], ","), encoding.VectorSize)

	second := strings.Split(lines[1], "\t")
	assert.Equal(t, "0", second[1], "the drawing player places next")
}

func TestWriteVectorsRejectsBadRecord(t *testing.T) {
	rec := &history.Record{Seed: 1, Players: 2, Actions: []string{"p1 discard"}}
	assert.Error(t, writeVectors(&bytes.Buffer{}, rec))
}
