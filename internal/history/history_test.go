package history

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lox/cambio/internal/game"
	"github.com/lox/cambio/internal/gameid"
	"github.com/lox/cambio/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// playedRecord plays a seeded game with uniformly random legal actions.
func playedRecord(t *testing.T, seed int64, players int) *Record {
	t.Helper()
	g, err := game.New(randutil.New(seed), game.WithPlayers(players))
	require.NoError(t, err)

	rng := randutil.New(seed + 1000)
	for steps := 0; !g.IsOver() && steps < 1000; steps++ {
		legal := g.LegalActions()
		_, _, err := g.Step(legal[rng.IntN(len(legal))])
		require.NoError(t, err)
	}
	require.True(t, g.IsOver())

	return NewRecord(gameid.FromSeed(seed), seed, []string{"a", "b", "c"}[:players], g)
}

func TestFormatParseAction(t *testing.T) {
	for seat := range 4 {
		for _, a := range game.AllActions() {
			s := FormatAction(seat, a)
			gotSeat, gotAction, err := ParseAction(s)
			require.NoError(t, err, s)
			assert.Equal(t, seat, gotSeat)
			assert.Equal(t, a, gotAction)
		}
	}
	assert.Equal(t, "p1 draw_deck", FormatAction(0, game.DrawDeck))

	for _, bad := range []string{"", "draw_deck", "x1 draw_deck", "p0 draw_deck", "p1 swap_9", "p1 fold"} {
		_, _, err := ParseAction(bad)
		assert.Error(t, err, bad)
	}
	_, _, err := ParseAction("p2 swap_7")
	assert.ErrorIs(t, err, game.ErrInvalidSwapIndex)
}

func TestEncodeDecodeVerify(t *testing.T) {
	rec := playedRecord(t, 7, 3)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, rec))
	assert.Contains(t, buf.String(), `id = "`+rec.ID+`"`)
	assert.Contains(t, buf.String(), `"p1 `)

	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	g, err := Verify(got)
	require.NoError(t, err)
	assert.Equal(t, rec.Payoffs, g.Payoffs())
}

func TestVerifyDetectsTampering(t *testing.T) {
	rec := playedRecord(t, 11, 2)

	t.Run("payoffs", func(t *testing.T) {
		bad := *rec
		bad.Payoffs = []int{rec.Payoffs[1], rec.Payoffs[0]}
		_, err := Verify(&bad)
		assert.ErrorContains(t, err, "payoffs mismatch")
	})

	t.Run("seed", func(t *testing.T) {
		bad := *rec
		bad.Seed++
		_, err := Verify(&bad)
		assert.Error(t, err)
	})

	t.Run("truncated", func(t *testing.T) {
		bad := *rec
		bad.Actions = rec.Actions[:len(rec.Actions)-1]
		_, err := Verify(&bad)
		assert.Error(t, err)
	})

	t.Run("seat", func(t *testing.T) {
		bad := *rec
		bad.Actions = append([]string(nil), rec.Actions...)
		_, a, err := ParseAction(bad.Actions[0])
		require.NoError(t, err)
		bad.Actions[0] = FormatAction(1, a)
		_, err = Verify(&bad)
		assert.ErrorContains(t, err, "recorded seat p2")
	})
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("id = \"x\"\nseed = 1\nwinner = 2\n"))
	assert.ErrorContains(t, err, "unknown keys: winner")

	_, err = Decode(strings.NewReader("id = [\n"))
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "games")
	rec := playedRecord(t, 3, 3)

	path, err := Save(dir, rec)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, rec.ID+Extension), path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file must not linger")

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = Save(dir, &Record{})
	assert.ErrorContains(t, err, "no id")

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteFileAtomicReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.toml")
	require.NoError(t, writeFileAtomic(path, []byte("one"), 0o600))
	require.NoError(t, writeFileAtomic(path, []byte("two"), 0o600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	err = writeFileAtomic(filepath.Join(t.TempDir(), "nope", "r.toml"), nil, 0o600)
	assert.Error(t, err)
}
