package deck

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardScore(t *testing.T) {
	tests := []struct {
		card Card
		want int
	}{
		{Joker, 0},
		{Ace, 1},
		{Two, 2},
		{Seven, 7},
		{Ten, 10},
		{Jack, 10},
		{Queen, 10},
		{RedKing, -1},
	}
	for _, tt := range tests {
		t.Run(tt.card.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.card.Score())
		})
	}
}

func TestParseCard(t *testing.T) {
	for c := Joker; c <= RedKing; c++ {
		got, err := ParseCard(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	got, err := ParseCard("13")
	require.NoError(t, err)
	assert.Equal(t, RedKing, got)

	for _, bad := range []string{"", "14", "-1", "X"} {
		_, err := ParseCard(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestOptionalCard(t *testing.T) {
	_, ok := None.Get()
	assert.False(t, ok)
	assert.Equal(t, "--", None.String())

	c, ok := Some(Joker).Get()
	assert.True(t, ok)
	assert.Equal(t, Joker, c, "joker is a present card, not an absent one")
	assert.NotEqual(t, None, Some(Joker))
}

func TestOptionalCardJSON(t *testing.T) {
	data, err := json.Marshal([]OptionalCard{Some(Five), None, Some(Joker)})
	require.NoError(t, err)
	assert.JSONEq(t, `[5, null, 0]`, string(data))

	var decoded []OptionalCard
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []OptionalCard{Some(Five), None, Some(Joker)}, decoded)

	var bad OptionalCard
	assert.Error(t, json.Unmarshal([]byte(`14`), &bad))
}
