package match

import (
	"context"
	"errors"
	"testing"

	"github.com/lox/cambio/internal/bot"
	"github.com/lox/cambio/internal/game"
	"github.com/lox/cambio/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomAgents(t *testing.T, seed int64, n int) []Agent {
	t.Helper()
	agents := make([]Agent, n)
	for i := range agents {
		b, err := bot.New("random", randutil.New(randutil.Derive(seed, i)), nil)
		require.NoError(t, err)
		agents[i] = b
	}
	return agents
}

func TestRunCompletesAndBalances(t *testing.T) {
	for seed := range int64(25) {
		g, err := game.New(randutil.New(seed), game.WithPlayers(4))
		require.NoError(t, err)

		var events []StepEvent
		res, err := Run(context.Background(), g, randomAgents(t, seed, 4), WithObserver(func(e StepEvent) {
			events = append(events, e)
		}))
		require.NoError(t, err)

		assert.True(t, g.IsOver())
		assert.NotEqual(t, game.OutcomeInProgress, res.Outcome)
		assert.Len(t, res.Log, res.Steps)
		assert.Len(t, events, res.Steps)

		sum, winners := 0, 0
		for _, p := range res.Payoffs {
			sum += p
			if p == 1 {
				winners++
			}
		}
		assert.Equal(t, 1, winners)
		assert.Equal(t, 2-len(res.Payoffs), sum)
		assert.Equal(t, 1, res.Payoffs[res.Winner])

		for _, s := range res.Scores {
			assert.GreaterOrEqual(t, s, res.Scores[res.Winner])
		}
	}
}

func TestRunIsDeterministic(t *testing.T) {
	play := func() *Result {
		g, err := game.New(randutil.New(77))
		require.NoError(t, err)
		res, err := Run(context.Background(), g, randomAgents(t, 77, 3))
		require.NoError(t, err)
		return res
	}
	assert.Equal(t, play(), play())
}

func TestRunRejectsIllegalDecision(t *testing.T) {
	g, err := game.New(randutil.New(1))
	require.NoError(t, err)

	agents := []Agent{
		AgentFunc(func(game.StateView) game.Action { return game.Discard }),
		AgentFunc(func(game.StateView) game.Action { return game.DrawDeck }),
		AgentFunc(func(game.StateView) game.Action { return game.DrawDeck }),
	}
	_, err = Run(context.Background(), g, agents)
	require.Error(t, err)
	assert.ErrorIs(t, err, game.ErrIllegalAction)

	var illegal *game.IllegalActionError
	require.ErrorAs(t, err, &illegal)
	assert.Equal(t, game.Discard, illegal.Action)
	assert.Equal(t, 0, illegal.Player)
}

func TestRunStepLimit(t *testing.T) {
	g, err := game.New(randutil.New(2))
	require.NoError(t, err)

	_, err = Run(context.Background(), g, randomAgents(t, 2, 3), WithMaxSteps(3))
	assert.ErrorIs(t, err, ErrStepLimit)
}

func TestRunAgentCountMismatch(t *testing.T) {
	g, err := game.New(randutil.New(2))
	require.NoError(t, err)

	_, err = Run(context.Background(), g, randomAgents(t, 2, 2))
	assert.ErrorContains(t, err, "got 2 agents for 3 players")
}

func TestRunHonoursContext(t *testing.T) {
	g, err := game.New(randutil.New(3))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Run(ctx, g, randomAgents(t, 3, 3))
	assert.ErrorIs(t, err, context.Canceled)
}

type failingAgent struct{ err error }

func (f failingAgent) DecideContext(context.Context, game.StateView) (game.Action, error) {
	return 0, f.err
}

func TestRunPropagatesContextAgentError(t *testing.T) {
	g, err := game.New(randutil.New(4))
	require.NoError(t, err)

	boom := errors.New("connection lost")
	agents := randomAgents(t, 4, 3)
	agents[0] = FromContext(failingAgent{err: boom})

	_, err = Run(context.Background(), g, agents)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "player 0 decide")
}
