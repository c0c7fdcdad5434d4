package client

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lox/cambio/internal/bot"
	"github.com/lox/cambio/internal/game"
	"github.com/lox/cambio/internal/randutil"
	"github.com/lox/cambio/internal/server"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, cfg server.Config) string {
	t.Helper()
	cfg.Logger = zerolog.Nop()

	srv, err := server.New(cfg)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func newBot(t *testing.T, name string, seed int64) bot.Bot {
	t.Helper()
	b, err := bot.New(name, randutil.New(seed), nil)
	require.NoError(t, err)
	return b
}

func TestRunPlaysUntilServerStops(t *testing.T) {
	url := startServer(t, server.Config{Players: 2, Games: 3, Seed: 7})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	results := make([]*Result, 2)
	var wg sync.WaitGroup
	for i, name := range []string{"random", "greedy"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := Run(ctx, url, name, newBot(t, name, int64(i)), WithLogger(zerolog.Nop()))
			assert.NoError(t, err)
			results[i] = res
		}()
	}
	wg.Wait()

	require.NotNil(t, results[0])
	require.NotNil(t, results[1])
	assert.Equal(t, 3, results[0].Games)
	assert.Equal(t, 3, results[1].Games)
	assert.Equal(t, 3, results[0].Wins+results[1].Wins)
	assert.Equal(t, 0, results[0].TotalPayoff+results[1].TotalPayoff)
	assert.Zero(t, results[0].Aborted)
}

func TestRunStopsAfterGames(t *testing.T) {
	url := startServer(t, server.Config{Players: 2})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	results := make([]*Result, 2)
	var wg sync.WaitGroup
	for i := range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := Run(ctx, url, "draw", newBot(t, "draw", int64(i)), WithGames(1), WithLogger(zerolog.Nop()))
			assert.NoError(t, err)
			results[i] = res
		}()
	}
	wg.Wait()

	for _, res := range results {
		require.NotNil(t, res)
		assert.Equal(t, 1, res.Games)
	}
	assert.Equal(t, 1, results[0].Wins+results[1].Wins)
}

func TestRunHonoursContext(t *testing.T) {
	url := startServer(t, server.Config{Players: 2})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := Run(ctx, url, "alone", newBot(t, "random", 1), WithLogger(zerolog.Nop()))
		errCh <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunDialError(t *testing.T) {
	_, err := Run(context.Background(), "ws://127.0.0.1:1/ws", "x", newBot(t, "random", 1), WithLogger(zerolog.Nop()))
	assert.Error(t, err)
}

func TestDecidePrefersContextAgent(t *testing.T) {
	view := game.StateView{LegalActions: []game.Action{game.DrawDeck, game.CallCambio}}

	a, err := decide(context.Background(), ctxAgent{}, view)
	require.NoError(t, err)
	assert.Equal(t, game.CallCambio, a)

	b := newBot(t, "draw", 1)
	a, err = decide(context.Background(), b, view)
	require.NoError(t, err)
	assert.Equal(t, game.DrawDeck, a)
}

type ctxAgent struct{}

func (ctxAgent) Decide(game.StateView) game.Action { return game.DrawDeck }

func (ctxAgent) DecideContext(context.Context, game.StateView) (game.Action, error) {
	return game.CallCambio, nil
}
