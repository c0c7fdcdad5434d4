package simulator

import (
	"bytes"
	"context"
	"io"
	rand "math/rand/v2"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/cambio/internal/game"
	"github.com/lox/cambio/internal/history"
	"github.com/lox/cambio/internal/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.WarnLevel})
}

func TestNewValidatesConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{"no games", Config{}, "games must be positive"},
		{"too few players", Config{Games: 1, Players: 1}, "players must be between"},
		{"too many players", Config{Games: 1, Players: game.MaxPlayers + 1}, "players must be between"},
		{"bot count", Config{Games: 1, Players: 3, Bots: []string{"random", "greedy"}}, "got 2 bots for 3 players"},
		{"unknown bot", Config{Games: 1, Bots: []string{"shark"}}, `unknown bot "shark"`},
		{"negative timeout", Config{Games: 1, Timeout: -time.Second}, "timeout must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}

	sim, err := New(Config{Games: 5})
	require.NoError(t, err)
	cfg := sim.Config()
	assert.Equal(t, game.DefaultPlayers, cfg.Players)
	assert.Equal(t, []string{"random"}, cfg.Bots)
	assert.Positive(t, cfg.Workers)
}

func TestLineupRotates(t *testing.T) {
	bots := []string{"a", "b", "c"}
	assert.Equal(t, []string{"a", "b", "c"}, Lineup(bots, 3, 0))
	assert.Equal(t, []string{"b", "c", "a"}, Lineup(bots, 3, 1))
	assert.Equal(t, []string{"c", "a", "b"}, Lineup(bots, 3, 5))
	assert.Equal(t, []string{"x", "x"}, Lineup([]string{"x"}, 2, 9))
}

func TestRunIsIndependentOfWorkers(t *testing.T) {
	run := func(workers int) ([]*GameOutcome, error) {
		sim, err := New(Config{
			Games:   40,
			Seed:    2024,
			Players: 3,
			Bots:    []string{"random", "greedy", "draw"},
			Workers: workers,
			Timeout: 10 * time.Second,
			Logger:  testLogger(),
		})
		require.NoError(t, err)
		return sim.RunGames(context.Background())
	}

	serial, err := run(1)
	require.NoError(t, err)
	parallel, err := run(8)
	require.NoError(t, err)

	require.Len(t, serial, 40)
	for i := range serial {
		assert.Equal(t, serial[i].Seed, parallel[i].Seed)
		assert.Equal(t, serial[i].Bots, parallel[i].Bots)
		assert.Equal(t, serial[i].Result, parallel[i].Result)
	}
}

func TestRunReport(t *testing.T) {
	var progress atomic.Int64
	sim, err := New(Config{
		Games:    30,
		Seed:     7,
		Players:  3,
		Bots:     []string{"greedy", "random", "random"},
		Workers:  4,
		Logger:   testLogger(),
		Progress: func(done, total int) { progress.Add(1); assert.Equal(t, 30, total) },
	})
	require.NoError(t, err)

	report, err := sim.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, report.Validate())

	assert.Equal(t, 30, report.Games)
	assert.Equal(t, int64(30), progress.Load())
	assert.Equal(t, []string{"greedy", "random"}, report.Names())
	assert.Equal(t, 30, report.Bots["greedy"].Games)
	assert.Equal(t, 60, report.Bots["random"].Games)

	for seat := range 3 {
		assert.Equal(t, 10, report.Bots["greedy"].SeatResults[seat].Games, "greedy rotates through seat %d", seat)
	}

	var buf bytes.Buffer
	PrintSummary(&buf, report, sim.Config())
	assert.Contains(t, buf.String(), "Games played: 30")
	assert.Contains(t, buf.String(), "=== greedy ===")
}

func TestRunRecordsReplayableGames(t *testing.T) {
	dir := t.TempDir()
	sim, err := New(Config{Games: 5, Seed: 99, Players: 2, Bots: []string{"greedy", "draw"}, RecordDir: dir, Logger: testLogger()})
	require.NoError(t, err)

	outcomes, err := sim.RunGames(context.Background())
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 5)

	for _, o := range outcomes {
		require.Equal(t, filepath.Join(dir, o.ID+history.Extension), o.Path)
		rec, err := history.Load(o.Path)
		require.NoError(t, err)
		assert.Equal(t, o.Bots, rec.Bots)
		assert.Equal(t, o.Result.Payoffs, rec.Payoffs)

		_, err = history.Verify(rec)
		require.NoError(t, err)
	}
}

// stallingAgent blocks until its context is cancelled.
type stallingAgent struct {
	entered chan struct{}
}

func (s *stallingAgent) DecideContext(ctx context.Context, _ game.StateView) (game.Action, error) {
	close(s.entered)
	<-ctx.Done()
	return 0, ctx.Err()
}

func TestGameTimeout(t *testing.T) {
	mockClock := quartz.NewMock(t)
	stall := &stallingAgent{entered: make(chan struct{})}

	sim, err := New(Config{
		Games:   1,
		Players: 2,
		Bots:    []string{"stall"},
		Timeout: 5 * time.Second,
		Clock:   mockClock,
		Logger:  testLogger(),
		NewAgent: func(string, *rand.Rand, *log.Logger) (match.Agent, error) {
			return match.FromContext(stall), nil
		},
	})
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		_, err := sim.PlayGame(context.Background(), 0)
		errCh <- err
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	select {
	case <-stall.entered:
	case <-ctx.Done():
		t.Fatal("agent was never asked to decide")
	}
	mockClock.Advance(5 * time.Second).MustWait(ctx)

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrGameTimeout)
	case <-ctx.Done():
		t.Fatal("game did not time out")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	sim, err := New(Config{Games: 10, Logger: testLogger()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sim.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
