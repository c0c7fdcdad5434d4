// Package spawner runs built-in bots in-process against a server, for demos
// and tests.
package spawner

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/lox/cambio/internal/bot"
	"github.com/lox/cambio/internal/client"
	"github.com/lox/cambio/internal/randutil"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// BotSpawner manages the lifecycle of spawned bots.
type BotSpawner struct {
	serverURL string
	logger    zerolog.Logger
	seed      int64 // base seed, each bot derives its own
	botSeq    int

	mu      sync.Mutex
	results map[string]*client.Result
	active  int

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
}

// BotSpec defines a bot to spawn.
type BotSpec struct {
	Strategy string // registered bot name, e.g. "greedy"
	Count    int    // number to spawn, default 1
	Games    int    // games before disconnecting, 0 plays until the server stops
}

// New creates a BotSpawner. Bots stop when ctx is cancelled or StopAll is
// called.
func New(ctx context.Context, serverURL string, logger zerolog.Logger) *BotSpawner {
	ctx, cancel := context.WithCancel(ctx)
	return &BotSpawner{
		serverURL: serverURL,
		logger:    logger.With().Str("component", "spawner").Logger(),
		results:   make(map[string]*client.Result),
		ctx:       ctx,
		cancel:    cancel,
		group:     &errgroup.Group{},
	}
}

// NewWithSeed creates a BotSpawner with a base seed for deterministic bots.
func NewWithSeed(ctx context.Context, serverURL string, logger zerolog.Logger, seed int64) *BotSpawner {
	s := New(ctx, serverURL, logger)
	s.seed = seed
	return s
}

// Spawn starts spec.Count bots of one strategy.
func (s *BotSpawner) Spawn(spec BotSpec) error {
	if !bot.Valid(spec.Strategy) {
		return fmt.Errorf("unknown bot %q (available: %s)", spec.Strategy, strings.Join(bot.Names(), ", "))
	}
	if spec.Count <= 0 {
		spec.Count = 1
	}

	s.logger.Info().
		Str("strategy", spec.Strategy).
		Int("count", spec.Count).
		Msg("Spawning bots")

	for range spec.Count {
		s.spawnOne(spec)
	}
	return nil
}

// SpawnMany spawns multiple bot specs.
func (s *BotSpawner) SpawnMany(specs []BotSpec) error {
	for _, spec := range specs {
		if err := s.Spawn(spec); err != nil {
			return err
		}
	}
	return nil
}

func (s *BotSpawner) spawnOne(spec BotSpec) {
	s.mu.Lock()
	s.botSeq++
	seq := s.botSeq
	s.active++
	s.mu.Unlock()

	name := fmt.Sprintf("%s-%d", spec.Strategy, seq)
	rng := randutil.New(randutil.Derive(s.seed, seq))
	b, err := bot.New(spec.Strategy, rng, nil)
	if err != nil {
		// Strategy was validated in Spawn.
		panic(err)
	}

	s.group.Go(func() error {
		defer func() {
			s.mu.Lock()
			s.active--
			s.mu.Unlock()
		}()

		res, err := client.Run(s.ctx, s.serverURL, name, b,
			client.WithGames(spec.Games),
			client.WithLogger(s.logger.With().Str("bot_id", name).Logger()))
		if res != nil {
			s.mu.Lock()
			s.results[name] = res
			s.mu.Unlock()
		}
		if err != nil && s.ctx.Err() == nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	})
}

// StopAll disconnects every bot and waits for them to exit.
func (s *BotSpawner) StopAll() error {
	s.logger.Info().Msg("Stopping all bots")
	s.cancel()
	return s.group.Wait()
}

// Wait blocks until every bot has disconnected and returns the first error.
func (s *BotSpawner) Wait() error {
	return s.group.Wait()
}

// ActiveCount returns the number of connected bots.
func (s *BotSpawner) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Results returns each bot's session result keyed by bot id.
func (s *BotSpawner) Results() map[string]*client.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*client.Result, len(s.results))
	for k, v := range s.results {
		out[k] = v
	}
	return out
}
