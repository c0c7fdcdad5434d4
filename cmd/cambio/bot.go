package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lox/cambio/cmd/cambio/shared"
	"github.com/lox/cambio/internal/bot"
	"github.com/lox/cambio/internal/client"
	"github.com/lox/cambio/internal/randutil"
)

// BotCmd connects a built-in strategy to a running server.
type BotCmd struct {
	Strategy string `arg:"" default:"greedy" help:"Bot strategy"`
	Server   string `default:"ws://localhost:8080/ws" help:"WebSocket server URL"`
	Name     string `help:"Display name (default: strategy name)"`
	Games    int    `help:"Disconnect after this many games (0 plays until the server stops)"`
	Seed     *int64 `help:"RNG seed for the bot (random when unset)"`
	LogLevel string `default:"info" help:"Log level (debug|info|warn|error)"`
	LogJSON  bool   `help:"Output JSON logs instead of console format"`
}

func (c *BotCmd) Run() error {
	if !bot.Valid(c.Strategy) {
		return fmt.Errorf("unknown bot: %s (available: %s)", c.Strategy, strings.Join(bot.Names(), ", "))
	}

	logger, err := shared.NewLogger(c.LogLevel, c.LogJSON)
	if err != nil {
		return err
	}

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}
	name := c.Name
	if name == "" {
		name = c.Strategy
	}

	botLogger, err := shared.NewBotLogger(os.Stderr, c.LogLevel, c.LogJSON)
	if err != nil {
		return err
	}
	b, err := bot.New(c.Strategy, randutil.New(seed), botLogger)
	if err != nil {
		return err
	}

	ctx, cancel := shared.SetupSignalHandlerWithLogger(logger)
	defer cancel()

	res, err := client.Run(ctx, c.Server, name, b, client.WithLogger(logger), client.WithGames(c.Games))
	if res != nil {
		logger.Info().
			Int("games", res.Games).
			Int("wins", res.Wins).
			Int("payoff", res.TotalPayoff).
			Int("aborted", res.Aborted).
			Msg("Session finished")
	}
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
