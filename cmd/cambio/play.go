package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/cambio/cmd/cambio/shared"
	"github.com/lox/cambio/internal/bot"
	"github.com/lox/cambio/internal/display"
	"github.com/lox/cambio/internal/game"
	"github.com/lox/cambio/internal/gameid"
	"github.com/lox/cambio/internal/history"
	"github.com/lox/cambio/internal/match"
	"github.com/lox/cambio/internal/randutil"
	"github.com/lox/cambio/internal/simulator"
)

// PlayCmd seats a human at seat 0 against built-in bots.
type PlayCmd struct {
	Seed      *int64   `help:"Deal seed (random when unset)"`
	Players   int      `default:"3" help:"Players at the table, you included"`
	Bots      []string `sep:"," default:"greedy" help:"Opponent strategies, rotated across seats"`
	NoColor   bool     `help:"Disable colored output"`
	RecordDir string   `type:"path" help:"Save the finished game to this directory"`
	Verbose   bool     `short:"V" help:"Log bot decisions"`
}

func (c *PlayCmd) Run() error {
	for _, name := range c.Bots {
		if !bot.Valid(name) {
			return fmt.Errorf("unknown bot: %s (available: %s)", name, strings.Join(bot.Names(), ", "))
		}
	}

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}

	g, err := game.New(randutil.New(seed), game.WithPlayers(c.Players))
	if err != nil {
		return err
	}

	lineup := simulator.Lineup(c.Bots, c.Players-1, 0)
	names := append([]string{"You"}, make([]string, len(lineup))...)
	for i, name := range lineup {
		names[i+1] = fmt.Sprintf("%s (p%d)", name, i+2)
	}

	opts := []display.Option{display.WithNames(names)}
	if c.NoColor {
		opts = append(opts, display.WithNoColor())
	}
	d := display.New(os.Stdout, opts...)

	level := log.WarnLevel
	if c.Verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: level})

	agents := make([]match.Agent, c.Players)
	agents[0] = match.FromContext(&humanAgent{in: bufio.NewScanner(os.Stdin), d: d})
	for i, name := range lineup {
		seat := i + 1
		agents[seat], err = bot.New(name, randutil.New(randutil.Derive(seed, seat)), logger)
		if err != nil {
			return err
		}
	}

	ctx, cancel := shared.SetupSignalHandler()
	defer cancel()

	d.Print(fmt.Sprintf("Cambio: %d players, seed %d. Lowest hand wins.", c.Players, seed))
	d.Print("Moves: d=draw_deck p=draw_pile c=call_cambio x=discard 0-3=swap into slot")

	res, err := match.Run(ctx, g, agents, match.WithObserver(func(ev match.StepEvent) {
		if ev.Player != 0 {
			d.Print(d.Step(ev))
		}
	}))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("input closed before the game finished")
		}
		return err
	}
	d.Print(d.Final(g, res))

	if c.RecordDir != "" {
		path, err := history.Save(c.RecordDir, history.NewRecord(gameid.FromSeed(seed), seed, append([]string{"human"}, lineup...), g))
		if err != nil {
			return err
		}
		d.Print("Saved " + path)
	}
	return nil
}

// humanAgent prompts on the terminal until a legal action is entered.
type humanAgent struct {
	in *bufio.Scanner
	d  *display.Display
}

func (h *humanAgent) DecideContext(ctx context.Context, view game.StateView) (game.Action, error) {
	h.d.Print(h.d.View(view))
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		h.d.Printf("%s", h.d.Prompt(view))
		if !h.in.Scan() {
			if err := h.in.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}

		a, err := parseMove(h.in.Text())
		if err != nil {
			h.d.Print(err.Error())
			continue
		}
		if !view.IsLegal(a) {
			h.d.Print((&game.IllegalActionError{
				Action:    a,
				Player:    view.PlayerID,
				DrawPhase: view.DrawPhase,
				Legal:     view.LegalActions,
			}).Error())
			continue
		}
		return a, nil
	}
}

var moveShortcuts = map[string]game.Action{
	"d": game.DrawDeck,
	"p": game.DrawPile,
	"c": game.CallCambio,
	"x": game.Discard,
	"0": game.Swap0,
	"1": game.Swap1,
	"2": game.Swap2,
	"3": game.Swap3,
}

// parseMove accepts a shortcut or a full action token.
func parseMove(s string) (game.Action, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if a, ok := moveShortcuts[s]; ok {
		return a, nil
	}
	return game.ParseAction(s)
}
