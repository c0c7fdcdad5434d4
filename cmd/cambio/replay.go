package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lox/cambio/internal/display"
	"github.com/lox/cambio/internal/encoding"
	"github.com/lox/cambio/internal/game"
	"github.com/lox/cambio/internal/history"
	"github.com/lox/cambio/internal/match"
	"github.com/lox/cambio/internal/randutil"
)

// ReplayCmd re-plays a TOML record and checks it against the stored result.
type ReplayCmd struct {
	File    string `arg:"" type:"existingfile" help:"Game record to verify"`
	Steps   bool   `help:"Print every recorded action"`
	Vectors bool   `help:"Print the acting player's observation vector, legal mask and action id before every step"`
	NoColor bool   `help:"Disable colored output"`
}

func (c *ReplayCmd) Run() error {
	rec, err := history.Load(c.File)
	if err != nil {
		return err
	}

	g, err := history.Verify(rec)
	if err != nil {
		return fmt.Errorf("%s: %w", c.File, err)
	}

	opts := []display.Option{display.WithNames(rec.Bots)}
	if c.NoColor {
		opts = append(opts, display.WithNoColor())
	}
	d := display.New(os.Stdout, opts...)

	d.Print(fmt.Sprintf("Game %s: seed %d, %d players, %d actions", rec.ID, rec.Seed, rec.Players, len(rec.Actions)))
	if c.Steps {
		for i, a := range rec.Actions {
			d.Print(fmt.Sprintf("%4d  %s", i+1, a))
		}
	}

	if c.Vectors {
		if err := writeVectors(os.Stdout, rec); err != nil {
			return err
		}
	}

	d.Print(d.Final(g, &match.Result{
		Payoffs: g.Payoffs(),
		Scores:  g.Scores(),
		Winner:  g.Winner(),
		Outcome: g.Outcome(),
		Steps:   len(rec.Actions),
	}))
	d.Print("Record verified")
	return nil
}

// writeVectors re-plays rec and writes one tab-separated line per step:
// step, seat, action id, legal mask, observation vector.
func writeVectors(w io.Writer, rec *history.Record) error {
	g, err := game.New(randutil.New(rec.Seed), game.WithPlayers(rec.Players))
	if err != nil {
		return err
	}

	for i, s := range rec.Actions {
		_, a, err := history.ParseAction(s)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		seat := g.PlayerID()
		view, err := g.State(seat)
		if err != nil {
			return err
		}
		id, err := encoding.ActionID(a)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		mask := encoding.LegalMask(view)

		if _, err := fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%s\n",
			i, seat, id, joinFloats(mask[:]), joinFloats(encoding.Vector(view))); err != nil {
			return err
		}
		if _, _, err := g.Step(a); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, a, err)
		}
	}
	return nil
}

func joinFloats(v []float32) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(float64(f), 'g', -1, 32)
	}
	return strings.Join(parts, ",")
}
