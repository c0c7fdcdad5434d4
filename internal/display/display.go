// Package display renders Cambio games for a terminal.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/cambio/internal/deck"
	"github.com/lox/cambio/internal/game"
	"github.com/lox/cambio/internal/match"
	"github.com/muesli/termenv"
)

// Styles contains styling for game display
type Styles struct {
	Header    lipgloss.Style
	SubHeader lipgloss.Style
	Action    lipgloss.Style
	Winner    lipgloss.Style
	CardLow   lipgloss.Style // jokers and red kings
	CardHigh  lipgloss.Style // face cards
	Card      lipgloss.Style
	Hidden    lipgloss.Style
	Separator lipgloss.Style
	You       lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Header: r.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 2).
			Bold(true),
		SubHeader: r.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true),
		Action: r.NewStyle().
			Foreground(lipgloss.Color("#74B9FF")),
		Winner: r.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true),
		CardLow: r.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true),
		CardHigh: r.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true),
		Card: r.NewStyle().
			Bold(true),
		Hidden: r.NewStyle().
			Foreground(lipgloss.Color("#626262")),
		Separator: r.NewStyle().
			Foreground(lipgloss.Color("#626262")),
		You: r.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true),
	}
}

// Option configures a Display.
type Option func(*Display)

// WithNoColor renders plain text regardless of the terminal.
func WithNoColor() Option {
	return func(d *Display) {
		d.renderer.SetColorProfile(termenv.Ascii)
	}
}

// WithNames labels seats instead of "Player N".
func WithNames(names []string) Option {
	return func(d *Display) {
		d.names = names
	}
}

// Display writes game state to a terminal.
type Display struct {
	w        io.Writer
	renderer *lipgloss.Renderer
	styles   Styles
	names    []string
}

// New creates a display writing to w.
func New(w io.Writer, opts ...Option) *Display {
	d := &Display{
		w:        w,
		renderer: lipgloss.NewRenderer(w),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.styles = newStyles(d.renderer)
	return d
}

// Name returns the label of a seat.
func (d *Display) Name(seat int) string {
	if seat >= 0 && seat < len(d.names) && d.names[seat] != "" {
		return d.names[seat]
	}
	return fmt.Sprintf("Player %d", seat+1)
}

// Card renders a card slot, "??" when it is unknown.
func (d *Display) Card(c deck.OptionalCard) string {
	card, ok := c.Get()
	if !ok {
		return d.styles.Hidden.Render("??")
	}
	return d.card(card)
}

func (d *Display) card(c deck.Card) string {
	label := fmt.Sprintf("%-2s", c)
	switch {
	case c.Score() <= 0:
		return d.styles.CardLow.Render(label)
	case c.Score() >= 10:
		return d.styles.CardHigh.Render(label)
	default:
		return d.styles.Card.Render(label)
	}
}

func (d *Display) cards(cs []deck.Card) string {
	if len(cs) == 0 {
		return d.styles.Hidden.Render("(none)")
	}
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = d.card(c)
	}
	return strings.Join(parts, " ")
}

// View renders what the viewing player can see.
func (d *Display) View(view game.StateView) string {
	var b strings.Builder

	actor := d.Name(view.CurrentPlayer) + " to act"
	if view.IsTurn() {
		actor = "Your turn"
	}
	header := fmt.Sprintf("%s • %d cards in deck", actor, view.DeckRemaining)
	if view.CalledCambio {
		header += " • cambio called"
	}
	fmt.Fprintln(&b, d.styles.Header.Render(header))

	slots := make([]string, len(view.Obs))
	for i, o := range view.Obs {
		slots[i] = fmt.Sprintf("%d:%s", i, d.Card(o))
	}
	fmt.Fprintf(&b, "%s %s\n", d.styles.You.Render("Your hand:"), strings.Join(slots, "  "))
	fmt.Fprintf(&b, "Top of pile: %s\n", d.Card(view.Public.TopCard))

	if c, ok := view.DrawnCard.Get(); ok {
		fmt.Fprintf(&b, "Drawn card: %s\n", d.card(c))
	}

	for seat := range view.NumPlayers {
		discards := view.Public.PlayerDiscards[seat]
		if len(discards) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s discarded: %s\n", d.Name(seat), d.cards(discards))
	}
	return b.String()
}

// Prompt lists the legal actions for the acting player.
func (d *Display) Prompt(view game.StateView) string {
	names := make([]string, len(view.LegalActions))
	for i, a := range view.LegalActions {
		names[i] = d.styles.Action.Render(a.String())
	}
	return fmt.Sprintf("Your move [%s]: ", strings.Join(names, ", "))
}

// Step renders one accepted action. Cards drawn from the deck stay hidden.
func (d *Display) Step(ev match.StepEvent) string {
	return fmt.Sprintf("%s: %s", d.Name(ev.Player), d.styles.Action.Render(ev.Action.String()))
}

// Final reveals every hand, the scores and the winner of a finished game.
func (d *Display) Final(g *game.Game, res *match.Result) string {
	var b strings.Builder

	fmt.Fprintln(&b, d.styles.Separator.Render(strings.Repeat("─", 40)))
	fmt.Fprintf(&b, "%s (%s, %d steps)\n", d.styles.SubHeader.Render("Game over"), res.Outcome, res.Steps)

	for seat := range g.NumPlayers() {
		hand := g.Player(seat).Hand()
		line := fmt.Sprintf("%-12s %s  score %3d  payoff %+d",
			d.Name(seat), d.cards(hand[:]), res.Scores[seat], res.Payoffs[seat])
		if seat == res.Winner {
			line = d.styles.Winner.Render(line + "  winner")
		}
		fmt.Fprintln(&b, line)
	}
	return b.String()
}

// Print writes s followed by a newline when it does not end with one.
func (d *Display) Print(s string) {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, _ = io.WriteString(d.w, s)
}

// Printf writes formatted text without a trailing newline.
func (d *Display) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(d.w, format, args...)
}
