package game

import (
	"fmt"
	rand "math/rand/v2"
	"slices"

	"github.com/lox/cambio/internal/deck"
)

// Outcome describes why a game ended.
type Outcome uint8

const (
	OutcomeInProgress Outcome = iota
	OutcomeCambio
	OutcomeDeckExhausted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInProgress:
		return "in_progress"
	case OutcomeCambio:
		return "cambio"
	case OutcomeDeckExhausted:
		return "deck_exhausted"
	default:
		return "unknown"
	}
}

// StepRecord is one accepted step.
type StepRecord struct {
	Player int    `json:"player" toml:"player"`
	Action Action `json:"action" toml:"action"`
}

// Game is a single Cambio episode. It is not safe for concurrent use; run
// independent games for parallel play.
type Game struct {
	dealer  *deck.Dealer
	players []*Player

	discardPile    []deck.Card
	playerDiscards [][]deck.Card

	currentPlayer    int
	drawPhase        bool
	drawnCard        deck.OptionalCard
	drawnFromPile    bool
	calledCambio     bool
	cambioCaller     int
	turnsAfterCambio int
	terminal         bool

	expected deck.Counts
	log      []StepRecord
}

// New creates a game and deals the first episode. The RNG is required even
// when a scripted dealer is supplied so that randomness is always explicit.
func New(rng *rand.Rand, opts ...Option) (*Game, error) {
	if rng == nil {
		panic("rng is required for game creation")
	}

	cfg := &gameConfig{numPlayers: DefaultPlayers}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.numPlayers < MinPlayers || cfg.numPlayers > MaxPlayers {
		return nil, fmt.Errorf("player count %d outside [%d, %d]", cfg.numPlayers, MinPlayers, MaxPlayers)
	}

	dealer := cfg.dealer
	if dealer == nil {
		dealer = deck.NewDealer(rng)
	}

	g := &Game{
		dealer:  dealer,
		players: make([]*Player, cfg.numPlayers),
	}
	for i := range g.players {
		g.players[i] = NewPlayer(i)
	}
	if _, _, err := g.Reset(); err != nil {
		return nil, err
	}
	return g, nil
}

// Reset reshuffles the deck, deals fresh hands and returns the first
// player's view.
func (g *Game) Reset() (StateView, int, error) {
	g.dealer.Reset()

	g.expected = deck.Counts{}
	g.expected.Add(g.dealer.Cards()...)

	for _, p := range g.players {
		cards, err := g.dealer.DealFour()
		if err != nil {
			return StateView{}, 0, fmt.Errorf("deal player %d: %w", p.ID, err)
		}
		p.ReceiveInitialCards(cards)
	}

	g.discardPile = nil
	g.playerDiscards = make([][]deck.Card, len(g.players))
	g.currentPlayer = 0
	g.drawPhase = true
	g.drawnCard = deck.None
	g.drawnFromPile = false
	g.calledCambio = false
	g.cambioCaller = -1
	g.turnsAfterCambio = 0
	g.terminal = false
	g.log = nil

	return g.view(g.currentPlayer), g.currentPlayer, nil
}

// LegalActions returns the actions the current player may take, in
// vocabulary order. A finished game has none.
func (g *Game) LegalActions() []Action {
	if g.IsOver() {
		return nil
	}
	if !g.drawPhase {
		return []Action{Discard, Swap0, Swap1, Swap2, Swap3}
	}
	actions := []Action{DrawDeck}
	if len(g.discardPile) > 0 {
		actions = append(actions, DrawPile)
	}
	if !g.calledCambio {
		actions = append(actions, CallCambio)
	}
	return actions
}

// Step applies an action for the current player and returns the view of the
// player who acts next. Rejected actions leave the game unchanged.
func (g *Game) Step(a Action) (StateView, int, error) {
	if a == DrawDeck && g.dealer.IsEmpty() {
		return g.view(g.currentPlayer), g.currentPlayer, fmt.Errorf("%s: %w", a, deck.ErrDeckEmpty)
	}

	legal := g.LegalActions()
	if !slices.Contains(legal, a) {
		return g.view(g.currentPlayer), g.currentPlayer, &IllegalActionError{
			Action:    a,
			Player:    g.currentPlayer,
			DrawPhase: g.drawPhase,
			Legal:     legal,
			Over:      g.IsOver(),
		}
	}

	actor := g.currentPlayer
	switch a {
	case CallCambio:
		g.calledCambio = true
		g.cambioCaller = actor
		g.turnsAfterCambio = len(g.players) - 1
		g.currentPlayer = g.nextPlayer()

	case DrawDeck:
		card, err := g.dealer.Draw()
		if err != nil {
			return g.view(actor), actor, fmt.Errorf("%s: %w", a, err)
		}
		g.drawnCard = deck.Some(card)
		g.drawnFromPile = false
		g.drawPhase = false

	case DrawPile:
		last := len(g.discardPile) - 1
		g.drawnCard = deck.Some(g.discardPile[last])
		g.discardPile = g.discardPile[:last]
		g.drawnFromPile = true
		g.drawPhase = false

	case Discard:
		card, _ := g.drawnCard.Get()
		g.discard(actor, card)
		g.endTurn()

	case Swap0, Swap1, Swap2, Swap3:
		idx, _ := a.SwapIndex()
		card, _ := g.drawnCard.Get()
		old, err := g.players[actor].SwapCard(idx, card)
		if err != nil {
			return g.view(actor), actor, err
		}
		g.discard(actor, old)
		g.endTurn()

	default:
		panic(fmt.Sprintf("unhandled action %s", a))
	}

	g.log = append(g.log, StepRecord{Player: actor, Action: a})
	return g.view(g.currentPlayer), g.currentPlayer, nil
}

func (g *Game) discard(player int, c deck.Card) {
	g.discardPile = append(g.discardPile, c)
	g.playerDiscards[player] = append(g.playerDiscards[player], c)
}

// endTurn finishes an action-phase step and advances the cambio countdown.
func (g *Game) endTurn() {
	g.drawnCard = deck.None
	g.drawnFromPile = false
	g.drawPhase = true
	g.currentPlayer = g.nextPlayer()

	if g.calledCambio {
		g.turnsAfterCambio--
		if g.turnsAfterCambio <= 0 {
			g.terminal = true
		}
	}
}

func (g *Game) nextPlayer() int {
	return (g.currentPlayer + 1) % len(g.players)
}

// State returns the game as seen by playerID.
func (g *Game) State(playerID int) (StateView, error) {
	if playerID < 0 || playerID >= len(g.players) {
		return StateView{}, fmt.Errorf("%w: %d", ErrInvalidPlayer, playerID)
	}
	return g.view(playerID), nil
}

func (g *Game) view(playerID int) StateView {
	discards := make(map[int][]deck.Card, len(g.players))
	for i, d := range g.playerDiscards {
		discards[i] = slices.Clone(d)
	}

	top := deck.None
	if n := len(g.discardPile); n > 0 {
		top = deck.Some(g.discardPile[n-1])
	}

	drawn := deck.None
	if playerID == g.currentPlayer || g.drawnFromPile {
		drawn = g.drawnCard
	}

	return StateView{
		PlayerID:     playerID,
		Obs:          g.players[playerID].Obs(),
		LegalActions: g.LegalActions(),
		Public: PublicView{
			TopCard:        top,
			DiscardPile:    slices.Clone(g.discardPile),
			PlayerDiscards: discards,
		},
		DrawnCard:     drawn,
		DrawPhase:     g.drawPhase,
		CalledCambio:  g.calledCambio,
		CurrentPlayer: g.currentPlayer,
		NumPlayers:    len(g.players),
		DeckRemaining: g.dealer.Remaining(),
	}
}

// IsOver reports whether the countdown finished or the deck ran out.
func (g *Game) IsOver() bool {
	return g.terminal || g.dealer.IsEmpty()
}

// Outcome reports why the game ended.
func (g *Game) Outcome() Outcome {
	switch {
	case g.calledCambio && g.turnsAfterCambio <= 0:
		return OutcomeCambio
	case g.IsOver():
		return OutcomeDeckExhausted
	default:
		return OutcomeInProgress
	}
}

// Scores returns each player's hand total.
func (g *Game) Scores() []int {
	scores := make([]int, len(g.players))
	for i, p := range g.players {
		scores[i] = p.Score()
	}
	return scores
}

// Winner returns the player with the lowest score, the first one on ties.
func (g *Game) Winner() int {
	scores := g.Scores()
	winner := 0
	for i, s := range scores {
		if s < scores[winner] {
			winner = i
		}
	}
	return winner
}

// Payoffs returns +1 for the winner and -1 for everyone else. Only
// meaningful once IsOver is true.
func (g *Game) Payoffs() []int {
	payoffs := make([]int, len(g.players))
	winner := g.Winner()
	for i := range payoffs {
		payoffs[i] = -1
	}
	payoffs[winner] = 1
	return payoffs
}

// NumPlayers returns the table size.
func (g *Game) NumPlayers() int {
	return len(g.players)
}

// PlayerID returns the player to act.
func (g *Game) PlayerID() int {
	return g.currentPlayer
}

// CambioCaller returns the player who called cambio, or -1.
func (g *Game) CambioCaller() int {
	return g.cambioCaller
}

// TurnsAfterCambio returns the remaining countdown.
func (g *Game) TurnsAfterCambio() int {
	return g.turnsAfterCambio
}

// Player returns the player at seat id, for inspection in tests and tools.
func (g *Game) Player(id int) *Player {
	return g.players[id]
}

// Dealer returns the game's dealer.
func (g *Game) Dealer() *deck.Dealer {
	return g.dealer
}

// Log returns the accepted steps since the last reset.
func (g *Game) Log() []StepRecord {
	return slices.Clone(g.log)
}

// CheckConservation verifies that deck, discard pile, hands and the drawn
// card together still form the dealt deck, and that every hand has four
// cards.
func (g *Game) CheckConservation() error {
	var got deck.Counts
	got.Add(g.dealer.Cards()...)
	got.Add(g.discardPile...)
	for _, p := range g.players {
		hand := p.Hand()
		got.Add(hand[:]...)
	}
	if c, ok := g.drawnCard.Get(); ok {
		got.Add(c)
	}

	if got.Total() != g.expected.Total() {
		return fmt.Errorf("%w: %d cards in play, want %d", ErrConservation, got.Total(), g.expected.Total())
	}
	if got != g.expected {
		for r := range got {
			if got[r] != g.expected[r] {
				return fmt.Errorf("%w: rank %s has %d cards, want %d",
					ErrConservation, deck.Card(r), got[r], g.expected[r])
			}
		}
	}
	return nil
}
