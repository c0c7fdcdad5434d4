package statistics

import (
	"fmt"
	"sort"

	"github.com/lox/cambio/internal/game"
)

// Report aggregates a simulation run by bot name. Several seats may run the
// same bot; their results are pooled.
type Report struct {
	Games      int
	TotalSteps int
	Outcomes   map[game.Outcome]int
	Bots       map[string]*Statistics
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{
		Outcomes: make(map[game.Outcome]int),
		Bots:     make(map[string]*Statistics),
	}
}

// AddGame records one finished game. bots, payoffs and scores are indexed by
// seat; caller is the seat that called cambio or -1.
func (r *Report) AddGame(seed int64, bots []string, payoffs, scores []int, outcome game.Outcome, caller, steps int) error {
	if len(bots) != len(payoffs) || len(bots) != len(scores) {
		return fmt.Errorf("game %d: %d bots, %d payoffs, %d scores", seed, len(bots), len(payoffs), len(scores))
	}

	r.Games++
	r.TotalSteps += steps
	r.Outcomes[outcome]++

	for seat, name := range bots {
		s, ok := r.Bots[name]
		if !ok {
			s = &Statistics{}
			r.Bots[name] = s
		}
		s.Add(GameResult{
			Payoff:  payoffs[seat],
			Score:   scores[seat],
			Seed:    seed,
			Seat:    seat,
			Outcome: outcome,
			Called:  seat == caller,
		})
	}
	return nil
}

// Names returns the bot names in sorted order.
func (r *Report) Names() []string {
	names := make([]string, 0, len(r.Bots))
	for name := range r.Bots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MeanSteps returns the average number of steps per game.
func (r *Report) MeanSteps() float64 {
	if r.Games == 0 {
		return 0
	}
	return float64(r.TotalSteps) / float64(r.Games)
}

// Validate checks every bot's statistics and that each game produced
// exactly one winner.
func (r *Report) Validate() error {
	if r.Games <= 0 {
		return fmt.Errorf("invalid games count: %d", r.Games)
	}

	outcomes := 0
	for _, n := range r.Outcomes {
		outcomes += n
	}
	if outcomes != r.Games {
		return fmt.Errorf("outcome total (%d) does not match games (%d)", outcomes, r.Games)
	}

	wins := 0
	for _, name := range r.Names() {
		s := r.Bots[name]
		if err := s.Validate(); err != nil {
			return fmt.Errorf("bot %s: %w", name, err)
		}
		wins += s.Wins()
	}
	if wins != r.Games {
		return fmt.Errorf("total wins (%d) does not match games (%d)", wins, r.Games)
	}
	return nil
}
