package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/lox/cambio/internal/game"
)

// GameResult is one seat's outcome in a single game.
type GameResult struct {
	Payoff  int          // +1 for the winner, -1 otherwise
	Score   int          // Final hand total
	Seed    int64        // Game seed (for replay)
	Seat    int          // Seat index, 0-based
	Outcome game.Outcome // Why the game ended
	Called  bool         // This seat called cambio
}

// SeatStats tracks payoffs for a single seat position.
type SeatStats struct {
	Games      int
	SumPayoff  float64
	SumPayoff2 float64
}

// Statistics aggregates one bot's results over many games.
type Statistics struct {
	Games      int
	SumPayoff  float64
	SumPayoff2 float64   // Sum of squares for variance calculation
	Scores     []float64 // Every final score, for median/percentile calculation
	SumScore   float64
	SumScore2  float64

	// Split by how the game ended; both wins and losses are tracked.
	CambioWins      int
	ExhaustedWins   int
	CambioPayoff    float64
	ExhaustedPayoff float64
	AllPayoff       float64 // Total payoff for sanity check

	// Games where this bot called cambio, and how many of those it won.
	Calls    int
	CallWins int

	// Per-seat analytics, indexed by seat.
	SeatResults [game.MaxPlayers]SeatStats

	// Lowest final score observed; only meaningful once Games > 0.
	BestScore int
}

// Add incorporates a new game result into the statistics
func (s *Statistics) Add(result GameResult) {
	payoff := float64(result.Payoff)
	score := float64(result.Score)

	if s.Games == 0 || result.Score < s.BestScore {
		s.BestScore = result.Score
	}

	s.Games++
	s.SumPayoff += payoff
	s.SumPayoff2 += payoff * payoff
	s.Scores = append(s.Scores, score)
	s.SumScore += score
	s.SumScore2 += score * score

	won := result.Payoff > 0
	if result.Outcome == game.OutcomeCambio {
		s.CambioPayoff += payoff
		if won {
			s.CambioWins++
		}
	} else {
		s.ExhaustedPayoff += payoff
		if won {
			s.ExhaustedWins++
		}
	}
	s.AllPayoff += payoff

	if result.Called {
		s.Calls++
		if won {
			s.CallWins++
		}
	}

	if seat := result.Seat; seat >= 0 && seat < len(s.SeatResults) {
		s.SeatResults[seat].Games++
		s.SeatResults[seat].SumPayoff += payoff
		s.SeatResults[seat].SumPayoff2 += payoff * payoff
	}
}

// Wins returns the number of games won.
func (s *Statistics) Wins() int {
	return s.CambioWins + s.ExhaustedWins
}

// WinRate returns the fraction of games won.
func (s *Statistics) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Wins()) / float64(s.Games)
}

// Mean returns the mean payoff per game
func (s *Statistics) Mean() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.SumPayoff / float64(s.Games)
}

// Variance returns the sample variance of the payoffs
func (s *Statistics) Variance() float64 {
	return sampleVariance(s.Games, s.SumPayoff, s.SumPayoff2)
}

// StdDev returns the sample standard deviation of the payoffs
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean payoff
func (s *Statistics) StdError() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Games))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean payoff
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// MeanScore returns the mean final hand total.
func (s *Statistics) MeanScore() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.SumScore / float64(s.Games)
}

// ScoreStdDev returns the sample standard deviation of final hand totals.
func (s *Statistics) ScoreStdDev() float64 {
	return math.Sqrt(sampleVariance(s.Games, s.SumScore, s.SumScore2))
}

// Median returns the median final score
func (s *Statistics) Median() float64 {
	if len(s.Scores) == 0 {
		return 0
	}
	sorted := sortedCopy(s.Scores)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Percentile returns the final score at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Scores) == 0 {
		return 0
	}
	sorted := sortedCopy(s.Scores)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// SeatMean returns the mean payoff for a specific seat
func (s *Statistics) SeatMean(seat int) float64 {
	if seat < 0 || seat >= len(s.SeatResults) {
		return 0
	}
	ss := s.SeatResults[seat]
	if ss.Games == 0 {
		return 0
	}
	return ss.SumPayoff / float64(ss.Games)
}

// IsLedgerBalanced checks if the accounting is consistent
func (s *Statistics) IsLedgerBalanced() bool {
	return math.Abs(s.AllPayoff-s.CambioPayoff-s.ExhaustedPayoff) <= 1e-6
}

// Validate performs comprehensive validation of statistics data
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: AllPayoff=%.6f, CambioPayoff=%.6f, ExhaustedPayoff=%.6f",
			s.AllPayoff, s.CambioPayoff, s.ExhaustedPayoff)
	}

	if s.Games <= 0 {
		return fmt.Errorf("invalid games count: %d", s.Games)
	}

	if len(s.Scores) != s.Games {
		return fmt.Errorf("scores length (%d) does not match games count (%d)", len(s.Scores), s.Games)
	}

	if s.Wins() > s.Games {
		return fmt.Errorf("total wins (%d) exceeds total games (%d)", s.Wins(), s.Games)
	}

	if s.CallWins > s.Calls {
		return fmt.Errorf("cambio call wins (%d) exceed calls (%d)", s.CallWins, s.Calls)
	}

	totalSeatGames := 0
	for _, ss := range s.SeatResults {
		totalSeatGames += ss.Games
	}
	if totalSeatGames != s.Games {
		return fmt.Errorf("seat games total (%d) does not match total games (%d)", totalSeatGames, s.Games)
	}

	return nil
}

func sampleVariance(n int, sum, sum2 float64) float64 {
	if n < 2 {
		return 0
	}
	mean := sum / float64(n)
	return (sum2 - float64(n)*mean*mean) / float64(n-1)
}

func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}
