package simulator

import (
	"fmt"
	"io"
	"strings"

	"github.com/lox/cambio/internal/game"
	"github.com/lox/cambio/internal/statistics"
)

// PrintSummary writes a per-bot summary of a finished run.
func PrintSummary(w io.Writer, report *statistics.Report, config Config) {
	fmt.Fprintf(w, "\n=== FINAL RESULTS: %s ===\n", strings.Join(config.Bots, " vs "))
	fmt.Fprintf(w, "Games played: %d (%d players, seed %d)\n", report.Games, config.Players, config.Seed)
	fmt.Fprintf(w, "Mean steps per game: %.1f\n", report.MeanSteps())

	cambio := report.Outcomes[game.OutcomeCambio]
	exhausted := report.Outcomes[game.OutcomeDeckExhausted]
	fmt.Fprintf(w, "Endings: %d cambio (%.1f%%), %d deck exhausted (%.1f%%)\n",
		cambio, pct(cambio, report.Games), exhausted, pct(exhausted, report.Games))

	for _, name := range report.Names() {
		s := report.Bots[name]
		low, high := s.ConfidenceInterval95()

		fmt.Fprintf(w, "\n=== %s ===\n", name)
		fmt.Fprintf(w, "Seat-games: %d, wins: %d (%.1f%%)\n", s.Games, s.Wins(), s.WinRate()*100)
		fmt.Fprintf(w, "Mean payoff: %.4f (95%% CI [%.4f, %.4f], SE %.4f)\n", s.Mean(), low, high, s.StdError())
		fmt.Fprintf(w, "Final score: mean %.2f, median %.1f, std dev %.2f, best %d\n",
			s.MeanScore(), s.Median(), s.ScoreStdDev(), s.BestScore)
		fmt.Fprintf(w, "Percentiles: P5=%.1f, P25=%.1f, P75=%.1f, P95=%.1f\n",
			s.Percentile(0.05), s.Percentile(0.25), s.Percentile(0.75), s.Percentile(0.95))
		fmt.Fprintf(w, "Wins: %d by cambio, %d on exhausted deck\n", s.CambioWins, s.ExhaustedWins)
		if s.Calls > 0 {
			fmt.Fprintf(w, "Cambio calls: %d, won %d (%.1f%%)\n", s.Calls, s.CallWins, pct(s.CallWins, s.Calls))
		}
		for seat, ss := range s.SeatResults {
			if ss.Games > 0 {
				fmt.Fprintf(w, "Seat %d: %d games, %.3f payoff/game\n", seat, ss.Games, s.SeatMean(seat))
			}
		}
	}
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
