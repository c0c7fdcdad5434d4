package server

import (
	"context"
	"errors"

	"github.com/lox/cambio/internal/game"
	"github.com/lox/cambio/internal/gameid"
	"github.com/lox/cambio/internal/history"
	"github.com/lox/cambio/internal/match"
	"github.com/lox/cambio/internal/protocol"
	"github.com/lox/cambio/internal/randutil"
)

// runGame plays one game with the given seats and returns them to the lobby.
func (s *Server) runGame(ctx context.Context, index int, seats []*conn) {
	seed := randutil.Derive(s.cfg.Seed, index)
	id := gameid.Generate()
	names := make([]string, len(seats))
	for i, c := range seats {
		names[i] = c.name
	}
	logger := s.logger.With().Str("game_id", id).Int("game", index).Logger()

	summary := GameSummary{Index: index, ID: id, Seed: seed, Names: names}
	defer func() {
		s.requeue(seats)
		if s.cfg.OnGameOver != nil {
			s.cfg.OnGameOver(summary)
		}
	}()

	g, err := game.New(randutil.New(seed), game.WithPlayers(len(seats)))
	if err != nil {
		summary.Err = err
		logger.Error().Err(err).Msg("Failed to create game")
		s.abort(seats, err)
		return
	}

	agents := make([]match.Agent, len(seats))
	for i, c := range seats {
		agents[i] = match.FromContext(&remoteAgent{
			c:       c,
			gameID:  id,
			timeout: s.cfg.DecisionTimeout,
			clock:   s.cfg.Clock,
		})
		if err := c.sendMessage(&protocol.GameStart{GameID: id, Seat: i, Players: names}); err != nil {
			logger.Warn().Err(err).Str("bot", c.name).Msg("Failed to send game start")
		}
	}
	logger.Info().Strs("players", names).Int64("seed", seed).Msg("Game started")

	broadcast := func(ev match.StepEvent) {
		msg := &protocol.PlayerAction{GameID: id, Seat: ev.Player, Action: ev.Action.String()}
		for _, c := range seats {
			_ = c.sendMessage(msg)
		}
	}

	res, err := match.Run(ctx, g, agents, match.WithObserver(broadcast))
	if err != nil {
		summary.Err = err
		logger.Warn().Err(err).Msg("Game aborted")
		s.abort(seats, err)
		return
	}
	summary.Result = res

	for i, c := range seats {
		_ = c.sendMessage(&protocol.GameOver{
			GameID:  id,
			Seat:    i,
			Winner:  res.Winner,
			Outcome: res.Outcome.String(),
			Payoffs: res.Payoffs,
			Scores:  res.Scores,
		})
	}

	if s.cfg.RecordDir != "" {
		path, err := history.Save(s.cfg.RecordDir, history.NewRecord(id, seed, names, g))
		if err != nil {
			logger.Error().Err(err).Msg("Failed to save game record")
		}
		summary.Path = path
	}

	logger.Info().
		Str("outcome", res.Outcome.String()).
		Str("winner", names[res.Winner]).
		Ints("scores", res.Scores).
		Int("steps", res.Steps).
		Msg("Game over")
}

// abort tells every seat the game was dropped.
func (s *Server) abort(seats []*conn, cause error) {
	if errors.Is(cause, context.Canceled) {
		return
	}
	for _, c := range seats {
		_ = c.sendMessage(&protocol.Error{Code: protocol.CodeAborted, Message: cause.Error()})
	}
}
