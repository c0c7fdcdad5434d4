// Package client connects a local agent to a Cambio server.
package client

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gorilla/websocket"
	"github.com/lox/cambio/internal/game"
	"github.com/lox/cambio/internal/match"
	"github.com/lox/cambio/internal/protocol"
	"github.com/rs/zerolog"
)

// Result summarises the games a client played.
type Result struct {
	Games       int
	Wins        int
	TotalPayoff int
	Aborted     int
}

// RunOption configures Run.
type RunOption func(*runConfig)

type runConfig struct {
	logger zerolog.Logger
	games  int
	dialer *websocket.Dialer
}

// WithLogger sets a custom logger
func WithLogger(logger zerolog.Logger) RunOption {
	return func(cfg *runConfig) {
		cfg.logger = logger
	}
}

// WithGames stops after n finished games. The default plays until the
// server closes the connection.
func WithGames(n int) RunOption {
	return func(cfg *runConfig) {
		cfg.games = n
	}
}

// WithDialer overrides websocket.DefaultDialer.
func WithDialer(d *websocket.Dialer) RunOption {
	return func(cfg *runConfig) {
		cfg.dialer = d
	}
}

// Run connects to serverURL, introduces itself as name and answers every
// action request with agent. It returns when the game limit is reached, the
// server closes the connection or ctx is cancelled.
func Run(ctx context.Context, serverURL, name string, agent match.Agent, opts ...RunOption) (*Result, error) {
	cfg := &runConfig{
		logger: zerolog.New(os.Stderr).With().Timestamp().Logger(),
		dialer: websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if agent == nil {
		return nil, errors.New("agent is required")
	}
	logger := cfg.logger.With().Str("bot", name).Logger()

	ws, _, err := cfg.dialer.DialContext(ctx, serverURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", serverURL, err)
	}
	defer ws.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = ws.Close()
	})
	defer stop()

	p := &player{ws: ws, agent: agent, logger: logger, result: &Result{}, seat: -1}
	if err := p.send(&protocol.Hello{Name: name}); err != nil {
		return nil, err
	}
	logger.Info().Str("server", serverURL).Msg("Connected")

	for cfg.games == 0 || p.result.Games < cfg.games {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return p.result, ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Info().Int("games", p.result.Games).Msg("Server closed connection")
				return p.result, nil
			}
			return p.result, fmt.Errorf("read: %w", err)
		}
		if err := p.handle(ctx, data); err != nil {
			return p.result, err
		}
	}

	_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return p.result, nil
}

type player struct {
	ws     *websocket.Conn
	agent  match.Agent
	logger zerolog.Logger
	result *Result
	gameID string
	seat   int
}

func (p *player) send(msg any) error {
	data, err := protocol.Marshal(msg)
	if err != nil {
		return err
	}
	return p.ws.WriteMessage(websocket.BinaryMessage, data)
}

func (p *player) handle(ctx context.Context, data []byte) error {
	typ, err := protocol.PeekType(data)
	if err != nil {
		return fmt.Errorf("decode message: %w", err)
	}

	switch typ {
	case protocol.TypeGameStart:
		var msg protocol.GameStart
		if err := protocol.Unmarshal(data, &msg); err != nil {
			return err
		}
		p.gameID, p.seat = msg.GameID, msg.Seat
		p.logger.Debug().Str("game_id", msg.GameID).Int("seat", msg.Seat).Strs("players", msg.Players).Msg("Game started")

	case protocol.TypeActionRequest:
		var msg protocol.ActionRequest
		if err := protocol.Unmarshal(data, &msg); err != nil {
			return err
		}
		view, err := msg.View.GameView()
		if err != nil {
			return fmt.Errorf("action request: %w", err)
		}
		action, err := decide(ctx, p.agent, view)
		if err != nil {
			return err
		}
		return p.send(&protocol.Action{Action: action.String()})

	case protocol.TypePlayerAction:
		var msg protocol.PlayerAction
		if err := protocol.Unmarshal(data, &msg); err != nil {
			return err
		}
		p.logger.Trace().Int("seat", msg.Seat).Str("action", msg.Action).Msg("Player action")

	case protocol.TypeGameOver:
		var msg protocol.GameOver
		if err := protocol.Unmarshal(data, &msg); err != nil {
			return err
		}
		if msg.Seat < 0 || msg.Seat >= len(msg.Payoffs) {
			return fmt.Errorf("game over: seat %d outside %d payoffs", msg.Seat, len(msg.Payoffs))
		}
		p.result.Games++
		p.result.TotalPayoff += msg.Payoffs[msg.Seat]
		if msg.Winner == msg.Seat {
			p.result.Wins++
		}
		p.logger.Info().
			Str("game_id", msg.GameID).
			Str("outcome", msg.Outcome).
			Int("payoff", msg.Payoffs[msg.Seat]).
			Ints("scores", msg.Scores).
			Msg("Game over")

	case protocol.TypeError:
		var msg protocol.Error
		if err := protocol.Unmarshal(data, &msg); err != nil {
			return err
		}
		if msg.Code == protocol.CodeAborted {
			p.result.Aborted++
		}
		p.logger.Warn().Str("code", msg.Code).Str("message", msg.Message).Msg("Server error")

	default:
		p.logger.Debug().Str("type", typ).Msg("Ignoring message")
	}
	return nil
}

func decide(ctx context.Context, agent match.Agent, view game.StateView) (game.Action, error) {
	if ca, ok := agent.(match.ContextAgent); ok {
		return ca.DecideContext(ctx, view)
	}
	return agent.Decide(view), nil
}
