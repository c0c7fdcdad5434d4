package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/cambio/internal/game"
	"github.com/lox/cambio/internal/protocol"
)

var (
	// ErrDecisionTimeout is returned when a seat does not answer in time.
	ErrDecisionTimeout = errors.New("decision timeout")
	// ErrDisconnected is returned when a seat drops mid-decision.
	ErrDisconnected = errors.New("client disconnected")
)

// remoteAgent asks a connected client for each decision.
type remoteAgent struct {
	c       *conn
	gameID  string
	timeout time.Duration
	clock   quartz.Clock
}

// DecideContext sends an action request and waits for a legal reply.
// Malformed and illegal replies are answered with an error and the request
// is repeated; the deadline covers all attempts.
func (a *remoteAgent) DecideContext(ctx context.Context, view game.StateView) (game.Action, error) {
	a.drain()

	req := &protocol.ActionRequest{
		GameID:    a.gameID,
		TimeoutMS: int(a.timeout / time.Millisecond),
		View:      protocol.FromView(view),
	}
	expired := make(chan struct{})
	timer := a.clock.AfterFunc(a.timeout, func() { close(expired) })
	defer timer.Stop()

	if err := a.c.sendMessage(req); err != nil {
		return 0, fmt.Errorf("%s: %w", a.c.name, err)
	}

	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()

		case <-a.c.done:
			return 0, fmt.Errorf("%s: %w", a.c.name, ErrDisconnected)

		case <-expired:
			_ = a.c.sendMessage(&protocol.Error{
				Code:    protocol.CodeTimeout,
				Message: fmt.Sprintf("no legal action within %v", a.timeout),
			})
			return 0, fmt.Errorf("%s: %w after %v", a.c.name, ErrDecisionTimeout, a.timeout)

		case data := <-a.c.incoming:
			action, code, err := parseReply(data, view)
			if err == nil {
				return action, nil
			}
			a.c.logger.Debug().Err(err).Str("bot", a.c.name).Str("code", code).Msg("Rejected reply")
			if err := a.c.sendMessage(&protocol.Error{Code: code, Message: err.Error()}); err != nil {
				return 0, fmt.Errorf("%s: %w", a.c.name, err)
			}
			if err := a.c.sendMessage(req); err != nil {
				return 0, fmt.Errorf("%s: %w", a.c.name, err)
			}
		}
	}
}

func parseReply(data []byte, view game.StateView) (game.Action, string, error) {
	var msg protocol.Action
	if err := protocol.Unmarshal(data, &msg); err != nil {
		return 0, protocol.CodeInvalidMessage, err
	}
	action, err := game.ParseAction(msg.Action)
	if err != nil {
		return 0, protocol.CodeIllegalAction, err
	}
	if !view.IsLegal(action) {
		return 0, protocol.CodeIllegalAction, &game.IllegalActionError{
			Action:    action,
			Player:    view.PlayerID,
			DrawPhase: view.DrawPhase,
			Legal:     view.LegalActions,
		}
	}
	return action, "", nil
}

// drain discards replies that arrived after an earlier request completed.
func (a *remoteAgent) drain() {
	for {
		select {
		case <-a.c.incoming:
		default:
			return
		}
	}
}
