package server

import (
	"errors"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/cambio/internal/protocol"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Time allowed for a full send buffer to drain
	sendTimeout = time.Second
)

var (
	// ErrConnClosed is returned when sending to a closed connection.
	ErrConnClosed = errors.New("connection closed")
	// ErrSendTimeout is returned when the send buffer stays full.
	ErrSendTimeout = errors.New("send timeout")
)

// conn is one connected client. readPump feeds incoming frames, writePump
// drains send. A nil entry in send ends the connection.
type conn struct {
	ws       *websocket.Conn
	name     string
	send     chan []byte
	incoming chan []byte
	done     chan struct{}
	once     sync.Once
	clock    quartz.Clock
	logger   zerolog.Logger
}

func newConn(ws *websocket.Conn, clock quartz.Clock, logger zerolog.Logger) *conn {
	return &conn{
		ws:       ws,
		clock:    clock,
		send:     make(chan []byte, 64),
		incoming: make(chan []byte, 16),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

func (c *conn) start() {
	go c.readPump()
	go c.writePump()
}

// sendMessage queues a protocol message.
func (c *conn) sendMessage(msg any) error {
	data, err := protocol.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	default:
	}

	timer := c.clock.NewTimer(sendTimeout, "send")
	defer timer.Stop()

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrConnClosed
	case <-timer.C:
		return ErrSendTimeout
	}
}

func (c *conn) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

// shutdown flushes queued messages, sends a close frame and closes.
func (c *conn) shutdown() {
	select {
	case c.send <- nil:
		return
	case <-c.done:
		return
	default:
	}

	timer := c.clock.NewTimer(sendTimeout, "send")
	defer timer.Stop()

	select {
	case c.send <- nil:
	case <-c.done:
	case <-timer.C:
		c.close()
	}
}

func (c *conn) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *conn) readPump() {
	defer c.close()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn().Err(err).Msg("Unexpected WebSocket close")
			}
			return
		}
		select {
		case c.incoming <- data:
		case <-c.done:
			return
		}
	}
}

func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if data == nil {
				_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.ws.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
