// Package server hosts Cambio games for remote bots over WebSocket.
//
// Clients connect to /ws, introduce themselves with a hello message and wait
// in the lobby. Every time enough clients are waiting they are seated in
// arrival order and play one game; live clients return to the lobby after
// the game ends.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/cambio/internal/game"
	"github.com/lox/cambio/internal/match"
	"github.com/lox/cambio/internal/protocol"
	"github.com/rs/zerolog"
)

const (
	// DefaultDecisionTimeout is how long a seat may take to answer.
	DefaultDecisionTimeout = 10 * time.Second
	// DefaultHelloTimeout bounds the handshake after the upgrade.
	DefaultHelloTimeout = 5 * time.Second
)

// Config controls matchmaking and game play.
type Config struct {
	Players         int
	DecisionTimeout time.Duration
	HelloTimeout    time.Duration
	Seed            int64

	// Games stops the server after this many games, 0 means unlimited.
	Games     int
	RecordDir string
	Clock     quartz.Clock
	Logger    zerolog.Logger

	// OnGameOver is called once per seated game, aborted games included.
	OnGameOver func(GameSummary)
}

// GameSummary describes a game the server hosted.
type GameSummary struct {
	Index  int
	ID     string
	Seed   int64
	Names  []string
	Result *match.Result
	Path   string
	Err    error
}

// Server matches connected clients into games.
type Server struct {
	cfg      Config
	upgrader websocket.Upgrader
	logger   zerolog.Logger

	lobby    chan *conn
	stopped  chan struct{}
	stopOnce sync.Once
	games    sync.WaitGroup

	mu    sync.Mutex
	conns map[*conn]struct{}
}

// New validates cfg and fills in defaults.
func New(cfg Config) (*Server, error) {
	if cfg.Players == 0 {
		cfg.Players = game.DefaultPlayers
	}
	if cfg.Players < game.MinPlayers || cfg.Players > game.MaxPlayers {
		return nil, fmt.Errorf("players must be between %d and %d, got %d", game.MinPlayers, game.MaxPlayers, cfg.Players)
	}
	if cfg.Games < 0 {
		return nil, fmt.Errorf("games must not be negative, got %d", cfg.Games)
	}
	if cfg.DecisionTimeout <= 0 {
		cfg.DecisionTimeout = DefaultDecisionTimeout
	}
	if cfg.HelloTimeout <= 0 {
		cfg.HelloTimeout = DefaultHelloTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}

	return &Server{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:  cfg.Logger.With().Str("component", "server").Logger(),
		lobby:   make(chan *conn, 256),
		stopped: make(chan struct{}),
		conns:   make(map[*conn]struct{}),
	}, nil
}

// Handler returns the HTTP routes: /ws for bots and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled or the game limit is
// reached.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener is ListenAndServe on an existing listener.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Int("players", s.cfg.Players).Msg("Starting WebSocket server")
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.Serve(ctx)
	}()

	var err error
	select {
	case err = <-errCh:
		s.stop()
		<-serveErr
	case err = <-serveErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	return err
}

// Serve runs the matchmaker until ctx is cancelled or Games games have been
// played. In-flight games are finished or aborted before it returns.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var waiting []*conn
	started := 0
	limitReached := func() bool {
		return s.cfg.Games > 0 && started >= s.cfg.Games
	}

loop:
	for !limitReached() {
		select {
		case <-ctx.Done():
			break loop
		case <-s.stopped:
			break loop
		case c := <-s.lobby:
			waiting = slices.DeleteFunc(append(waiting, c), (*conn).closed)
			s.logger.Debug().Str("name", c.name).Int("waiting", len(waiting)).Msg("Client waiting")

			for len(waiting) >= s.cfg.Players && !limitReached() {
				seats := slices.Clone(waiting[:s.cfg.Players])
				waiting = waiting[s.cfg.Players:]
				index := started
				started++

				s.games.Add(1)
				go func() {
					defer s.games.Done()
					s.runGame(ctx, index, seats)
				}()
			}
		}
	}

	if limitReached() && ctx.Err() == nil {
		s.logger.Info().Int("games", started).Msg("Game limit reached")
	} else {
		// Unblocks seats waiting on a decision.
		s.closeAll()
	}
	s.games.Wait()
	s.stop()
	return nil
}

func (s *Server) stop() {
	s.stopOnce.Do(func() {
		close(s.stopped)
		s.closeAll()
	})
}

func (s *Server) closeAll() {
	s.mu.Lock()
	conns := make([]*conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.shutdown()
	}
}

// requeue returns live clients to the lobby in seat order.
func (s *Server) requeue(seats []*conn) {
	for _, c := range seats {
		if c.closed() {
			continue
		}
		select {
		case s.lobby <- c:
		case <-s.stopped:
			return
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	select {
	case <-s.stopped:
		http.Error(w, "server stopped", http.StatusServiceUnavailable)
		return
	default:
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}

	c := newConn(ws, s.cfg.Clock, s.logger)
	c.start()

	name, err := s.awaitHello(c)
	if err != nil {
		s.logger.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("Handshake failed")
		_ = c.sendMessage(&protocol.Error{Code: protocol.CodeInvalidMessage, Message: err.Error()})
		c.shutdown()
		return
	}
	c.name = name
	logger := s.logger.With().Str("bot", name).Logger()

	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
	go func() {
		<-c.done
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
		logger.Info().Msg("Client disconnected")
	}()

	logger.Info().Str("remote", r.RemoteAddr).Msg("Client connected")
	select {
	case s.lobby <- c:
	case <-s.stopped:
		c.shutdown()
	}
}

func (s *Server) awaitHello(c *conn) (string, error) {
	timer := s.cfg.Clock.NewTimer(s.cfg.HelloTimeout, "hello")
	defer timer.Stop()

	select {
	case data := <-c.incoming:
		var hello protocol.Hello
		if err := protocol.Unmarshal(data, &hello); err != nil {
			return "", fmt.Errorf("expected hello: %w", err)
		}
		if hello.Name == "" {
			return "", errors.New("hello without a name")
		}
		return hello.Name, nil
	case <-c.done:
		return "", ErrConnClosed
	case <-timer.C:
		return "", fmt.Errorf("no hello within %v", s.cfg.HelloTimeout)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}
