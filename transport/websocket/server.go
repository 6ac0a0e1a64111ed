package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/pkg"
	"github.com/rocketscienceinc/gomoku-backend/internal/session"
)

const shutdownTimeout = 5 * time.Second

type uGame interface {
	CreateRoom(ctx context.Context, connID, roomID, name string) (session.Result, error)
	JoinRoom(ctx context.Context, connID, roomID, name string) (session.Result, error)
	PlaceMark(ctx context.Context, connID, roomID string, row, col int) (session.Result, error)
	Restart(ctx context.Context, connID, roomID string) (session.Result, error)
	Leave(ctx context.Context, connID, roomID string) (session.Result, error)

	Disconnect(ctx context.Context, connID string) []session.Result
}

type handlerFunc func(ctx context.Context, connID string, payload json.RawMessage) (session.Result, error)

// Server is the websocket dispatcher. It turns frames into commands for uGame;
// the rooms publish the resulting events through the hub.
type Server struct {
	logger   *slog.Logger
	hub      *Hub
	uGame    uGame
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, hub *Hub, uGame uGame) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		hub:    hub,
		uGame:  uGame,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionCreateRoom] = server.handleCreateRoom
	server.handlers[actionJoinRoom] = server.handleJoinRoom
	server.handlers[actionMakeMove] = server.handleMakeMove
	server.handlers[actionRestartGame] = server.handleRestartGame
	server.handlers[actionLeaveRoom] = server.handleLeaveRoom

	return server
}

// Handler serves the websocket endpoint on /ws.
func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveWS)

	return mux
}

// Start - starts WebSocket server and blocks until ctx is cancelled.
func (that *Server) Start(ctx context.Context, port string) error {
	log := that.logger.With("method", "Start")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("failed to shutdown server", "error", err)
		}

		that.Close()
	}()

	log.Info("websocket server started", "port", port)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveWS(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveWS")

	ws, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(that.logger, pkg.NewConnectionID(), ws)
	that.hub.register(c)

	log.Info("WebSocket connection established", "connID", c.connID)

	go c.writePump()

	// cleanup below must run even though the request is done
	ctx := context.WithoutCancel(req.Context())

	that.readLoop(ctx, c)

	that.hub.unregister(c)
	c.close()

	that.uGame.Disconnect(ctx, c.connID)

	log.Info("WebSocket connection closed", "connID", c.connID)
}

// Close drops every live connection. Their read loops end and the players leave their rooms.
func (that *Server) Close() {
	that.hub.closeAll()
}

// readLoop processes the frames of one connection in arrival order.
func (that *Server) readLoop(ctx context.Context, c *client) {
	log := that.logger.With("method", "readLoop", "connID", c.connID)

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("connection closed unexpectedly", "error", err)
			}
			return
		}

		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))

		that.process(ctx, c.connID, data)
	}
}

func (that *Server) process(ctx context.Context, connID string, data []byte) {
	log := that.logger.With("method", "process", "connID", connID)

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		log.Info("failed to unmarshal message", "error", err)
		that.hub.Reject(connID, fmt.Errorf("%w: invalid message", apperror.ErrBadRequest))
		return
	}

	handler, ok := that.handlers[message.Action]
	if !ok {
		log.Info("unknown action", "action", message.Action)
		that.hub.Reject(connID, fmt.Errorf("%w: unknown action %q", apperror.ErrBadRequest, message.Action))
		return
	}

	if err := that.invoke(ctx, handler, connID, &message); err != nil {
		log.Info("command rejected", "action", message.Action, "error", err)
		that.hub.Reject(connID, err)
	}
}

// invoke runs one handler and turns a panic into an internal error for the sender.
func (that *Server) invoke(ctx context.Context, handler handlerFunc, connID string, message *Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			that.logger.Error("recovered from panic",
				"action", message.Action, "connID", connID, "panic", r, "stack", string(debug.Stack()))

			err = apperror.ErrInternal
		}
	}()

	_, err = handler(ctx, connID, message.Payload)

	return err
}

func encode(event entity.Event) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	frame, err := json.Marshal(Message{Action: string(event.Type), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return frame, nil
}
