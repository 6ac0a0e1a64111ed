package websocket

import (
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/session"
)

type HubOption func(*Hub)

// WithStartDelay holds back the game start notification in each recipient's writer.
func WithStartDelay(delay time.Duration) HubOption {
	return func(h *Hub) {
		h.startDelay = delay
	}
}

// Hub owns the live connections and fans room results out to them. Publish is
// called with the room lock held, so it only queues frames and never blocks.
type Hub struct {
	logger *slog.Logger

	startDelay time.Duration

	connectionsMutex sync.RWMutex
	connections      map[string]*client
}

func NewHub(logger *slog.Logger, opts ...HubOption) *Hub {
	hub := &Hub{
		logger: logger.With("component", "hub"),

		connections: make(map[string]*client),
	}

	for _, opt := range opts {
		opt(hub)
	}

	return hub
}

// Publish queues the events of res for their recipients in order.
func (that *Hub) Publish(res session.Result) {
	log := that.logger.With("method", "Publish", "roomID", res.RoomID)

	for _, delivery := range res.Deliveries {
		data, err := encode(delivery.Event)
		if err != nil {
			log.Error("failed to encode event", "event", delivery.Event.Type, "error", err)
			continue
		}

		frame := outFrame{data: data}
		if delivery.Event.Type == entity.EventGameStarted && that.startDelay > 0 {
			frame.notBefore = time.Now().Add(that.startDelay)
		}

		for _, connID := range delivery.Recipients(res.Sender, res.Members) {
			that.sendTo(connID, frame)
		}
	}
}

// Reject tells connID why its command failed.
func (that *Hub) Reject(connID string, err error) {
	data, encErr := encode(entity.NewRejection(err))
	if encErr != nil {
		that.logger.Error("failed to encode rejection", "error", encErr)
		return
	}

	that.sendTo(connID, outFrame{data: data})
}

func (that *Hub) sendTo(connID string, frame outFrame) {
	that.connectionsMutex.RLock()
	c, ok := that.connections[connID]
	that.connectionsMutex.RUnlock()

	if !ok {
		that.logger.Debug("connection not found", "connID", connID)
		return
	}

	c.enqueue(frame)
}

func (that *Hub) register(c *client) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	that.connections[c.connID] = c
}

func (that *Hub) unregister(c *client) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	delete(that.connections, c.connID)
}

func (that *Hub) closeAll() {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	for _, c := range that.connections {
		c.close()
	}
}
