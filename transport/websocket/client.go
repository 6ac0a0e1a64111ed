package websocket

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	sendBufferSize = 64

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	maxMessageSize = 4096
)

// outFrame is a queued text frame. A frame with notBefore set is held back by the
// writer until then, along with everything queued after it.
type outFrame struct {
	data      []byte
	notBefore time.Time
}

// client is one websocket connection. Frames are written only by writePump.
type client struct {
	connID string
	ws     *websocket.Conn
	logger *slog.Logger

	send      chan outFrame
	closeOnce sync.Once
	done      chan struct{}
}

func newClient(logger *slog.Logger, connID string, ws *websocket.Conn) *client {
	return &client{
		connID: connID,
		ws:     ws,
		logger: logger.With("connID", connID),

		send: make(chan outFrame, sendBufferSize),
		done: make(chan struct{}),
	}
}

// enqueue hands a frame to the writer without blocking. A client whose buffer
// is full is closed.
func (that *client) enqueue(frame outFrame) {
	select {
	case <-that.done:
		return
	default:
	}

	select {
	case that.send <- frame:
	case <-that.done:
	default:
		that.logger.Warn("send buffer full, closing connection")
		that.close()
	}
}

func (that *client) close() {
	that.closeOnce.Do(func() {
		close(that.done)
		_ = that.ws.Close()
	})
}

func (that *client) writePump() {
	log := that.logger.With("method", "writePump")

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		that.close()
	}()

	for {
		select {
		case frame := <-that.send:
			if !that.wait(frame.notBefore) {
				return
			}

			_ = that.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.ws.WriteMessage(websocket.TextMessage, frame.data); err != nil {
				log.Debug("failed to write message", "error", err)
				return
			}
		case <-ticker.C:
			_ = that.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug("failed to write ping", "error", err)
				return
			}
		case <-that.done:
			return
		}
	}
}

// wait blocks until the given time. It reports false when the client closes first.
func (that *client) wait(until time.Time) bool {
	delay := time.Until(until)
	if delay <= 0 {
		return true
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-that.done:
		return false
	}
}
