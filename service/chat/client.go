package chat

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"marketgram/logger"
)

// Client represents one live client session on this gateway.
// Created unassociated on handshake; an associate event binds a user id.
// The Send queue is consumed by a single writer goroutine; everything else
// pushes through TrySend and never blocks on a slow peer.
type Client struct {
	ConnID string
	WS     *websocket.Conn
	Send   chan []byte

	mu         sync.Mutex
	userID     string
	associated bool
	closed     bool

	done chan struct{}
}

// NewClient creates a connection handle. ws may be nil in tests; TrySend
// still queues and the writer pump is simply never started.
func NewClient(connID string, ws *websocket.Conn, sendQueueSize int) *Client {
	return &Client{
		ConnID: connID,
		WS:     ws,
		Send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
	}
}

// Associate binds the user id to this connection handle.
func (c *Client) Associate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = userID
	c.associated = true
}

func (c *Client) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

func (c *Client) Associated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.associated
}

// TrySend queues a payload for the writer goroutine. Returns false when the
// connection is closed or its queue is full (slow client: drop, don't block).
func (c *Client) TrySend(payload []byte) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.mu.Unlock()

	select {
	case c.Send <- payload:
		return true
	default:
		return false
	}
}

// Close marks the handle closed and stops the writer pump. Idempotent.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()
	close(c.done)
}

// writePump owns all writes to the websocket: queued payloads, periodic
// pings, and the final close frame.
func (c *Client) writePump(pingPeriod, writeWait time.Duration) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.WS.Close()
	}()

	for {
		select {
		case payload := <-c.Send:
			_ = c.WS.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WS.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Debugf("[ws] write conn=%s err=%v", c.ConnID, err)
				return
			}
		case <-ticker.C:
			_ = c.WS.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WS.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.WS.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.WS.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
