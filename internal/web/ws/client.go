package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mcoot/wordbattle/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound frame size
	maxMessageSize = 4096

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client is one websocket connection. The connection owns its send
// buffer; hubs only ever enqueue onto it.
type Client struct {
	id          string
	conn        *websocket.Conn
	send        chan []byte
	done        chan struct{}
	closeOnce   sync.Once
	connectedAt time.Time
	logger      *slog.Logger

	mu  sync.Mutex
	hub *Hub
}

// NewClient creates a client for an upgraded connection
func NewClient(conn *websocket.Conn, logger *slog.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		id:          id,
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		done:        make(chan struct{}),
		connectedAt: time.Now(),
		logger:      logger.With(slog.String("connection_id", id)),
	}
}

// ID returns the connection id
func (c *Client) ID() string {
	return c.id
}

// Send queues a message without blocking. Returns false if the client is
// gone or its buffer is full.
func (c *Client) Send(message []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- message:
		return true
	default:
		c.logger.Warn("ws message dropped - client buffer full")
		return false
	}
}

// subscribe moves the client onto the hub for code, leaving any other hub
func (c *Client) subscribe(hubs *HubManager, code model.RoomCode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hub != nil {
		if c.hub.roomCode == code {
			return
		}
		c.hub.Unregister(c)
		c.hub = nil
	}

	// A hub closed between lookup and register has already left the manager
	for {
		hub := hubs.GetOrCreateHub(code)
		if hub.Register(c) {
			c.hub = hub
			return
		}
	}
}

// unsubscribe leaves the current hub, if any
func (c *Client) unsubscribe() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hub != nil {
		c.hub.Unregister(c)
		c.hub = nil
	}
}

// subscribedTo returns the room code of the current hub
func (c *Client) subscribedTo() model.RoomCode {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hub == nil {
		return ""
	}
	return c.hub.roomCode
}

// close stops the write pump; safe to call more than once
func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// readPump reads frames until the connection fails and hands each one to
// handle. Frames are handled one at a time in arrival order.
func (c *Client) readPump(handle func(message []byte)) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("ws connection closed unexpectedly", slog.Any("error", err))
			}
			return
		}
		handle(message)
	}
}

// writePump drains the send buffer to the connection and keeps it alive
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("ws write failed", slog.Any("error", err))
				c.close()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}

		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
