package websocket

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Client is a single websocket connection. An authenticated client is
// attached to the hub's presence registry under its user id; an
// unauthenticated one (UserID == uuid.Nil) keeps the connection open but is
// never registered and its inbound events are ignored.
type Client struct {
	hub *Hub

	// UserID is uuid.Nil for unauthenticated connections.
	UserID uuid.UUID

	conn *websocket.Conn

	// Buffered channel of outbound payloads.
	send chan []byte
}

func NewClient(hub *Hub, userID uuid.UUID, conn *websocket.Conn) *Client {
	return &Client{
		hub:    hub,
		UserID: userID,
		conn:   conn,
		send:   make(chan []byte, 256),
	}
}

// Push queues a payload for delivery. It reports false when the client's
// send buffer is full, in which case the caller treats the event as dropped.
func (c *Client) Push(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// ReadPump pumps inbound frames from the connection to the hub dispatcher.
// It also detaches the client from presence when the connection dies, which
// is what flips the user offline for everyone else.
func (c *Client) ReadPump() {
	defer func() {
		if c.UserID != uuid.Nil {
			c.hub.Fanout.Detach(c.UserID, c)
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket: read error for user %s: %v", c.UserID, err)
			}
			break
		}
		if c.UserID == uuid.Nil {
			continue
		}
		c.hub.dispatch(c.UserID, message)
	}
}

// WritePump pumps queued payloads to the connection and keeps it alive with
// periodic pings. One goroutine per connection owns all writes.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
