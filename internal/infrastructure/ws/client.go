package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client is one live transport session. The relay never authenticates it;
// identity arrives later through join frames.
type Client struct {
	conn      *connWrapper
	send      chan *WSMessage
	done      chan struct{}
	closeOnce sync.Once
	ID        string `json:"id"`
}

func NewClient(conn *websocket.Conn, sendBuffer int) *Client {
	if sendBuffer <= 0 {
		sendBuffer = 64
	}
	return &Client{
		conn: newConnWrapper(conn),
		send: make(chan *WSMessage, sendBuffer), // buffered to avoid dead-locks on slow clients
		done: make(chan struct{}),
		ID:   uuid.NewString(),
	}
}

// shutdown releases the write pump. The send channel is never closed so a
// stale membership entry can never panic a broadcast.
func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c *Client) ReadPump(core *Core, pongWait time.Duration) {
	defer func() {
		core.Unregister() <- c
		_ = c.conn.Close()
	}()

	if pongWait > 0 {
		_ = c.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.conn.conn.SetPongHandler(func(string) error {
			return c.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
		})
	}

	for {
		_, raw, err := c.conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ws read error (client %s): %v", c.ID, err)
			}
			break
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			log.Printf("ws bad frame (client %s): %v", c.ID, err)
			continue
		}

		core.inbound <- inboundFrame{client: c, frame: frame}
	}
}

func (c *Client) WritePump(pingInterval, writeWait time.Duration) {
	if pingInterval <= 0 {
		pingInterval = 54 * time.Second
	}
	if writeWait <= 0 {
		writeWait = 10 * time.Second
	}

	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error (client %s): %v", c.ID, err)
				return
			}

		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, time.Now().Add(writeWait)); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}
