package services

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum control message size allowed from peer
	maxMessageSize = 4 * 1024

	// Send buffer size
	sendBufferSize = 16
)

// FeedClient is one WebSocket subscriber of the live post listing.
type FeedClient struct {
	hub        *FeedHub
	conn       *websocket.Conn
	send       chan []byte
	remoteAddr string
}

func NewFeedClient(hub *FeedHub, conn *websocket.Conn, remoteAddr string) *FeedClient {
	return &FeedClient{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufferSize),
		remoteAddr: remoteAddr,
	}
}

// ReadPump consumes control messages until the peer goes away, then
// unregisters the client. Closing the connection is the explicit
// unsubscribe.
func (c *FeedClient) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket error: %v", err)
			}
			break
		}

		var msg FeedMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("invalid feed message from %s: %v", c.remoteAddr, err)
			continue
		}

		switch msg.Type {
		case "ping":
			c.sendPong()
		default:
			log.Printf("unknown feed message type: %s", msg.Type)
		}
	}
}

// WritePump pumps snapshots from the hub to the WebSocket connection.
func (c *FeedClient) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue drops the message when the client's buffer is full rather than
// blocking the hub; the next snapshot supersedes it anyway.
func (c *FeedClient) enqueue(message []byte) {
	select {
	case c.send <- message:
	default:
	}
}

func (c *FeedClient) sendError(errMsg string) {
	msgBytes, _ := json.Marshal(FeedMessage{Type: "error", Error: errMsg})
	c.enqueue(msgBytes)
}

func (c *FeedClient) sendPong() {
	msgBytes, _ := json.Marshal(FeedMessage{Type: "pong"})
	c.enqueue(msgBytes)
}
