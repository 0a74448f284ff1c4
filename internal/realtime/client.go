package realtime

import (
	"sync"

	"bpoc/internal/models"

	"github.com/gorilla/websocket"
)

// Client is one websocket connection belonging to a user.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	mu     sync.Mutex
	hook   func(models.Notification)
}

func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{UserID: userID, Conn: conn}
}

// SetSendHook replaces the default WebSocket sender (used in tests).
func (c *Client) SetSendHook(fn func(models.Notification)) {
	c.mu.Lock()
	c.hook = fn
	c.mu.Unlock()
}

func (c *Client) Send(n models.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hook != nil {
		c.hook(n)
		return nil
	}
	if c.Conn == nil {
		return nil
	}
	return c.Conn.WriteJSON(n)
}
