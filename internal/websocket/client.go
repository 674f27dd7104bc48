package websocket

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/contrib/websocket"

	"kelasku/server/internal/models"
	"kelasku/server/internal/store"
)

// Client represents a WebSocket client connection scoped to one conversation.
type Client struct {
	UserID         string
	Name           string
	Role           models.Role
	ConversationID string
	Conn           *websocket.Conn
	Hub            *Hub
	Send           chan []byte
}

// NewClient creates a new WebSocket client
func NewClient(userID, name string, role models.Role, conversationID string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		UserID:         userID,
		Name:           name,
		Role:           role,
		ConversationID: conversationID,
		Conn:           conn,
		Hub:            hub,
		Send:           make(chan []byte, 256),
	}
}

// ReadPump handles incoming frames from the client
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		// Inbound frames mirror the send-endpoint draft shape
		var draft models.Draft
		if err := json.Unmarshal(data, &draft); err != nil {
			log.Printf("Failed to parse draft: %v", err)
			continue
		}

		c.handleDraft(draft)
	}
}

// WritePump handles outgoing frames to the client
func (c *Client) WritePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("Write error: %v", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleDraft validates, persists, and broadcasts a draft received over the
// live channel. The sender receives the broadcast too: that echo is the
// authoritative delivery for transport-path sends.
func (c *Client) handleDraft(draft models.Draft) {
	if draft.Type == "" {
		draft.Type = models.TypeText
	}
	if !draft.Type.Valid() {
		log.Printf("Rejected draft with unknown type %q from %s", draft.Type, c.UserID)
		return
	}
	if draft.Type == models.TypeText && draft.Content == "" {
		return
	}
	if draft.Type.IsInfoCard() && !models.CanAuthorInfoCards(c.Role) {
		log.Printf("Rejected %s card from role %s", draft.Type, c.Role)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sender := store.Sender{ID: c.UserID, Name: c.Name, Role: c.Role}
	msg, err := store.InsertMessage(ctx, c.ConversationID, sender, draft)
	if err != nil {
		log.Printf("Failed to persist live message: %v", err)
		return
	}

	c.Hub.BroadcastMessage(msg, draft.ClientID, "")
}
