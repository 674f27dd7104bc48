package websocket

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"kelasku/server/internal/models"
)

// Hub maintains the set of active clients per conversation and broadcasts
// frames to them.
type Hub struct {
	// Conversations mapped to their connected clients, keyed by user ID
	rooms map[string]map[string]*Client

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	mu sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)
		case client := <-h.Unregister:
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()

	room, ok := h.rooms[client.ConversationID]
	if !ok {
		room = make(map[string]*Client)
		h.rooms[client.ConversationID] = room
	}

	// If the user already has a connection in this conversation, close the old one
	if existing, ok := room[client.UserID]; ok {
		close(existing.Send)
	}
	room[client.UserID] = client

	h.mu.Unlock()

	h.BroadcastSystem(client.ConversationID, SystemJoin,
		fmt.Sprintf("%s joined the conversation", client.Name))

	log.Printf("Client connected: %s (%s)", client.Name, client.ConversationID)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()

	room, ok := h.rooms[client.ConversationID]
	if !ok || room[client.UserID] != client {
		h.mu.Unlock()
		return
	}

	delete(room, client.UserID)
	if len(room) == 0 {
		delete(h.rooms, client.ConversationID)
	}
	close(client.Send)

	h.mu.Unlock()

	h.BroadcastSystem(client.ConversationID, SystemLeave,
		fmt.Sprintf("%s left the conversation", client.Name))

	log.Printf("Client disconnected: %s (%s)", client.Name, client.ConversationID)
}

// BroadcastMessage delivers a persisted message to every connected client of
// its conversation. excludeUserID skips one user's socket (used by the REST
// send path, whose caller already holds the authoritative message). clientID
// is echoed so the sender can reconcile an optimistic copy.
func (h *Hub) BroadcastMessage(msg *models.Message, clientID, excludeUserID string) {
	frame := Frame{Type: FrameMessage, ClientID: clientID, Message: msg}
	h.broadcast(msg.ConversationID, frame, excludeUserID)
}

// BroadcastSystem delivers an ephemeral system event to a conversation.
func (h *Hub) BroadcastSystem(conversationID string, kind SystemEventKind, text string) {
	frame := Frame{
		Type:   FrameSystem,
		System: &SystemEvent{Kind: kind, Text: text, At: time.Now().UTC()},
	}
	h.broadcast(conversationID, frame, "")
}

func (h *Hub) broadcast(conversationID string, frame Frame, excludeUserID string) {
	data, err := json.Marshal(frame)
	if err != nil {
		log.Printf("Failed to marshal frame: %v", err)
		return
	}

	// The echoed clientId is meaningful only to its sender; everyone else
	// receives the frame without it.
	otherData := data
	if frame.ClientID != "" {
		stripped := frame
		stripped.ClientID = ""
		if otherData, err = json.Marshal(stripped); err != nil {
			log.Printf("Failed to marshal frame: %v", err)
			return
		}
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for userID, client := range h.rooms[conversationID] {
		if userID == excludeUserID {
			continue
		}
		if !h.audienceAllows(frame, client) {
			continue
		}

		payload := otherData
		if frame.Message != nil && userID == frame.Message.SenderID {
			payload = data
		}

		select {
		case client.Send <- payload:
		default:
			log.Printf("Failed to send frame to client: %s", userID)
		}
	}
}

// audienceAllows narrows delivery of student-targeted messages: staff always
// receive them, a student only when they are the target. Guardianship links
// are resolved by the entity services, so guardians receive the frame and the
// client applies its own visibility check.
func (h *Hub) audienceAllows(frame Frame, client *Client) bool {
	if frame.Message == nil || frame.Message.TargetStudentID == nil {
		return true
	}
	if models.SenderTypeForRole(client.Role) == models.SenderAccount {
		return true
	}
	if client.Role == models.RoleStudent {
		return client.UserID == *frame.Message.TargetStudentID
	}
	return true
}

// ConversationCount returns the number of clients connected to a conversation.
func (h *Hub) ConversationCount(conversationID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[conversationID])
}
