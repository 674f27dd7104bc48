package handlers

import (
	"context"
	"log"

	"kelasku/server/internal/config"
	"kelasku/server/internal/middleware"
	"kelasku/server/internal/store"
	ws "kelasku/server/internal/websocket"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

var (
	// WSHub is the global WebSocket hub instance
	WSHub *ws.Hub

	// Cfg is the loaded server configuration
	Cfg *config.Config
)

// Init wires the handlers' shared state and starts the hub.
func Init(cfg *config.Config) {
	Cfg = cfg
	WSHub = ws.NewHub()
	go WSHub.Run()
	log.Println("✅ WebSocket Hub initialized")
}

// WebSocketUpgrade checks membership and that the request should be upgraded
func WebSocketUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{
			"success": false,
			"error":   "WebSocket upgrade required",
		})
	}

	if Cfg != nil && Cfg.LiveChannelDisabled {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"error":   "Live channel is disabled, use the REST endpoints",
		})
	}

	userID := middleware.GetUserID(c)
	conversationID := c.Params("conversationId")

	member, err := store.IsMember(context.Background(), conversationID, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}
	if !member {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "Not a member of this conversation",
		})
	}

	return c.Next()
}

// WebSocketHandler handles WebSocket connections
func WebSocketHandler(c *websocket.Conn) {
	userID := c.Locals("userID").(string)
	userName := c.Locals("userName").(string)
	role := middleware.RoleFromLocals(c.Locals("userRole"))
	conversationID := c.Params("conversationId")

	client := ws.NewClient(userID, userName, role, conversationID, c, WSHub)

	WSHub.Register <- client

	go client.WritePump()
	client.ReadPump() // This blocks until connection closes
}

// GetWebSocketStats returns live-channel connection statistics
func GetWebSocketStats(c *fiber.Ctx) error {
	if WSHub == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"error":   "WebSocket hub not initialized",
		})
	}

	conversationID := c.Params("conversationId")

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"connectedClients": WSHub.ConversationCount(conversationID),
		},
	})
}
