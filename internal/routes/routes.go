package routes

import (
	"kelasku/server/internal/handlers"
	"kelasku/server/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App) {
	// API v1 group
	api := app.Group("/api/v1")

	// Health check (public)
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Kelasku API is running",
		})
	})

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/login", middleware.StrictRateLimiter(), handlers.Login)
	auth.Get("/me", middleware.AuthMiddleware, handlers.GetMe)

	// Conversation routes (protected)
	conversations := api.Group("/conversations", middleware.AuthMiddleware)
	conversations.Get("/:conversationId/messages", handlers.GetHistory)
	conversations.Post("/:conversationId/messages", handlers.SendMessage)
	conversations.Get("/:conversationId/members", handlers.GetMembers)

	// Live channel (protected)
	conversations.Get("/:conversationId/ws", handlers.WebSocketUpgrade, websocket.New(handlers.WebSocketHandler))
	conversations.Get("/:conversationId/ws/stats", handlers.GetWebSocketStats)

	// File routes (protected)
	files := api.Group("/files", middleware.AuthMiddleware)
	files.Post("/", middleware.UploadRateLimiter(), handlers.UploadFile)
	files.Get("/:fileId/url", handlers.GetFileURL)

	// Signed file delivery (public, token is the authorization)
	app.Get("/files/:token", handlers.ServeSignedFile)
}
