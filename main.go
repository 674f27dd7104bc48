package main

import (
	"log"

	"kelasku/server/internal/config"
	"kelasku/server/internal/database"
	"kelasku/server/internal/handlers"
	"kelasku/server/internal/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	cfg := config.Load()

	// Connect to database
	if err := database.Connect(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Connect to redis (signed file-URL tokens)
	if err := database.ConnectRedis(cfg.RedisAddr, cfg.RedisDB); err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:   "Kelasku API v1.0",
		BodyLimit: int(cfg.MaxFileSize) + 1024*1024,
	})

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000",
		AllowCredentials: true,
	}))

	// Shared handler state + websocket hub
	handlers.Init(cfg)

	// Setup routes
	routes.SetupRoutes(app)

	log.Printf("🚀 Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
