package handlers

import (
	"context"

	"kelasku/server/internal/middleware"
	"kelasku/server/internal/models"
	"kelasku/server/internal/store"

	"github.com/gofiber/fiber/v2"
)

// GetMembers returns the participant list of a conversation.
func GetMembers(c *fiber.Ctx) error {
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

	members, err := store.ListMembers(context.Background(), conversationID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to load members",
		})
	}

	if members == nil {
		members = []models.Member{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"members": members,
		},
	})
}
