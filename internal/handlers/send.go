package handlers

import (
	"context"

	"kelasku/server/internal/middleware"
	"kelasku/server/internal/models"
	"kelasku/server/internal/store"

	"github.com/gofiber/fiber/v2"
)

// SendMessage is the durable REST send path, used as the fallback when a
// client's live channel is unavailable. The response body carries the
// authoritative, server-assigned message.
func SendMessage(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	userName := middleware.GetUserName(c)
	role := middleware.GetUserRole(c)
	conversationID := c.Params("conversationId")

	var draft models.Draft
	if err := c.BodyParser(&draft); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if draft.Type == "" {
		draft.Type = models.TypeText
	}
	if !draft.Type.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid message type",
		})
	}
	if draft.Type == models.TypeText && draft.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Content is required",
		})
	}
	if draft.Type == models.TypeFile && draft.FileID == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "File ID is required for file messages",
		})
	}
	if draft.Type.IsInfoCard() && !models.CanAuthorInfoCards(role) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "Role not permitted to send this message type",
		})
	}

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

	sender := store.Sender{ID: userID, Name: userName, Role: role}
	msg, err := store.InsertMessage(context.Background(), conversationID, sender, draft)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to send message",
		})
	}

	// The sender already holds the authoritative message via this response,
	// so their own socket is skipped.
	if WSHub != nil {
		WSHub.BroadcastMessage(msg, draft.ClientID, userID)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    msg,
	})
}
