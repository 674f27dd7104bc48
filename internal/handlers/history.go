package handlers

import (
	"context"
	"strconv"

	"kelasku/server/internal/middleware"
	"kelasku/server/internal/models"
	"kelasku/server/internal/store"
	"kelasku/server/internal/utils"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// GetHistory returns one backward page of a conversation's messages,
// newest-first within the page, keyed by an opaque cursor. Retrying the same
// cursor yields the same page.
func GetHistory(c *fiber.Ctx) error {
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

	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultPageSize)))
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}

	cursor, hasCursor, err := utils.DecodeCursor(c.Query("cursor"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid cursor",
		})
	}

	var cur *utils.Cursor
	if hasCursor {
		cur = &cursor
	}

	messages, hasMore, err := store.HistoryPage(context.Background(), conversationID, cur, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to load messages",
		})
	}

	if messages == nil {
		messages = []models.Message{}
	}

	// The next cursor points at the oldest message of this page
	nextCursor := ""
	if hasMore && len(messages) > 0 {
		oldest := messages[len(messages)-1]
		nextCursor = utils.Cursor{CreatedAt: oldest.CreatedAt, ID: oldest.ID}.Encode()
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"messages":   messages,
			"nextCursor": nextCursor,
			"hasMore":    hasMore,
		},
	})
}
