package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"kelasku/server/internal/database"
	"kelasku/server/internal/models"
	"kelasku/server/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

const AllowedFileExts = ".jpg,.jpeg,.png,.gif,.webp,.pdf,.doc,.docx,.xls,.xlsx,.txt,.zip"

const signedTokenPrefix = "fileurl:"

// UploadFile stores a multipart file and returns the metadata needed to
// construct a FILE-type message.
func UploadFile(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "No file uploaded",
		})
	}

	if file.Size > Cfg.MaxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("File size exceeds limit of %dMB (uploaded: %.2fMB)", Cfg.MaxFileSize/(1024*1024), float64(file.Size)/(1024*1024)),
		})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" || !strings.Contains(AllowedFileExts, ext) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("File extension %s not allowed", ext),
		})
	}

	if err := os.MkdirAll(Cfg.UploadDir, 0755); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to create upload directory",
		})
	}

	fileID := uuid.New().String()
	storedName := fmt.Sprintf("%s-%d%s", fileID, time.Now().Unix(), ext)
	fullPath := filepath.Join(Cfg.UploadDir, storedName)

	if err := c.SaveFile(file, fullPath); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to save file",
		})
	}

	mimeType := file.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	stored := &models.StoredFile{
		ID:       fileID,
		Name:     file.Filename,
		MimeType: mimeType,
		Size:     file.Size,
		Path:     fullPath,
	}
	if err := store.InsertFile(context.Background(), stored); err != nil {
		// Do not leave orphaned bytes behind a failed metadata row
		os.Remove(fullPath)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to record file",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"fileId":       stored.ID,
			"fileName":     stored.Name,
			"fileMimeType": stored.MimeType,
			"fileSize":     stored.Size,
		},
	})
}

// GetFileURL issues a short-lived signed URL for a stored file. The token is
// single-purpose and expires on its own; clients download through the URL
// rather than proxying bytes through an authenticated endpoint.
func GetFileURL(c *fiber.Ctx) error {
	fileID := c.Params("fileId")

	disposition := c.Query("disposition", "download")
	if disposition != "download" && disposition != "view" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid disposition. Must be view or download",
		})
	}

	if _, err := store.GetFile(context.Background(), fileID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "File not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	token := uuid.New().String()
	key := signedTokenPrefix + token
	value := fileID + ":" + disposition

	if err := database.Redis.Set(context.Background(), key, value, Cfg.SignedURLTTL).Err(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to sign URL",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"url":       "/files/" + token,
			"expiresIn": int(Cfg.SignedURLTTL.Seconds()),
		},
	})
}

// ServeSignedFile streams a file referenced by a signed token. The route is
// public: the token is the authorization.
func ServeSignedFile(c *fiber.Ctx) error {
	token := c.Params("token")

	value, err := database.Redis.Get(context.Background(), signedTokenPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Link expired or invalid",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to resolve link",
		})
	}

	fileID, disposition, _ := strings.Cut(value, ":")

	stored, err := store.GetFile(context.Background(), fileID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "File not found",
		})
	}

	if _, err := os.Stat(stored.Path); os.IsNotExist(err) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "File not found",
		})
	}

	c.Set("Content-Type", stored.MimeType)
	if disposition == "download" {
		c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", stored.Name))
	} else {
		c.Set("Content-Disposition", "inline")
	}

	return c.SendFile(stored.Path)
}
