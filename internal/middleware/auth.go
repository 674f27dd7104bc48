package middleware

import (
	"strings"

	"kelasku/server/internal/models"
	"kelasku/server/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates a JWT from the Authorization header or cookie
func AuthMiddleware(c *fiber.Ctx) error {
	tokenString := ""

	if auth := c.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		tokenString = strings.TrimPrefix(auth, "Bearer ")
	} else {
		tokenString = c.Cookies("token")
	}

	if tokenString == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Unauthorized - No token provided",
		})
	}

	claims, err := utils.ValidateToken(tokenString)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Unauthorized - Invalid token",
		})
	}

	c.Locals("userID", claims.UserID)
	c.Locals("userName", claims.Name)
	c.Locals("userRole", claims.Role)

	return c.Next()
}

// GetUserID gets user ID from context
func GetUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return ""
	}
	return userID
}

// GetUserName gets the display name from context
func GetUserName(c *fiber.Ctx) string {
	name, ok := c.Locals("userName").(string)
	if !ok {
		return ""
	}
	return name
}

// GetUserRole gets the role from context
func GetUserRole(c *fiber.Ctx) models.Role {
	return RoleFromLocals(c.Locals("userRole"))
}

// RoleFromLocals converts a raw locals value into a Role. Websocket handlers
// read locals off the upgraded connection rather than a fiber context.
func RoleFromLocals(v interface{}) models.Role {
	role, ok := v.(models.Role)
	if !ok {
		return ""
	}
	return role
}
