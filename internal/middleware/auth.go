package middleware

import (
	"errors"
	"strings"

	"taskhub/internal/store"
	"taskhub/internal/token"
	"taskhub/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CurrentUserKey is the Locals key holding the authenticated *models.User.
const CurrentUserKey = "currentUser"

// Authenticate validates the bearer token and resolves the caller to a
// live user row. The row is loaded on every request so tokens issued to
// since-deleted users stop working immediately.
func Authenticate(tokens *token.Manager, st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Not authenticated"})
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Not authenticated"})
		}
		username, err := tokens.VerifyToken(parts[1])
		if err != nil {
			logger.SecurityLogger.Warn("Rejected token",
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Could not validate credentials"})
		}
		user, err := st.GetUserByUsername(c.Context(), username)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				logger.SecurityLogger.Warn("Token for unknown user",
					zap.String("username", username),
				)
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Could not validate credentials"})
			}
			logger.ErrorLogger.Error("Failed to resolve current user",
				zap.String("username", username),
				zap.Error(err),
			)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Internal server error"})
		}
		c.Locals(CurrentUserKey, user)
		return c.Next()
	}
}
