package middleware

import (
	"runtime/debug"

	"taskhub/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrorHandler tags every request with an id, logs it, and converts
// panics into a 500 response instead of tearing the connection down.
func ErrorHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := uuid.NewString()
		c.Set("X-Request-Id", requestID)
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorLogger.Error("Recovered from panic",
					zap.Any("panic", r),
					zap.String("request_id", requestID),
					zap.String("stack", string(debug.Stack())),
				)
				c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"detail": "Internal server error",
				})
			}
		}()
		logger.RequestLogger.Info("Incoming request",
			zap.String("method", c.Method()),
			zap.String("url", c.OriginalURL()),
			zap.String("request_id", requestID),
		)
		return c.Next()
	}
}
