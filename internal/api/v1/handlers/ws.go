package handlers

import (
	"errors"

	"taskhub/internal/middleware"
	"taskhub/internal/models"
	"taskhub/internal/store"
	"taskhub/internal/ws"
	"taskhub/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// FeedUpgrade authenticates a task-feed connection before the protocol
// switch. Browsers cannot set headers on a WebSocket dial, so the token
// rides in the ?token= query parameter instead.
func (h *Handler) FeedUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"detail": "Upgrade required"})
	}

	tokenString := c.Query("token")
	if tokenString == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Not authenticated"})
	}

	username, err := h.tokens.VerifyToken(tokenString)
	if err != nil {
		logger.SecurityLogger.Warn("Rejected feed token", zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Could not validate credentials"})
	}

	user, err := h.store.GetUserByUsername(c.Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Could not validate credentials"})
		}
		logger.ErrorLogger.Error("Error resolving feed user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Internal server error"})
	}

	c.Locals(middleware.CurrentUserKey, user)
	return c.Next()
}

// Feed upgrades the connection and streams task events until the client
// goes away. Owners see their own tasks' events, admins see everything.
func (h *Handler) Feed() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		user := conn.Locals(middleware.CurrentUserKey).(*models.User)

		client := &ws.Client{
			UserID:  user.ID,
			IsAdmin: user.IsAdmin,
			Send:    make(chan []byte, 16),
		}
		h.hub.Register(client)
		defer h.hub.Unregister(client)

		go func() {
			for msg := range client.Send {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			}
		}()

		// Inbound frames are ignored; reading just detects disconnect.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	})
}
