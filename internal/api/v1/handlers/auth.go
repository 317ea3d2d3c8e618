package handlers

import (
	"errors"

	"taskhub/internal/store"
	"taskhub/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Register creates a new user account. Public endpoint.
func (h *Handler) Register(c *fiber.Ctx) error {
	type RegisterRequest struct {
		Username string `json:"username" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
		IsAdmin  bool   `json:"is_admin"`
	}

	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in register", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Bad request"})
	}

	if err := h.validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during register", zap.Error(err))
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"detail": err.Error()})
	}

	// Pre-check for a friendlier error; the unique constraint below is
	// still authoritative when two registrations race.
	if _, err := h.store.GetUserByUsername(c.Context(), req.Username); err == nil {
		logger.SecurityLogger.Warn("Duplicate username", zap.String("username", req.Username))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Username already registered"})
	} else if !errors.Is(err, store.ErrNotFound) {
		logger.ErrorLogger.Error("Error checking username", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Internal server error"})
	}

	hashedPassword, err := h.hasher.Hash(req.Password)
	if err != nil {
		logger.ErrorLogger.Error("Error hashing password", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Internal server error"})
	}

	user, err := h.store.CreateUser(c.Context(), req.Username, req.Email, hashedPassword, req.IsAdmin)
	if err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			logger.SecurityLogger.Warn("Duplicate username", zap.String("username", req.Username))
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Username already registered"})
		}
		logger.ErrorLogger.Error("Error creating user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Internal server error"})
	}

	logger.AuditLogger.Info("User registered", zap.Int("user_id", user.ID), zap.String("username", user.Username))
	return c.JSON(user)
}

// Login verifies credentials and issues a bearer token. The request
// body is form-encoded, not JSON.
func (h *Handler) Login(c *fiber.Ctx) error {
	type LoginRequest struct {
		Username string `form:"username" validate:"required"`
		Password string `form:"password" validate:"required"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in login", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Bad request"})
	}

	if err := h.validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during login", zap.Error(err))
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"detail": err.Error()})
	}

	user, err := h.store.GetUserByUsername(c.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.SecurityLogger.Warn("Login for unknown user", zap.String("username", req.Username))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Incorrect username or password"})
		}
		logger.ErrorLogger.Error("Error fetching user for login", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Internal server error"})
	}

	if !h.hasher.Verify(user.HashedPassword, req.Password) {
		logger.SecurityLogger.Warn("Invalid password", zap.String("username", req.Username))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Incorrect username or password"})
	}

	tokenString, err := h.tokens.CreateAccessToken(user.Username)
	if err != nil {
		logger.ErrorLogger.Error("Error generating token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Internal server error"})
	}

	logger.AuditLogger.Info("Login success", zap.Int("user_id", user.ID), zap.String("username", user.Username))
	return c.JSON(fiber.Map{
		"access_token": tokenString,
		"token_type":   "bearer",
	})
}
