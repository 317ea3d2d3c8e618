package handlers

import (
	"errors"

	"taskhub/internal/store"
	"taskhub/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ListUsers returns a page of users. Admin only.
func (h *Handler) ListUsers(c *fiber.Ctx) error {
	caller := currentUser(c)
	if !caller.IsAdmin {
		logger.SecurityLogger.Warn("Forbidden user list", zap.Int("caller_id", caller.ID))
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"detail": "Admin access required"})
	}

	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", 100)

	users, err := h.store.ListUsers(c.Context(), skip, limit)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching users", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Internal server error"})
	}

	return c.JSON(users)
}

// GetUser returns one user. The caller must be that user or an admin;
// the permission check runs before the lookup, so a forbidden id yields
// 403 whether or not it exists.
func (h *Handler) GetUser(c *fiber.Ctx) error {
	caller := currentUser(c)
	targetID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid user ID"})
	}

	if !caller.IsAdmin && caller.ID != targetID {
		logger.SecurityLogger.Warn("Forbidden user read",
			zap.Int("caller_id", caller.ID),
			zap.Int("target_id", targetID),
		)
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"detail": "Not authorized to view this user"})
	}

	if user, ok := h.cache.GetUser(c.Context(), targetID); ok {
		return c.JSON(user)
	}

	user, err := h.store.GetUser(c.Context(), targetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "User not found"})
		}
		logger.ErrorLogger.Error("Error fetching user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Internal server error"})
	}

	h.cache.SetUser(c.Context(), user)
	return c.JSON(user)
}

// UpdateUser applies a partial update. Fields absent from the body are
// left untouched. Only admins may change the admin flag.
func (h *Handler) UpdateUser(c *fiber.Ctx) error {
	caller := currentUser(c)
	targetID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid user ID"})
	}

	if !caller.IsAdmin && caller.ID != targetID {
		logger.SecurityLogger.Warn("Forbidden user update",
			zap.Int("caller_id", caller.ID),
			zap.Int("target_id", targetID),
		)
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"detail": "Not authorized to update this user"})
	}

	type UpdateUserRequest struct {
		Email    *string `json:"email"`
		Password *string `json:"password"`
		IsAdmin  *bool   `json:"is_admin"`
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in update user", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Bad request"})
	}

	if req.IsAdmin != nil && !caller.IsAdmin {
		logger.SecurityLogger.Warn("Admin flag change by non-admin",
			zap.Int("caller_id", caller.ID),
			zap.Int("target_id", targetID),
		)
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"detail": "Not authorized to change admin status"})
	}

	patch := store.UserPatch{Email: req.Email, IsAdmin: req.IsAdmin}
	if req.Password != nil {
		hashedPassword, err := h.hasher.Hash(*req.Password)
		if err != nil {
			logger.ErrorLogger.Error("Error hashing password", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Internal server error"})
		}
		patch.HashedPassword = &hashedPassword
	}

	user, err := h.store.UpdateUser(c.Context(), targetID, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "User not found"})
		}
		logger.ErrorLogger.Error("Error updating user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Internal server error"})
	}

	h.cache.DelUser(c.Context(), targetID)
	h.cache.SetUser(c.Context(), user)

	logger.AuditLogger.Info("User updated", zap.Int("user_id", targetID), zap.Int("caller_id", caller.ID))
	return c.JSON(user)
}

// DeleteUser removes a user and, through the schema's cascade, their tasks.
func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	caller := currentUser(c)
	targetID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid user ID"})
	}

	if !caller.IsAdmin && caller.ID != targetID {
		logger.SecurityLogger.Warn("Forbidden user delete",
			zap.Int("caller_id", caller.ID),
			zap.Int("target_id", targetID),
		)
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"detail": "Not authorized to delete this user"})
	}

	if _, err := h.store.DeleteUser(c.Context(), targetID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "User not found"})
		}
		logger.ErrorLogger.Error("Error deleting user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Internal server error"})
	}

	h.cache.DelUser(c.Context(), targetID)

	logger.AuditLogger.Info("User deleted", zap.Int("user_id", targetID), zap.Int("caller_id", caller.ID))
	return c.JSON(fiber.Map{"detail": "User deleted"})
}
