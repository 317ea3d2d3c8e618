package handlers

import (
	"errors"

	"taskhub/internal/models"
	"taskhub/internal/store"
	"taskhub/internal/ws"
	"taskhub/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CreateTask inserts a task owned by the caller. Ownership cannot be
// assigned to anyone else and new tasks always start incomplete.
func (h *Handler) CreateTask(c *fiber.Ctx) error {
	caller := currentUser(c)

	type TaskRequest struct {
		Title       string  `json:"title" validate:"required"`
		Description *string `json:"description"`
	}

	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create task", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Bad request"})
	}

	if err := h.validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error in create task", zap.Error(err))
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"detail": err.Error()})
	}

	task, err := h.store.CreateTask(c.Context(), req.Title, req.Description, caller.ID)
	if err != nil {
		logger.ErrorLogger.Error("Error creating task", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Internal server error"})
	}

	h.hub.Publish(ws.EventTaskCreated, task)

	logger.AuditLogger.Info("Task created", zap.Int("task_id", task.ID), zap.Int("owner_id", caller.ID))
	return c.JSON(task)
}

// ListTasks returns a page of the caller's own tasks. Admins get their
// own tasks too, not everyone's.
func (h *Handler) ListTasks(c *fiber.Ctx) error {
	caller := currentUser(c)

	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", 100)

	tasks, err := h.store.ListTasks(c.Context(), caller.ID, skip, limit)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching tasks", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Internal server error"})
	}

	return c.JSON(tasks)
}

// loadTask fetches a task for the id routes, cache first. Existence is
// settled here, before any permission check, so an absent id is always
// 404 regardless of who asks.
func (h *Handler) loadTask(c *fiber.Ctx, id int) (*models.Task, error) {
	if task, ok := h.cache.GetTask(c.Context(), id); ok {
		return task, nil
	}
	task, err := h.store.GetTask(c.Context(), id)
	if err != nil {
		return nil, err
	}
	h.cache.SetTask(c.Context(), task)
	return task, nil
}

// GetTask returns one task. Owner only; admins do not bypass this check.
func (h *Handler) GetTask(c *fiber.Ctx) error {
	caller := currentUser(c)
	taskID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid task ID"})
	}

	task, err := h.loadTask(c, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Task not found"})
		}
		logger.ErrorLogger.Error("Error fetching task", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Internal server error"})
	}

	if task.OwnerID != caller.ID {
		logger.SecurityLogger.Warn("Forbidden task read",
			zap.Int("caller_id", caller.ID),
			zap.Int("task_id", taskID),
		)
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"detail": "Not authorized to view this task"})
	}

	return c.JSON(task)
}

// UpdateTask applies a partial update. Owner or admin.
func (h *Handler) UpdateTask(c *fiber.Ctx) error {
	caller := currentUser(c)
	taskID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid task ID"})
	}

	task, err := h.loadTask(c, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Task not found"})
		}
		logger.ErrorLogger.Error("Error fetching task", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Internal server error"})
	}

	if !caller.IsAdmin && task.OwnerID != caller.ID {
		logger.SecurityLogger.Warn("Forbidden task update",
			zap.Int("caller_id", caller.ID),
			zap.Int("task_id", taskID),
		)
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"detail": "Not authorized to update this task"})
	}

	type UpdateTaskRequest struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Completed   *bool   `json:"completed"`
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in update task", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Bad request"})
	}

	updated, err := h.store.UpdateTask(c.Context(), taskID, store.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Task not found"})
		}
		logger.ErrorLogger.Error("Error updating task", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Internal server error"})
	}

	h.cache.DelTask(c.Context(), taskID)
	h.cache.SetTask(c.Context(), updated)
	h.hub.Publish(ws.EventTaskUpdated, updated)

	logger.AuditLogger.Info("Task updated", zap.Int("task_id", taskID), zap.Int("caller_id", caller.ID))
	return c.JSON(updated)
}

// DeleteTask removes a task. Owner or admin.
func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	caller := currentUser(c)
	taskID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid task ID"})
	}

	task, err := h.loadTask(c, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Task not found"})
		}
		logger.ErrorLogger.Error("Error fetching task", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Internal server error"})
	}

	if !caller.IsAdmin && task.OwnerID != caller.ID {
		logger.SecurityLogger.Warn("Forbidden task delete",
			zap.Int("caller_id", caller.ID),
			zap.Int("task_id", taskID),
		)
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"detail": "Not authorized to delete this task"})
	}

	deleted, err := h.store.DeleteTask(c.Context(), taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Task not found"})
		}
		logger.ErrorLogger.Error("Error deleting task", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Internal server error"})
	}

	h.cache.DelTask(c.Context(), taskID)
	h.hub.Publish(ws.EventTaskDeleted, deleted)

	logger.AuditLogger.Info("Task deleted", zap.Int("task_id", taskID), zap.Int("caller_id", caller.ID))
	return c.JSON(fiber.Map{"detail": "Task deleted"})
}
