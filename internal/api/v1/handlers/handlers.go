// Package handlers holds the HTTP layer: request parsing, the
// per-endpoint authorization predicates, and status-code mapping.
// Persistence mechanics live in internal/store; this package is policy.
package handlers

import (
	"taskhub/internal/cache"
	"taskhub/internal/middleware"
	"taskhub/internal/models"
	"taskhub/internal/store"
	"taskhub/internal/token"
	"taskhub/internal/ws"
	"taskhub/pkg/hash"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Handler carries the process-scoped collaborators. Everything is
// injected at startup; there are no package-level singletons.
type Handler struct {
	store    *store.Store
	cache    *cache.Cache
	hasher   *hash.Hasher
	tokens   *token.Manager
	hub      *ws.Hub
	validate *validator.Validate
}

func New(st *store.Store, ca *cache.Cache, ha *hash.Hasher, tm *token.Manager, hub *ws.Hub) *Handler {
	return &Handler{
		store:    st,
		cache:    ca,
		hasher:   ha,
		tokens:   tm,
		hub:      hub,
		validate: validator.New(),
	}
}

// currentUser returns the user resolved by the auth middleware. Only
// valid on routes behind middleware.Authenticate.
func currentUser(c *fiber.Ctx) *models.User {
	return c.Locals(middleware.CurrentUserKey).(*models.User)
}
