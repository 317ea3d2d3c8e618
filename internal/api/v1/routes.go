package v1

import (
	"taskhub/internal/api/v1/handlers"
	"taskhub/internal/middleware"
	"taskhub/internal/store"
	"taskhub/internal/token"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes wires the HTTP surface. Registration and login are
// public; everything else sits behind the bearer-token middleware.
func RegisterRoutes(app *fiber.App, h *handlers.Handler, tokens *token.Manager, st *store.Store) {
	authRequired := middleware.Authenticate(tokens, st)

	app.Post("/login", h.Login)

	users := app.Group("/users")
	users.Post("/", h.Register)
	users.Get("/", authRequired, h.ListUsers)
	users.Get("/:id", authRequired, h.GetUser)
	users.Put("/:id", authRequired, h.UpdateUser)
	users.Delete("/:id", authRequired, h.DeleteUser)

	tasks := app.Group("/tasks", authRequired)
	tasks.Post("/", h.CreateTask)
	tasks.Get("/", h.ListTasks)
	tasks.Get("/:id", h.GetTask)
	tasks.Put("/:id", h.UpdateTask)
	tasks.Delete("/:id", h.DeleteTask)

	app.Get("/ws", h.FeedUpgrade, h.Feed())
}
