package router

import (
	"github.com/biosecret/todo-list/handlers"
	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(app *fiber.App, h *handlers.Handler) {
	app.Get("/health", h.HandleHealthCheck)

	auth := app.Group("/auth")
	auth.Post("/register", h.RegisterHandler)
	auth.Post("/login", h.LoginHandler)

	// Token được ký và kiểm tra bằng cùng một secret của Handler
	api := app.Group("/api", h.JWTMiddleware())

	api.Get("/todos", h.HandleAllTodos)
	api.Post("/todos", h.HandleCreateTodo)
	api.Get("/todos/me", h.HandleMyTodos)
	api.Get("/todos/export", h.HandleExportTodos)
	api.Put("/todos/:id", h.HandleUpdateTodo)
	api.Delete("/todos/:id", h.HandleDeleteTodo)
	api.Get("/users/:userId/todos", h.HandleUserTodos)
	api.Patch("/users/:userId/todos", h.HandleUpdateUserTodos)

	api.Get("/sse", h.HandleSSE)
}
