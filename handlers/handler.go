package handlers

import (
	"context"

	"github.com/biosecret/todo-list/events"
	"github.com/biosecret/todo-list/middleware"
	"github.com/biosecret/todo-list/models"
	"github.com/biosecret/todo-list/store"
	"github.com/gofiber/fiber/v2"
)

// Accounts lưu và tìm user cho đăng ký/đăng nhập
type Accounts interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Handler gom các phụ thuộc của HTTP handler
type Handler struct {
	todos     *store.TodoStore
	accounts  Accounts
	hub       *events.Hub
	jwtSecret []byte
}

func New(todos *store.TodoStore, accounts Accounts, hub *events.Hub, jwtSecret []byte) *Handler {
	return &Handler{
		todos:     todos,
		accounts:  accounts,
		hub:       hub,
		jwtSecret: jwtSecret,
	}
}

// JWTMiddleware kiểm tra token bằng secret đã dùng để ký trong LoginHandler
func (h *Handler) JWTMiddleware() fiber.Handler {
	return middleware.JWTMiddleware(h.jwtSecret)
}

// HandleHealthCheck godoc
// @Summary Health check
// @Tags health
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) HandleHealthCheck(c *fiber.Ctx) error {
	return c.Status(200).JSON(fiber.Map{"status": "ok"})
}

func internalError(c *fiber.Ctx, err error) error {
	return c.Status(500).JSON(fiber.Map{"error": err.Error()})
}
