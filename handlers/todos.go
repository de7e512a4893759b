package handlers

import (
	"github.com/biosecret/todo-list/middleware"
	"github.com/biosecret/todo-list/models"
	"github.com/gofiber/fiber/v2"
)

// HandleAllTodos godoc
// @Summary Lấy todo của tất cả user
// @Tags todos
// @Security BearerAuth
// @Success 200 {object} models.Collection
// @Router /api/todos [get]
func (h *Handler) HandleAllTodos(c *fiber.Ctx) error {
	todos, err := h.todos.AllTodos(c.UserContext())
	if err != nil {
		return internalError(c, err)
	}
	return c.Status(200).JSON(todos)
}

// HandleMyTodos godoc
// @Summary Lấy todo của user đang đăng nhập
// @Tags todos
// @Security BearerAuth
// @Success 200 {object} models.Collection
// @Router /api/todos/me [get]
func (h *Handler) HandleMyTodos(c *fiber.Ctx) error {
	return h.userTodos(c, middleware.CurrentUserID(c))
}

// HandleUserTodos godoc
// @Summary Lấy todo của một user
// @Tags todos
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {object} models.Collection
// @Failure 404 {object} map[string]string
// @Router /api/users/{userId}/todos [get]
func (h *Handler) HandleUserTodos(c *fiber.Ctx) error {
	return h.userTodos(c, c.Params("userId"))
}

func (h *Handler) userTodos(c *fiber.Ctx, userID string) error {
	res, err := h.todos.TodosForUser(c.UserContext(), userID)
	if err != nil {
		return internalError(c, err)
	}
	if !res.Found {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	todos := res.Todos
	if todos == nil {
		todos = models.Collection{}
	}
	return c.Status(200).JSON(todos)
}

// HandleCreateTodo godoc
// @Summary Tạo todo cho user đang đăng nhập (body rỗng tạo todo trống)
// @Tags todos
// @Security BearerAuth
// @Param draft body models.Draft false "Todo mới"
// @Success 201 {object} models.ToDo
// @Router /api/todos [post]
func (h *Handler) HandleCreateTodo(c *fiber.Ctx) error {
	draft := models.Draft{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&draft); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
	}

	res, err := h.todos.CreateTodo(c.UserContext(), middleware.CurrentUserID(c), draft)
	if err != nil {
		return internalError(c, err)
	}
	if !res.Found {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}
	return c.Status(201).JSON(res.Todo)
}

// HandleUpdateTodo godoc
// @Summary Thay thế toàn bộ một todo
// @Tags todos
// @Security BearerAuth
// @Param id path string true "Todo ID"
// @Param todo body models.ToDo true "Todo thay thế"
// @Success 200 {object} models.ToDo
// @Failure 404 {object} map[string]string
// @Router /api/todos/{id} [put]
func (h *Handler) HandleUpdateTodo(c *fiber.Ctx) error {
	id := c.Params("id")
	uTodo := new(models.ToDo)

	// Parse request body
	if err := c.BodyParser(uTodo); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	res, err := h.todos.UpdateTodo(c.UserContext(), id, *uTodo)
	if err != nil {
		return internalError(c, err)
	}
	if !res.Found {
		return c.Status(404).JSON(fiber.Map{"error": "Todo not found"})
	}
	return c.Status(200).JSON(res.Todo)
}

// HandleDeleteTodo godoc
// @Summary Xoá một todo
// @Tags todos
// @Security BearerAuth
// @Param id path string true "Todo ID"
// @Success 200 {object} map[string]int
// @Failure 404 {object} map[string]string
// @Router /api/todos/{id} [delete]
func (h *Handler) HandleDeleteTodo(c *fiber.Ctx) error {
	id := c.Params("id")

	res, err := h.todos.DeleteTodo(c.UserContext(), id)
	if err != nil {
		return internalError(c, err)
	}
	if !res.Found {
		return c.Status(404).JSON(fiber.Map{"error": "Todo not found"})
	}
	return c.Status(200).JSON(fiber.Map{"deleted_count": 1})
}

// HandleUpdateUserTodos godoc
// @Summary Áp dụng patch kiểu flag lên toàn bộ todo của user ("-=id" để xoá)
// @Tags todos
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {object} models.Collection
// @Failure 404 {object} map[string]string
// @Router /api/users/{userId}/todos [patch]
func (h *Handler) HandleUpdateUserTodos(c *fiber.Ctx) error {
	patch, err := models.ParseFlagPatch(c.Body())
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	res, err := h.todos.UpdateUserTodos(c.UserContext(), c.Params("userId"), patch)
	if err != nil {
		return internalError(c, err)
	}
	if !res.Found {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}
	return c.Status(200).JSON(res.Todos)
}
