package handlers

import (
	"fmt"
	"sort"

	"github.com/biosecret/todo-list/models"
	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Todos"

// HandleExportTodos godoc
// @Summary Xuất toàn bộ todo ra file Excel
// @Tags todos
// @Security BearerAuth
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router /api/todos/export [get]
func (h *Handler) HandleExportTodos(c *fiber.Ctx) error {
	todos, err := h.todos.AllTodos(c.UserContext())
	if err != nil {
		return internalError(c, err)
	}

	f, err := buildWorkbook(todos)
	if err != nil {
		return internalError(c, err)
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return internalError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="todos.xlsx"`)
	return c.Status(200).Send(buf.Bytes())
}

// buildWorkbook ghi mỗi todo một dòng, sắp theo user rồi id
func buildWorkbook(todos models.Collection) (*excelize.File, error) {
	rows := make([]models.ToDo, 0, len(todos))
	for id, todo := range todos {
		if todo.ID == "" {
			todo.ID = id
		}
		rows = append(rows, todo)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].UserID != rows[j].UserID {
			return rows[i].UserID < rows[j].UserID
		}
		return rows[i].ID < rows[j].ID
	})

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		f.Close()
		return nil, err
	}

	header := []interface{}{"ID", "Label", "Done", "User"}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}
	for i, todo := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		row := []interface{}{todo.ID, todo.Label, todo.IsDone, todo.UserID}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return f, nil
}
