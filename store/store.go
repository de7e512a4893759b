// Package store quản lý danh sách todo của từng user, lưu trong flag storage.
package store

import (
	"context"
	"fmt"

	"github.com/biosecret/todo-list/models"
	"github.com/biosecret/todo-list/utils"
	"github.com/rs/zerolog/log"
)

const (
	// Scope và FlagTodos xác định flag chứa todo trong dữ liệu của user
	Scope     = "todo-list"
	FlagTodos = "todos"
)

// FlagStore đọc/ghi collection todo của một user.
// Giá trị bool trả về cho biết user có tồn tại hay không.
type FlagStore interface {
	Get(ctx context.Context, userID string) (models.Collection, bool, error)
	// Set ghi đè từng key trong patch vào collection hiện tại
	Set(ctx context.Context, userID string, patch models.Collection) (models.Collection, bool, error)
	// Remove xoá các key; key không tồn tại bị bỏ qua
	Remove(ctx context.Context, userID string, ids ...string) (models.Collection, bool, error)
	// Apply ghi set rồi xoá remove trong cùng một lần ghi (tất cả hoặc không gì cả)
	Apply(ctx context.Context, userID string, set models.Collection, remove []string) (models.Collection, bool, error)
}

// UserDirectory liệt kê các user đã biết
type UserDirectory interface {
	ListUsers(ctx context.Context) ([]models.User, error)
}

// Notifier nhận thông báo sau mỗi thay đổi thành công
type Notifier interface {
	Notify(ctx context.Context, change models.Change)
}

type IDGenerator func(length int) (string, error)

// Result là kết quả của một thao tác trên user hoặc todo.
// Found == false nghĩa là không tìm thấy user/todo và không có gì được ghi.
type Result struct {
	Found bool
	Todo  *models.ToDo
	Todos models.Collection
}

type TodoStore struct {
	flags    FlagStore
	users    UserDirectory
	newID    IDGenerator
	notifier Notifier
}

type Option func(*TodoStore)

func WithIDGenerator(gen IDGenerator) Option {
	return func(s *TodoStore) { s.newID = gen }
}

func WithNotifier(n Notifier) Option {
	return func(s *TodoStore) { s.notifier = n }
}

func New(flags FlagStore, users UserDirectory, opts ...Option) *TodoStore {
	s := &TodoStore{
		flags: flags,
		users: users,
		newID: utils.GenerateRandomID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AllTodos gộp todo của tất cả user. Trùng id thì user duyệt sau thắng.
func (s *TodoStore) AllTodos(ctx context.Context) (models.Collection, error) {
	all, _, err := s.aggregate(ctx)
	return all, err
}

// TodosForUser trả về collection của user, nil nếu user chưa có dữ liệu
func (s *TodoStore) TodosForUser(ctx context.Context, userID string) (Result, error) {
	todos, ok, err := s.flags.Get(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("get todos for user %s: %w", userID, err)
	}
	return Result{Found: ok, Todos: todos}, nil
}

// CreateTodo tạo todo mới cho user với id ngẫu nhiên
func (s *TodoStore) CreateTodo(ctx context.Context, userID string, draft models.Draft) (Result, error) {
	id, err := s.newID(utils.DefaultIDLength)
	if err != nil {
		return Result{}, fmt.Errorf("generate todo id: %w", err)
	}

	todo := models.ToDo{
		ID:     id,
		Label:  draft.Label,
		UserID: userID,
	}
	if draft.IsDone != nil {
		todo.IsDone = *draft.IsDone
	}

	todos, ok, err := s.flags.Set(ctx, userID, models.Collection{id: todo})
	if err != nil {
		return Result{}, fmt.Errorf("create todo for user %s: %w", userID, err)
	}
	if !ok {
		log.Debug().Str("user_id", userID).Msg("create todo: user not found")
		return Result{}, nil
	}

	s.notify(ctx, models.Change{Type: models.ChangeCreated, UserID: userID, TodoID: id})
	return Result{Found: true, Todo: &todo, Todos: todos}, nil
}

// UpdateTodo thay thế toàn bộ entry tại todoID bằng data (không merge từng field)
func (s *TodoStore) UpdateTodo(ctx context.Context, todoID string, data models.ToDo) (Result, error) {
	ownerID, ok, err := s.owner(ctx, todoID)
	if err != nil || !ok {
		return Result{}, err
	}

	todos, ok, err := s.flags.Set(ctx, ownerID, models.Collection{todoID: data})
	if err != nil {
		return Result{}, fmt.Errorf("update todo %s: %w", todoID, err)
	}
	if !ok {
		return Result{}, nil
	}

	s.notify(ctx, models.Change{Type: models.ChangeUpdated, UserID: ownerID, TodoID: todoID})
	return Result{Found: true, Todo: &data, Todos: todos}, nil
}

// DeleteTodo xoá todo khỏi collection của chủ sở hữu
func (s *TodoStore) DeleteTodo(ctx context.Context, todoID string) (Result, error) {
	ownerID, ok, err := s.owner(ctx, todoID)
	if err != nil || !ok {
		return Result{}, err
	}

	todos, ok, err := s.flags.Remove(ctx, ownerID, todoID)
	if err != nil {
		return Result{}, fmt.Errorf("delete todo %s: %w", todoID, err)
	}
	if !ok {
		return Result{}, nil
	}

	s.notify(ctx, models.Change{Type: models.ChangeDeleted, UserID: ownerID, TodoID: todoID})
	return Result{Found: true, Todos: todos}, nil
}

// UpdateUserTodos áp dụng patch trực tiếp vào collection của user, không diễn giải.
// Set và Remove được ghi trong một lần gọi Apply.
func (s *TodoStore) UpdateUserTodos(ctx context.Context, userID string, patch models.Patch) (Result, error) {
	todos, ok, err := s.flags.Apply(ctx, userID, patch.Set, patch.Remove)
	if err != nil {
		return Result{}, fmt.Errorf("update todos for user %s: %w", userID, err)
	}
	if !ok {
		return Result{}, nil
	}

	s.notify(ctx, models.Change{Type: models.ChangeBulk, UserID: userID})
	return Result{Found: true, Todos: todos}, nil
}

// owner tìm user đang giữ todoID trong view tổng hợp
func (s *TodoStore) owner(ctx context.Context, todoID string) (string, bool, error) {
	_, owners, err := s.aggregate(ctx)
	if err != nil {
		return "", false, err
	}
	ownerID, ok := owners[todoID]
	if !ok {
		log.Debug().Str("todo_id", todoID).Msg("todo not found")
	}
	return ownerID, ok, nil
}

func (s *TodoStore) aggregate(ctx context.Context) (models.Collection, map[string]string, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list users: %w", err)
	}

	all := models.Collection{}
	owners := map[string]string{}
	for _, user := range users {
		todos, _, err := s.flags.Get(ctx, user.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("get todos for user %s: %w", user.ID, err)
		}
		for id, todo := range todos {
			all[id] = todo
			owners[id] = user.ID
		}
	}
	return all, owners, nil
}

func (s *TodoStore) notify(ctx context.Context, change models.Change) {
	log.Debug().Str("type", change.Type).Str("user_id", change.UserID).Str("todo_id", change.TodoID).Msg("todos changed")
	if s.notifier != nil {
		s.notifier.Notify(ctx, change)
	}
}
