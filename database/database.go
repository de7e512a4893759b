package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/biosecret/todo-list/models"
	"github.com/biosecret/todo-list/store"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
)

// Backend là flag storage kèm danh bạ user
type Backend interface {
	store.FlagStore
	store.UserDirectory
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	Close() error
}

type Config struct {
	Backend      string
	PostgresURI  string
	SQLitePath   string
	GCPProjectID string
}

// Open khởi tạo backend theo cấu hình
func Open(ctx context.Context, cfg Config) (Backend, error) {
	var (
		b   Backend
		err error
	)
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "postgres":
		var s *PostgresStore
		s, err = StartPostgreSQL(ctx, cfg.PostgresURI)
		b = s
	case "sqlite":
		var s *SQLiteStore
		s, err = StartSQLite(ctx, cfg.SQLitePath)
		b = s
	case "datastore":
		var s *DatastoreStore
		s, err = StartDatastore(ctx, cfg.GCPProjectID)
		b = s
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func decodeCollection(raw []byte) (models.Collection, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	todos := models.Collection{}
	if err := json.Unmarshal(raw, &todos); err != nil {
		return nil, fmt.Errorf("decode todos flag: %w", err)
	}
	return todos, nil
}

func encodeCollection(todos models.Collection) ([]byte, error) {
	if todos == nil {
		todos = models.Collection{}
	}
	b, err := json.Marshal(todos)
	if err != nil {
		return nil, fmt.Errorf("encode todos flag: %w", err)
	}
	return b, nil
}

// applyPatch áp dụng set rồi remove lên bản sao của current
func applyPatch(current, set models.Collection, remove []string) models.Collection {
	next := current.Clone()
	if next == nil {
		next = models.Collection{}
	}
	next.Merge(set)
	for _, id := range remove {
		delete(next, id)
	}
	return next
}
