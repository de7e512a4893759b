package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/biosecret/todo-list/models"
	"github.com/biosecret/todo-list/store"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// SQLiteStore lưu flag dạng JSON text, merge thực hiện trong transaction
type SQLiteStore struct {
	db *sql.DB
}

// StartSQLite mở (hoặc tạo) file database SQLite
func StartSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("you must set your 'SQLITE_PATH' environmental variable")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	log.Info().Str("path", path).Msg("Using SQLite database")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	// Một connection để tránh lỗi "database is locked" khi ghi đồng thời
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		log.Warn().Err(err).Msg("Failed to enable WAL mode")
	}

	s := &SQLiteStore{db: db}
	if err := s.createTables(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createTables(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS user_flags (
		user_id TEXT NOT NULL,
		scope TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL DEFAULT '{}',
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, scope, key)
	);`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	// Ràng buộc UNIQUE của username là nguồn duy nhất quyết định trùng tên
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, username, password, created_at) VALUES (?, ?, ?, ?)",
		user.ID, user.Username, user.Password, user.CreatedAt.UTC(),
	)
	if isSQLiteUsernameConflict(err) {
		return ErrUsernameTaken
	}
	return err
}

func isSQLiteUsernameConflict(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) &&
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique &&
		strings.Contains(sqliteErr.Error(), "users.username")
}

func (s *SQLiteStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, password, created_at FROM users WHERE username = ?", username,
	).Scan(&user.ID, &user.Username, &user.Password, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, username, created_at FROM users ORDER BY created_at, rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *SQLiteStore) Get(ctx context.Context, userID string) (models.Collection, bool, error) {
	return s.readFlag(ctx, s.db, userID)
}

func (s *SQLiteStore) Set(ctx context.Context, userID string, patch models.Collection) (models.Collection, bool, error) {
	return s.update(ctx, userID, patch, nil)
}

func (s *SQLiteStore) Remove(ctx context.Context, userID string, ids ...string) (models.Collection, bool, error) {
	return s.update(ctx, userID, nil, ids)
}

func (s *SQLiteStore) Apply(ctx context.Context, userID string, set models.Collection, remove []string) (models.Collection, bool, error) {
	return s.update(ctx, userID, set, remove)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) update(ctx context.Context, userID string, set models.Collection, remove []string) (models.Collection, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	current, ok, err := s.readFlag(ctx, tx, userID)
	if err != nil || !ok {
		return nil, ok, err
	}

	next := applyPatch(current, set, remove)
	value, err := encodeCollection(next)
	if err != nil {
		return nil, false, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_flags (user_id, scope, key, value, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, scope, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, userID, store.Scope, store.FlagTodos, string(value))
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return next, true, nil
}

func (s *SQLiteStore) readFlag(ctx context.Context, q queryer, userID string) (models.Collection, bool, error) {
	var raw sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT f.value FROM users u
		LEFT JOIN user_flags f ON f.user_id = u.id AND f.scope = ? AND f.key = ?
		WHERE u.id = ?
	`, store.Scope, store.FlagTodos, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}

	todos, err := decodeCollection([]byte(raw.String))
	if err != nil {
		return nil, false, err
	}
	return todos, true, nil
}
