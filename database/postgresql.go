package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/biosecret/todo-list/models"
	"github.com/biosecret/todo-list/store"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver cho database/sql
	"github.com/rs/zerolog/log"
)

const (
	pgUniqueViolation  = "23505"
	usernameConstraint = "users_username_key"
)

// PostgresStore lưu flag của user dưới dạng JSONB
type PostgresStore struct {
	db *sql.DB
}

// StartPostgreSQL khởi tạo kết nối với PostgreSQL và tạo bảng nếu chưa tồn tại
func StartPostgreSQL(ctx context.Context, uri string) (*PostgresStore, error) {
	if uri == "" {
		return nil, errors.New("you must set your 'POSTGRESQL_URI' environmental variable")
	}

	db, err := sql.Open("pgx", uri)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot connect to PostgreSQL: %w", err)
	}

	log.Info().Msg("Connected to PostgreSQL successfully")

	s := &PostgresStore{db: db}
	if err := s.createTables(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// createTables tạo bảng nếu chưa tồn tại
func (s *PostgresStore) createTables(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(32) PRIMARY KEY,
		username VARCHAR(255) UNIQUE NOT NULL,
		password TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS user_flags (
		user_id VARCHAR(32) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		scope VARCHAR(64) NOT NULL,
		key VARCHAR(64) NOT NULL,
		value JSONB NOT NULL DEFAULT '{}'::jsonb,
		updated_at TIMESTAMP DEFAULT NOW(),
		PRIMARY KEY (user_id, scope, key)
	)
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return err
	}

	log.Info().Msg("Tables created or already exist")
	return nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, username, password, created_at) VALUES ($1, $2, $3, $4)",
		user.ID, user.Username, user.Password, user.CreatedAt,
	)
	if err != nil {
		if isUsernameConflict(err) {
			return ErrUsernameTaken
		}
		return err
	}
	return nil
}

func (s *PostgresStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, password, created_at FROM users WHERE username = $1", username,
	).Scan(&user.ID, &user.Username, &user.Password, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, username, created_at FROM users ORDER BY created_at, id")
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

func (s *PostgresStore) Get(ctx context.Context, userID string) (models.Collection, bool, error) {
	return readFlag(ctx, s.db, userID)
}

func (s *PostgresStore) Set(ctx context.Context, userID string, patch models.Collection) (models.Collection, bool, error) {
	return s.Apply(ctx, userID, patch, nil)
}

func (s *PostgresStore) Remove(ctx context.Context, userID string, ids ...string) (models.Collection, bool, error) {
	return s.Apply(ctx, userID, nil, ids)
}

// Apply ghi set bằng toán tử || của JSONB (key trùng bị thay thế toàn bộ)
// rồi xoá các key trong remove, tất cả trong một câu lệnh
func (s *PostgresStore) Apply(ctx context.Context, userID string, set models.Collection, remove []string) (models.Collection, bool, error) {
	value, err := encodeCollection(set)
	if err != nil {
		return nil, false, err
	}
	if remove == nil {
		remove = []string{}
	}
	keys, err := json.Marshal(remove)
	if err != nil {
		return nil, false, fmt.Errorf("encode removed keys: %w", err)
	}

	var raw []byte
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO user_flags (user_id, scope, key, value)
		SELECT id, $2, $3, $4::jsonb - ARRAY(SELECT jsonb_array_elements_text($5::jsonb)) FROM users WHERE id = $1
		ON CONFLICT (user_id, scope, key)
		DO UPDATE SET
			value = (user_flags.value || EXCLUDED.value) - ARRAY(SELECT jsonb_array_elements_text($5::jsonb)),
			updated_at = NOW()
		RETURNING value
	`, userID, store.Scope, store.FlagTodos, string(value), string(keys)).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}

	todos, err := decodeCollection(raw)
	if err != nil {
		return nil, false, err
	}
	return todos, true, nil
}

// ClosePostgreSQL đóng kết nối với PostgreSQL
func (s *PostgresStore) Close() error {
	if err := s.db.Close(); err != nil {
		return err
	}
	log.Info().Msg("Database connection closed")
	return nil
}

// isUsernameConflict chỉ nhận vi phạm UNIQUE của cột username, không phải trùng id
func isUsernameConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == pgUniqueViolation &&
		pgErr.ConstraintName == usernameConstraint
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// readFlag đọc flag todos; không có hàng nào nghĩa là user không tồn tại
func readFlag(ctx context.Context, q queryer, userID string) (models.Collection, bool, error) {
	var raw []byte
	err := q.QueryRowContext(ctx, `
		SELECT f.value FROM users u
		LEFT JOIN user_flags f ON f.user_id = u.id AND f.scope = $2 AND f.key = $3
		WHERE u.id = $1
	`, userID, store.Scope, store.FlagTodos).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}

	todos, err := decodeCollection(raw)
	if err != nil {
		return nil, false, err
	}
	return todos, true, nil
}
