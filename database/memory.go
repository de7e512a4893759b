package database

import (
	"context"
	"sync"
	"time"

	"github.com/biosecret/todo-list/models"
)

// MemoryStore giữ user và flag trong bộ nhớ, dùng cho dev và test
type MemoryStore struct {
	mu    sync.RWMutex
	users []models.User
	flags map[string]models.Collection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{flags: map[string]models.Collection{}}
}

func (m *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == user.Username {
			return ErrUsernameTaken
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	m.users = append(m.users, *user)
	return nil
}

func (m *MemoryStore) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MemoryStore) ListUsers(_ context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		u.Password = ""
		users = append(users, u)
	}
	return users, nil
}

func (m *MemoryStore) Get(_ context.Context, userID string) (models.Collection, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.hasUser(userID) {
		return nil, false, nil
	}
	return m.flags[userID].Clone(), true, nil
}

func (m *MemoryStore) Set(_ context.Context, userID string, patch models.Collection) (models.Collection, bool, error) {
	return m.update(userID, patch, nil)
}

func (m *MemoryStore) Remove(_ context.Context, userID string, ids ...string) (models.Collection, bool, error) {
	return m.update(userID, nil, ids)
}

func (m *MemoryStore) Apply(_ context.Context, userID string, set models.Collection, remove []string) (models.Collection, bool, error) {
	return m.update(userID, set, remove)
}

func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) update(userID string, set models.Collection, remove []string) (models.Collection, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasUser(userID) {
		return nil, false, nil
	}
	next := applyPatch(m.flags[userID], set, remove)
	m.flags[userID] = next
	return next.Clone(), true, nil
}

func (m *MemoryStore) hasUser(userID string) bool {
	for _, u := range m.users {
		if u.ID == userID {
			return true
		}
	}
	return false
}
