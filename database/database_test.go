package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/biosecret/todo-list/models"
	"github.com/biosecret/todo-list/utils"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runBackendSuite kiểm tra hành vi chung của mọi backend
func runBackendSuite(t *testing.T, b Backend) {
	ctx := context.Background()

	newUser := func(t *testing.T, name string) models.User {
		id, err := utils.GenerateRandomID(utils.DefaultIDLength)
		require.NoError(t, err)
		u := models.User{ID: id, Username: name + "-" + id, Password: "hash"}
		require.NoError(t, b.CreateUser(ctx, &u))
		return u
	}

	t.Run("UnknownUser", func(t *testing.T) {
		todos, ok, err := b.Get(ctx, "missing")
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, todos)

		_, ok, err = b.Set(ctx, "missing", models.Collection{"a": {ID: "a"}})
		assert.NoError(t, err)
		assert.False(t, ok)

		_, ok, err = b.Remove(ctx, "missing", "a")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("EmptyFlag", func(t *testing.T) {
		u := newUser(t, "empty")
		todos, ok, err := b.Get(ctx, u.ID)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, todos)
	})

	t.Run("SetMergesKeysAndReplacesEntries", func(t *testing.T) {
		u := newUser(t, "merge")
		_, ok, err := b.Set(ctx, u.ID, models.Collection{
			"a": {ID: "a", Label: "first", UserID: u.ID},
			"b": {ID: "b", Label: "second", UserID: u.ID},
		})
		require.NoError(t, err)
		require.True(t, ok)

		todos, ok, err := b.Set(ctx, u.ID, models.Collection{"a": {Label: "replaced"}})
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, models.ToDo{Label: "replaced"}, todos["a"])
		assert.Equal(t, "second", todos["b"].Label)

		stored, _, err := b.Get(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, todos, stored)
	})

	t.Run("RemoveDeletesKeys", func(t *testing.T) {
		u := newUser(t, "remove")
		_, _, err := b.Set(ctx, u.ID, models.Collection{"a": {ID: "a"}, "b": {ID: "b"}})
		require.NoError(t, err)

		todos, ok, err := b.Remove(ctx, u.ID, "a", "not-there")
		require.NoError(t, err)
		require.True(t, ok)
		assert.NotContains(t, todos, "a")
		assert.Contains(t, todos, "b")
	})

	t.Run("ApplySetsAndRemovesTogether", func(t *testing.T) {
		u := newUser(t, "apply")
		_, _, err := b.Set(ctx, u.ID, models.Collection{"a": {ID: "a"}, "b": {ID: "b"}})
		require.NoError(t, err)

		todos, ok, err := b.Apply(ctx, u.ID, models.Collection{"a": {ID: "a", IsDone: true}}, []string{"b"})
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, models.Collection{"a": {ID: "a", IsDone: true}}, todos)

		stored, _, err := b.Get(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, todos, stored)

		_, ok, err = b.Apply(ctx, "missing", models.Collection{"a": {}}, []string{"b"})
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("ConcurrentRegistrationSameUsername", func(t *testing.T) {
		id, err := utils.GenerateRandomID(utils.DefaultIDLength)
		require.NoError(t, err)
		username := "race-" + id

		const n = 8
		errs := make([]error, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = b.CreateUser(ctx, &models.User{
					ID:       fmt.Sprintf("%s-%d", id, i),
					Username: username,
					Password: "hash",
				})
			}(i)
		}
		wg.Wait()

		created := 0
		for _, err := range errs {
			if err == nil {
				created++
				continue
			}
			assert.ErrorIs(t, err, ErrUsernameTaken)
		}
		assert.Equal(t, 1, created)

		users, err := b.ListUsers(ctx)
		require.NoError(t, err)
		matching := 0
		for _, listed := range users {
			if listed.Username == username {
				matching++
			}
		}
		assert.Equal(t, 1, matching)
	})

	t.Run("Users", func(t *testing.T) {
		u := newUser(t, "lookup")

		found, err := b.FindUserByUsername(ctx, u.Username)
		require.NoError(t, err)
		assert.Equal(t, u.ID, found.ID)
		assert.Equal(t, "hash", found.Password)

		_, err = b.FindUserByUsername(ctx, "nobody-"+u.ID)
		assert.ErrorIs(t, err, ErrUserNotFound)

		dup := models.User{ID: u.ID + "x", Username: u.Username, Password: "hash"}
		assert.ErrorIs(t, b.CreateUser(ctx, &dup), ErrUsernameTaken)

		users, err := b.ListUsers(ctx)
		require.NoError(t, err)
		ids := []string{}
		for _, listed := range users {
			ids = append(ids, listed.ID)
		}
		assert.Contains(t, ids, u.ID)
	})
}

func TestMemoryStore(t *testing.T) {
	runBackendSuite(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	s, err := StartSQLite(context.Background(), filepath.Join(t.TempDir(), "todos.db"))
	require.NoError(t, err)
	defer s.Close()

	runBackendSuite(t, s)
}

func TestPostgresStore(t *testing.T) {
	uri := os.Getenv("POSTGRESQL_URI")
	if uri == "" {
		t.Skip("POSTGRESQL_URI not set")
	}
	s, err := StartPostgreSQL(context.Background(), uri)
	require.NoError(t, err)
	defer s.Close()

	runBackendSuite(t, s)
}

func TestDatastoreStore(t *testing.T) {
	if os.Getenv("DATASTORE_EMULATOR_HOST") == "" {
		t.Skip("DATASTORE_EMULATOR_HOST not set")
	}
	s, err := StartDatastore(context.Background(), "todo-list-test")
	require.NoError(t, err)
	defer s.Close()

	runBackendSuite(t, s)
}

func TestOpen(t *testing.T) {
	b, err := Open(context.Background(), Config{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, b)

	_, err = Open(context.Background(), Config{Backend: "redis"})
	assert.Error(t, err)

	_, err = Open(context.Background(), Config{Backend: "postgres"})
	assert.Error(t, err)
}

func TestApplyPatchDoesNotMutateCurrent(t *testing.T) {
	current := models.Collection{"a": {ID: "a"}}
	next := applyPatch(current, models.Collection{"b": {ID: "b"}}, []string{"a"})

	assert.Equal(t, models.Collection{"b": {ID: "b"}}, next)
	assert.Equal(t, models.Collection{"a": {ID: "a"}}, current)
}

func TestIsUsernameConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"username unique", &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}, true},
		{"wrapped", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}), true},
		{"duplicate id", &pgconn.PgError{Code: "23505", ConstraintName: "users_pkey"}, false},
		{"other code", &pgconn.PgError{Code: "23502", ConstraintName: "users_username_key"}, false},
		{"plain error", errors.New("duplicate key value violates unique constraint"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUsernameConflict(tt.err))
		})
	}
}

func TestSQLiteDuplicateIDIsNotUsernameTaken(t *testing.T) {
	ctx := context.Background()
	s, err := StartSQLite(ctx, filepath.Join(t.TempDir(), "todos.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.CreateUser(ctx, &models.User{ID: "u1", Username: "first", Password: "hash"}))

	err = s.CreateUser(ctx, &models.User{ID: "u1", Username: "second", Password: "hash"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUsernameTaken)
	var sqliteErr sqlite3.Error
	assert.ErrorAs(t, err, &sqliteErr)

	err = s.CreateUser(ctx, &models.User{ID: "u2", Username: "first", Password: "hash"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}
