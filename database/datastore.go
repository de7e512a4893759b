package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/datastore"
	"github.com/biosecret/todo-list/models"
	"github.com/biosecret/todo-list/store"
	"github.com/rs/zerolog/log"
)

const (
	KindUser     = "User"
	KindUsername = "Username"
	KindUserFlag = "UserFlag"
)

// Đăng ký trùng tên đồng thời sẽ tranh chấp cùng entity Username;
// lần thử lại sau đó thấy entity và trả về ErrUsernameTaken
const registerAttempts = 10

type dsUser struct {
	Username  string    `datastore:"username"`
	Password  string    `datastore:"password,noindex"`
	CreatedAt time.Time `datastore:"created_at"`
}

// dsUsername giữ chỗ một username cho user sở hữu nó
type dsUsername struct {
	UserID string `datastore:"user_id,noindex"`
}

// Flag là con (ancestor) của entity User
type dsFlag struct {
	Value     []byte    `datastore:"value,noindex"`
	UpdatedAt time.Time `datastore:"updated_at"`
}

// DatastoreStore lưu user và flag trên Google Cloud Datastore
type DatastoreStore struct {
	ds *datastore.Client
}

// StartDatastore tạo client Datastore.
// Client tự nhận DATASTORE_EMULATOR_HOST khi chạy với emulator.
func StartDatastore(ctx context.Context, projectID string) (*DatastoreStore, error) {
	if projectID == "" {
		return nil, errors.New("you must set your 'GCP_PROJECT_ID' environmental variable")
	}
	if emulatorHost := os.Getenv("DATASTORE_EMULATOR_HOST"); emulatorHost != "" {
		log.Info().Str("host", emulatorHost).Msg("Initializing Datastore client against emulator")
	}

	ds, err := datastore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create datastore client: %w", err)
	}
	return &DatastoreStore{ds: ds}, nil
}

func userKey(userID string) *datastore.Key {
	return datastore.NameKey(KindUser, userID, nil)
}

func usernameKey(username string) *datastore.Key {
	return datastore.NameKey(KindUsername, username, nil)
}

func flagKey(userID string) *datastore.Key {
	return datastore.NameKey(KindUserFlag, store.Scope+"."+store.FlagTodos, userKey(userID))
}

// CreateUser giữ username duy nhất bằng entity Username (key = username),
// kiểm tra và ghi trong cùng một transaction
func (s *DatastoreStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	_, err := s.ds.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		var claim dsUsername
		err := tx.Get(usernameKey(user.Username), &claim)
		if err == nil {
			return ErrUsernameTaken
		}
		if !errors.Is(err, datastore.ErrNoSuchEntity) {
			return err
		}

		if _, err := tx.Put(usernameKey(user.Username), &dsUsername{UserID: user.ID}); err != nil {
			return err
		}
		_, err = tx.Put(userKey(user.ID), &dsUser{
			Username:  user.Username,
			Password:  user.Password,
			CreatedAt: user.CreatedAt,
		})
		return err
	}, datastore.MaxAttempts(registerAttempts))
	return err
}

func (s *DatastoreStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var claim dsUsername
	if err := s.ds.Get(ctx, usernameKey(username), &claim); err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var u dsUser
	if err := s.ds.Get(ctx, userKey(claim.UserID), &u); err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &models.User{
		ID:        claim.UserID,
		Username:  u.Username,
		Password:  u.Password,
		CreatedAt: u.CreatedAt,
	}, nil
}

func (s *DatastoreStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var found []dsUser
	keys, err := s.ds.GetAll(ctx, datastore.NewQuery(KindUser).Order("created_at"), &found)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(keys))
	for i, key := range keys {
		users = append(users, models.User{
			ID:        key.Name,
			Username:  found[i].Username,
			CreatedAt: found[i].CreatedAt,
		})
	}
	return users, nil
}

func (s *DatastoreStore) Get(ctx context.Context, userID string) (models.Collection, bool, error) {
	var u dsUser
	if err := s.ds.Get(ctx, userKey(userID), &u); err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var flag dsFlag
	if err := s.ds.Get(ctx, flagKey(userID), &flag); err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return nil, true, nil
		}
		return nil, false, err
	}

	todos, err := decodeCollection(flag.Value)
	if err != nil {
		return nil, false, err
	}
	return todos, true, nil
}

func (s *DatastoreStore) Set(ctx context.Context, userID string, patch models.Collection) (models.Collection, bool, error) {
	return s.update(ctx, userID, patch, nil)
}

func (s *DatastoreStore) Remove(ctx context.Context, userID string, ids ...string) (models.Collection, bool, error) {
	return s.update(ctx, userID, nil, ids)
}

func (s *DatastoreStore) Apply(ctx context.Context, userID string, set models.Collection, remove []string) (models.Collection, bool, error) {
	return s.update(ctx, userID, set, remove)
}

// Close closes the underlying datastore client.
func (s *DatastoreStore) Close() error {
	return s.ds.Close()
}

func (s *DatastoreStore) update(ctx context.Context, userID string, set models.Collection, remove []string) (models.Collection, bool, error) {
	var (
		next  models.Collection
		found bool
	)

	_, err := s.ds.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		next, found = nil, false

		var u dsUser
		if err := tx.Get(userKey(userID), &u); err != nil {
			if errors.Is(err, datastore.ErrNoSuchEntity) {
				return nil
			}
			return err
		}
		found = true

		var flag dsFlag
		if err := tx.Get(flagKey(userID), &flag); err != nil && !errors.Is(err, datastore.ErrNoSuchEntity) {
			return err
		}
		current, err := decodeCollection(flag.Value)
		if err != nil {
			return err
		}

		next = applyPatch(current, set, remove)
		value, err := encodeCollection(next)
		if err != nil {
			return err
		}
		_, err = tx.Put(flagKey(userID), &dsFlag{Value: value, UpdatedAt: time.Now()})
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return next, found, nil
}
