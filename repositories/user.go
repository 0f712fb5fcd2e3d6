//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/daviderandino/ruggine/domain"
	"github.com/daviderandino/ruggine/errors"
)

type IUserRepository interface {
	CreateUser(username, passwordHash string) (domain.User, error)
	GetByUsername(username string) (domain.User, error)
	GetByID(id uuid.UUID) (domain.User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

type diskUser struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    int64     `json:"created_at"`
}

// CreateUser persists a new user. The username index key is checked and
// written in the same transaction, so a duplicate username always fails
// with ErrUsernameExists regardless of concurrent registrations.
func (u UserRepository) CreateUser(username, passwordHash string) (domain.User, error) {
	user := domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(fromUser(user))
	if err != nil {
		return domain.User{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(usernameKey(username)); err == nil {
			return errors.ErrUsernameExists
		}
		if err := txn.Set(usernameKey(username), []byte(user.ID.String())); err != nil {
			return err
		}
		return txn.Set(userKey(user.ID), data)
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (u UserRepository) GetByUsername(username string) (domain.User, error) {
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(usernameKey(username))
		if err != nil {
			return err
		}
		var id uuid.UUID
		if err = item.Value(func(val []byte) error {
			id, err = uuid.ParseBytes(val)
			return err
		}); err != nil {
			return err
		}
		user, err = readUser(txn, id)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return domain.User{}, errors.ErrUserNotFound
	}
	return user, err
}

func (u UserRepository) GetByID(id uuid.UUID) (domain.User, error) {
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = readUser(txn, id)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return domain.User{}, errors.ErrUserNotFound
	}
	return user, err
}

func readUser(txn *badger.Txn, id uuid.UUID) (domain.User, error) {
	item, err := txn.Get(userKey(id))
	if err != nil {
		return domain.User{}, err
	}
	var du diskUser
	if err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &du)
	}); err != nil {
		return domain.User{}, err
	}
	return toUser(du), nil
}

func fromUser(user domain.User) diskUser {
	return diskUser{
		ID:           user.ID,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt.UnixNano(),
	}
}

func toUser(du diskUser) domain.User {
	return domain.User{
		ID:           du.ID,
		Username:     du.Username,
		PasswordHash: du.PasswordHash,
		CreatedAt:    time.Unix(0, du.CreatedAt).UTC(),
	}
}
