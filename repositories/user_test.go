package repositories

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/daviderandino/ruggine/errors"
)

func Test_Create_And_Fetch_User(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository := NewUserRepository(db)

	created, err := repository.CreateUser("alice", "not-a-real-hash")
	req.NoError(err)
	req.NotEqual(uuid.Nil, created.ID)
	req.Equal("alice", created.Username)

	byName, err := repository.GetByUsername("alice")
	req.NoError(err)
	req.Equal(created.ID, byName.ID)
	req.Equal("not-a-real-hash", byName.PasswordHash)

	byID, err := repository.GetByID(created.ID)
	req.NoError(err)
	req.Equal("alice", byID.Username)
}

func Test_Create_User_Duplicate_Username(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository := NewUserRepository(db)

	_, err := repository.CreateUser("bob", "hash-one")
	req.NoError(err)

	_, err = repository.CreateUser("bob", "hash-two")
	req.ErrorIs(err, errors.ErrUsernameExists)
}

func Test_Fetch_Unknown_User(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository := NewUserRepository(db)

	_, err := repository.GetByUsername("ghost")
	req.ErrorIs(err, errors.ErrUserNotFound)

	_, err = repository.GetByID(uuid.New())
	req.ErrorIs(err, errors.ErrUserNotFound)
}
