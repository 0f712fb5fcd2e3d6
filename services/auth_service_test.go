package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/daviderandino/ruggine/auth"
	"github.com/daviderandino/ruggine/domain"
	"github.com/daviderandino/ruggine/errors"
	"github.com/daviderandino/ruggine/mocks"
)

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	tokens := auth.NewTokenManager("test-secret", 24*time.Hour)
	svc := NewAuthService(mockRepo, tokens)

	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)
		username := "alice"
		password := "ComplexPass123"
		expected := domain.User{ID: uuid.New(), Username: username}

		// Expect CreateUser to be called with a hashed password (not the plain one)
		mockRepo.EXPECT().
			CreateUser(username, gomock.Not(password)).
			Return(expected, nil).
			Times(1)

		token, user, err := svc.Register(username, password)

		req.NoError(err)
		req.NotEmpty(token)
		req.Equal(expected.ID, user.ID)
	})

	t.Run("should fail when password is too short", func(t *testing.T) {
		req := require.New(t)

		// Repository should NEVER be called
		mockRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Times(0)

		token, _, err := svc.Register("bob", "short")

		req.Error(err)
		req.ErrorIs(err, errors.ErrInvalidPassword)
		req.Empty(token)
	})

	t.Run("should fail when username is invalid", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Times(0)

		_, _, err := svc.Register("x", "ComplexPass123")

		req.ErrorIs(err, errors.ErrInvalidUsername)
	})

	t.Run("should fail when username already exists in repository", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			CreateUser("duplicate", gomock.Any()).
			Return(domain.User{}, errors.ErrUsernameExists).
			Times(1)

		_, _, err := svc.Register("duplicate", "ComplexPass123")

		req.ErrorIs(err, errors.ErrUsernameExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	tokens := auth.NewTokenManager("test-secret", 24*time.Hour)
	svc := NewAuthService(mockRepo, tokens)

	password := "ComplexPass123"
	hashed, err := auth.HashPassword(password)
	require.NoError(t, err)
	stored := domain.User{ID: uuid.New(), Username: "alice", PasswordHash: hashed}

	t.Run("should login successfully with correct credentials", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().GetByUsername("alice").Return(stored, nil).Times(1)

		token, user, err := svc.Login("alice", password)

		req.NoError(err)
		req.NotEmpty(token)
		req.Equal(stored.ID, user.ID)

		// The issued token round-trips through validation.
		claims, err := tokens.Validate(string(token))
		req.NoError(err)
		req.Equal(stored.ID.String(), claims.UserID)
	})

	t.Run("should fail with wrong password", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().GetByUsername("alice").Return(stored, nil).Times(1)

		_, _, err := svc.Login("alice", "WrongPass123")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should fail with unknown user without leaking existence", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			GetByUsername("ghost").
			Return(domain.User{}, errors.ErrUserNotFound).
			Times(1)

		_, _, err := svc.Login("ghost", password)

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})
}
