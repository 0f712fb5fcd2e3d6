package services

import (
	"fmt"

	"github.com/daviderandino/ruggine/auth"
	"github.com/daviderandino/ruggine/domain"
	"github.com/daviderandino/ruggine/errors"
	"github.com/daviderandino/ruggine/repositories"
)

type IAuthService interface {
	Register(username, password string) (Token, domain.User, error)
	Login(username, password string) (Token, domain.User, error)
}

type AuthService struct {
	users  repositories.IUserRepository
	tokens *auth.TokenManager
}

type Token string

func NewAuthService(users repositories.IUserRepository, tokens *auth.TokenManager) IAuthService {
	return &AuthService{users: users, tokens: tokens}
}

func (s *AuthService) Register(username, password string) (Token, domain.User, error) {
	// 1. Validate business rules before any expensive cryptographic work.
	req := auth.RegisterRequest{Username: username, Password: password}
	if err := auth.ValidateRegister(req); err != nil {
		return "", domain.User{}, err
	}

	// 2. Hash the password in the service layer so the repository never
	// sees a plain password.
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("hashing failed: %w", err)
	}

	// 3. Persist. Propagates ErrUsernameExists when the name is taken.
	user, err := s.users.CreateUser(username, hashed)
	if err != nil {
		return "", domain.User{}, err
	}

	// 4. Issue the initial session token.
	token, err := s.tokens.Generate(user.ID.String(), user.Username)
	if err != nil {
		return "", domain.User{}, errors.ErrTokenGeneration
	}
	return Token(token), user, nil
}

func (s *AuthService) Login(username, password string) (Token, domain.User, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		// Generic error to prevent user enumeration.
		return "", domain.User{}, errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", domain.User{}, errors.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID.String(), user.Username)
	if err != nil {
		return "", domain.User{}, errors.ErrTokenGeneration
	}
	return Token(token), user, nil
}
