package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Lutefd/coin-relay/internal/model"
	"github.com/Lutefd/coin-relay/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (model.User, error) {
	userDB, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return userDB.ToUser(), nil
}

func (s *UserService) GetByAPIKey(ctx context.Context, apiKey string) (model.User, error) {
	userDB, err := s.userRepo.GetByAPIKey(ctx, apiKey)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return userDB.ToUser(), nil
}

// Create stores a new user with a bcrypt hashed password and a fresh API key.
func (s *UserService) Create(ctx context.Context, username, password string, role model.Role) (model.User, error) {
	if username == "" || password == "" {
		return model.User{}, fmt.Errorf("username and password are required")
	}
	if role == "" {
		role = model.RoleUser
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.UserDB{
		ID:        uuid.New(),
		Username:  username,
		Password:  string(hashedPassword),
		Role:      role,
		APIKey:    generateAPIKey(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return user.ToUser(), nil
}

func (s *UserService) Authenticate(ctx context.Context, username, password string) (model.User, error) {
	userDB, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return model.User{}, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userDB.Password), []byte(password)); err != nil {
		return model.User{}, model.ErrInvalidCredentials
	}

	return userDB.ToUser(), nil
}

func generateAPIKey() string {
	return uuid.New().String()
}
