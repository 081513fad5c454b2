package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/prudhvinik1/linkup/internal/models"
	"github.com/prudhvinik1/linkup/internal/repositories"
)

type UserService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return getUser(ctx, s.userRepo, id)
}

// Directory lists every user except the caller.
func (s *UserService) Directory(ctx context.Context, callerID uuid.UUID) ([]*models.User, error) {
	users, err := s.userRepo.List(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// getUser resolves an identity, translating a missing row to ErrUserNotFound.
func getUser(ctx context.Context, repo repositories.UserRepository, id uuid.UUID) (*models.User, error) {
	if id == uuid.Nil {
		return nil, ErrInvalidIdentity
	}
	user, err := repo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
