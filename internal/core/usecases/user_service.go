package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/samirrijal/tourguide/internal/core/domain"
	"github.com/samirrijal/tourguide/internal/core/ports"
)

// UserService handles user registration and lookup.
type UserService struct {
	users ports.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(users ports.UserRepository) *UserService {
	return &UserService{users: users}
}

// GetUser returns the user with the given name.
func (s *UserService) GetUser(ctx context.Context, name string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrUserNotFound
	}
	return s.users.Get(ctx, name)
}

// AllUsers returns every registered user.
func (s *UserService) AllUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.All(ctx)
}

// AddUser registers a user. An existing user with the same name is kept and
// domain.ErrUserExists is returned.
func (s *UserService) AddUser(ctx context.Context, user *domain.User) error {
	if user == nil {
		return ErrNilUser
	}
	if strings.TrimSpace(user.Name) == "" {
		return fmt.Errorf("user name is required")
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	return s.users.Add(ctx, user)
}
