package ports

import (
	"context"

	"github.com/samirrijal/tourguide/internal/core/domain"
)

// UserRepository stores users by name.
type UserRepository interface {
	// Get returns domain.ErrUserNotFound when no user has the name.
	Get(ctx context.Context, name string) (*domain.User, error)
	// Add returns domain.ErrUserExists and leaves the stored user untouched
	// when the name is taken.
	Add(ctx context.Context, user *domain.User) error
	All(ctx context.Context) ([]*domain.User, error)
}

// AttractionCatalog lists every known attraction. The result is treated as
// immutable for the life of the process.
type AttractionCatalog interface {
	All(ctx context.Context) ([]domain.Attraction, error)
}

// AttractionFinder narrows the catalog to a bounding box before distances are
// computed.
type AttractionFinder interface {
	FindWithin(ctx context.Context, bounds domain.Bounds) ([]domain.Attraction, error)
}
