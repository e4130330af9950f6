package ports

import (
	"context"

	"github.com/samirrijal/tourguide/internal/core/domain"
)

// LocationSource reports where a user is right now. Calls may fail
// transiently.
type LocationSource interface {
	CurrentLocation(ctx context.Context, userID string) (domain.VisitedLocation, error)
}

// RewardSource returns the points a user earns for an attraction. A failure
// for one call says nothing about others.
type RewardSource interface {
	RewardPoints(ctx context.Context, attractionID, userID string) (int, error)
}

// TripPricer quotes trip deals.
type TripPricer interface {
	Price(ctx context.Context, q domain.TripQuery) ([]domain.Provider, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishLocationTracked(ctx context.Context, event domain.LocationTracked) error
	PublishRewardEarned(ctx context.Context, event domain.RewardEarned) error
}

// EventSubscriber delivers remote requests to track a user, by name.
type EventSubscriber interface {
	SubscribeTrackRequests(ctx context.Context, handler func(ctx context.Context, userName string) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
