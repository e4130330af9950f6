package usecases_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/samirrijal/tourguide/internal/core/domain"
)

// --- Mock AttractionCatalog ---

type mockCatalog struct {
	allFn        func(ctx context.Context) ([]domain.Attraction, error)
	findWithinFn func(ctx context.Context, b domain.Bounds) ([]domain.Attraction, error)
}

func (m *mockCatalog) All(ctx context.Context) ([]domain.Attraction, error) {
	if m.allFn != nil {
		return m.allFn(ctx)
	}
	return nil, nil
}

func (m *mockCatalog) FindWithin(ctx context.Context, b domain.Bounds) ([]domain.Attraction, error) {
	if m.findWithinFn != nil {
		return m.findWithinFn(ctx, b)
	}
	return nil, nil
}

func staticCatalog(attractions ...domain.Attraction) *mockCatalog {
	return &mockCatalog{allFn: func(ctx context.Context) ([]domain.Attraction, error) {
		return attractions, nil
	}}
}

// --- Mock RewardSource ---

type mockRewardSource struct {
	mu    sync.Mutex
	calls int

	rewardPointsFn func(ctx context.Context, attractionID, userID string) (int, error)
}

func (m *mockRewardSource) RewardPoints(ctx context.Context, attractionID, userID string) (int, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.rewardPointsFn != nil {
		return m.rewardPointsFn(ctx, attractionID, userID)
	}
	return 100, nil
}

func (m *mockRewardSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// --- Mock LocationSource ---

type mockLocationSource struct {
	currentLocationFn func(ctx context.Context, userID string) (domain.VisitedLocation, error)
}

func (m *mockLocationSource) CurrentLocation(ctx context.Context, userID string) (domain.VisitedLocation, error) {
	if m.currentLocationFn != nil {
		return m.currentLocationFn(ctx, userID)
	}
	return domain.VisitedLocation{UserID: userID, Location: domain.GeoPoint{Lat: 33.817595, Lon: -117.922008}}, nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu        sync.Mutex
	locations []domain.LocationTracked
	rewards   []domain.RewardEarned
	err       error
}

func (m *mockPublisher) PublishLocationTracked(ctx context.Context, e domain.LocationTracked) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations = append(m.locations, e)
	return m.err
}

func (m *mockPublisher) PublishRewardEarned(ctx context.Context, e domain.RewardEarned) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rewards = append(m.rewards, e)
	return m.err
}

// --- Mock UserRepository ---

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	order []string

	allErr error
}

func newMockUserRepo(users ...*domain.User) *mockUserRepo {
	r := &mockUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		r.users[u.Name] = u
		r.order = append(r.order, u.Name)
	}
	return r
}

func (m *mockUserRepo) Get(ctx context.Context, name string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[name]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepo) Add(ctx context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Name]; ok {
		return domain.ErrUserExists
	}
	m.users[u.Name] = u
	m.order = append(m.order, u.Name)
	return nil
}

func (m *mockUserRepo) All(ctx context.Context) ([]*domain.User, error) {
	if m.allErr != nil {
		return nil, m.allErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.User, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.users[name])
	}
	return out, nil
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockCache() *mockCache { return &mockCache{data: make(map[string][]byte)} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, fmt.Errorf("cache miss: %s", key)
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock TripPricer ---

type mockPricer struct {
	priceFn func(ctx context.Context, q domain.TripQuery) ([]domain.Provider, error)
}

func (m *mockPricer) Price(ctx context.Context, q domain.TripQuery) ([]domain.Provider, error) {
	if m.priceFn != nil {
		return m.priceFn(ctx, q)
	}
	return nil, nil
}

// --- Fixtures ---

func attraction(id, name string, lat, lon float64) domain.Attraction {
	return domain.Attraction{ID: id, Name: name, Location: domain.GeoPoint{Lat: lat, Lon: lon}}
}

func visit(u *domain.User, lat, lon float64) {
	u.AddVisitedLocation(domain.VisitedLocation{UserID: u.ID, Location: domain.GeoPoint{Lat: lat, Lon: lon}})
}
