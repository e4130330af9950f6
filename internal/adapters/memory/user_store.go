package memory

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/tourguide/internal/core/domain"
)

// UserStore implements ports.UserRepository in process memory.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewUserStore creates an empty store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*domain.User)}
}

func (s *UserStore) Get(ctx context.Context, name string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, name)
	}
	return u, nil
}

func (s *UserStore) Add(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Name]; ok {
		return fmt.Errorf("%w: %s", domain.ErrUserExists, user.Name)
	}
	s.users[user.Name] = user
	return nil
}

// All returns the users ordered by name.
func (s *UserStore) All(ctx context.Context) ([]*domain.User, error) {
	s.mu.RLock()
	out := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Len returns the number of stored users.
func (s *UserStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

const (
	internalHistoryLen = 3
	maxMercatorLat     = 85.05112878
	historyWindow      = 30 * 24 * time.Hour
)

// SeedInternalUsers adds count test users named internalUser0..N-1, each with
// a short random location history inside the last 30 days.
func (s *UserStore) SeedInternalUsers(count int, rng *rand.Rand) int {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	now := time.Now().UTC()
	added := 0
	for i := 0; i < count; i++ {
		name := fmt.Sprintf("internalUser%d", i)
		u := domain.NewUser(uuid.NewString(), name, "000", name+"@tourGuide.com")
		for j := 0; j < internalHistoryLen; j++ {
			u.AddVisitedLocation(domain.VisitedLocation{
				UserID: u.ID,
				Location: domain.GeoPoint{
					Lat: (rng.Float64()*2 - 1) * maxMercatorLat,
					Lon: (rng.Float64()*2 - 1) * 180,
				},
				TimeVisit: now.Add(-time.Duration(rng.Int64N(int64(historyWindow)))),
			})
		}
		if err := s.Add(context.Background(), u); err == nil {
			added++
		}
	}
	return added
}
