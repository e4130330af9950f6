package usecases

import (
	"context"
	"fmt"

	"github.com/samirrijal/tourguide/internal/core/domain"
	"github.com/samirrijal/tourguide/internal/core/ports"
)

// TripService quotes trip deals for users.
type TripService struct {
	pricer ports.TripPricer
	apiKey string
}

// NewTripService creates a new TripService.
func NewTripService(pricer ports.TripPricer, apiKey string) *TripService {
	return &TripService{pricer: pricer, apiKey: apiKey}
}

// GetTripDeals prices a trip from the user's preferences and accumulated
// reward points, and remembers the result on the user.
func (s *TripService) GetTripDeals(ctx context.Context, user *domain.User) ([]domain.Provider, error) {
	if user == nil {
		return nil, ErrNilUser
	}
	prefs := user.Preferences
	providers, err := s.pricer.Price(ctx, domain.TripQuery{
		APIKey:           s.apiKey,
		UserID:           user.ID,
		NumberOfAdults:   prefs.NumberOfAdults,
		NumberOfChildren: prefs.NumberOfChildren,
		TripDuration:     prefs.TripDuration,
		RewardPoints:     user.RewardPointsTotal(),
	})
	if err != nil {
		return nil, fmt.Errorf("price trip for %s: %w", user.Name, err)
	}
	user.SetTripDeals(providers)
	return providers, nil
}
