package simulated

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/tourguide/internal/core/domain"
)

var ErrInvalidAPIKey = errors.New("trip pricer: invalid api key")

var providerNames = []string{
	"Holiday Travels",
	"Enterprize Ventures Limited",
	"Sunny Days",
	"FlyAway Trips",
	"United Partners Vacations",
	"Dream Trips",
	"Live Free",
	"Dancing Waves Cruselines and Partners",
	"AdventureCo",
	"Cure-Your-Blues",
}

const providersPerQuote = 5

// TripPricer quotes five providers per query. Prices scale with party size and
// trip duration and are reduced by the user's reward points, never below
// zero. It implements ports.TripPricer.
type TripPricer struct {
	apiKey  string
	latency time.Duration
	rng     *lockedRand
}

// NewTripPricer creates a pricer that accepts only apiKey.
func NewTripPricer(apiKey string, latency time.Duration, seed uint64) *TripPricer {
	return &TripPricer{apiKey: apiKey, latency: latency, rng: newLockedRand(seed)}
}

func (p *TripPricer) Price(ctx context.Context, q domain.TripQuery) ([]domain.Provider, error) {
	if q.APIKey != p.apiKey {
		return nil, ErrInvalidAPIKey
	}
	if q.NumberOfAdults < 0 || q.NumberOfChildren < 0 || q.TripDuration < 0 {
		return nil, fmt.Errorf("trip pricer: negative party size or duration")
	}
	if err := delay(ctx, p.latency); err != nil {
		return nil, fmt.Errorf("trip pricer: %w", err)
	}

	duration := max(q.TripDuration, 1)
	picked := make(map[int]bool, providersPerQuote)
	providers := make([]domain.Provider, 0, providersPerQuote)
	for len(providers) < providersPerQuote {
		i := p.rng.IntN(len(providerNames))
		if picked[i] {
			continue
		}
		picked[i] = true

		adultRate := float64(100 + p.rng.IntN(900))
		childRate := adultRate / 3
		price := (adultRate*float64(q.NumberOfAdults)+childRate*float64(q.NumberOfChildren))*float64(duration) +
			0.99 - float64(q.RewardPoints)
		providers = append(providers, domain.Provider{
			TripID: uuid.NewString(),
			Name:   providerNames[i],
			Price:  math.Max(0, math.Round(price*100)/100),
		})
	}
	return providers, nil
}
