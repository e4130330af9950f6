package simulated

import (
	"context"
	"fmt"
	"time"

	"github.com/samirrijal/tourguide/internal/core/domain"
)

const maxMercatorLat = 85.05112878

// GPS reports a random position for any user. It implements
// ports.LocationSource.
type GPS struct {
	latency time.Duration
	rng     *lockedRand
}

// NewGPS creates a GPS that takes latency to answer. seed 0 picks a random
// seed.
func NewGPS(latency time.Duration, seed uint64) *GPS {
	return &GPS{latency: latency, rng: newLockedRand(seed)}
}

func (g *GPS) CurrentLocation(ctx context.Context, userID string) (domain.VisitedLocation, error) {
	if err := delay(ctx, g.latency); err != nil {
		return domain.VisitedLocation{}, fmt.Errorf("gps: %w", err)
	}
	return domain.VisitedLocation{
		UserID: userID,
		Location: domain.GeoPoint{
			Lat: g.rng.between(-maxMercatorLat, maxMercatorLat),
			Lon: g.rng.between(-180, 180),
		},
		TimeVisit: time.Now().UTC(),
	}, nil
}
