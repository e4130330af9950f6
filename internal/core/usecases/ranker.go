package usecases

import (
	"context"
	"log/slog"
	"sort"

	"github.com/samirrijal/tourguide/internal/core/domain"
)

// DefaultNearbyLimit is how many attractions a nearby query returns when the
// caller does not say.
const DefaultNearbyLimit = 5

// AttractionRanker orders attractions by distance from a location.
type AttractionRanker struct {
	limit int
}

// NewAttractionRanker creates a ranker whose default result size is limit.
func NewAttractionRanker(limit int) *AttractionRanker {
	if limit <= 0 {
		limit = DefaultNearbyLimit
	}
	return &AttractionRanker{limit: limit}
}

// Limit returns the default result size.
func (r *AttractionRanker) Limit() int { return r.limit }

// RankNearest returns the k attractions closest to loc, nearest first. Equal
// distances keep catalog order. k <= 0 uses the ranker's default limit. An
// invalid location yields an empty result.
func (r *AttractionRanker) RankNearest(ctx context.Context, loc domain.GeoPoint, attractions []domain.Attraction, k int) []domain.AttractionDistance {
	if !loc.Valid() {
		slog.ErrorContext(ctx, "cannot rank attractions around an invalid location",
			"lat", loc.Lat, "lon", loc.Lon)
		return []domain.AttractionDistance{}
	}
	if k <= 0 {
		k = r.limit
	}

	ranked := make([]domain.AttractionDistance, 0, len(attractions))
	for _, a := range attractions {
		if !a.Location.Valid() {
			slog.WarnContext(ctx, "skipping attraction with invalid location", "attraction", a.Name)
			continue
		}
		ranked = append(ranked, domain.AttractionDistance{Attraction: a, Distance: Distance(loc, a)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Distance < ranked[j].Distance
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
