package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"

	"github.com/samirrijal/tourguide/internal/core/domain"
	"github.com/samirrijal/tourguide/internal/core/ports"
	"github.com/samirrijal/tourguide/internal/pkg/geospatial"
	"github.com/samirrijal/tourguide/internal/pkg/metrics"
	"github.com/samirrijal/tourguide/internal/pkg/workerpool"
)

const nearestCacheTTL = 300 // seconds

// AttractionService answers "what is near" questions for users and
// coordinates.
type AttractionService struct {
	catalog  ports.AttractionCatalog
	finder   ports.AttractionFinder
	ranker   *AttractionRanker
	policy   *ProximityPolicy
	tracking *TrackingService
	source   ports.RewardSource
	pool     *workerpool.Pool
	cache    ports.CacheService

	lookupTimeout time.Duration
}

// AttractionServiceDeps groups the collaborators of an AttractionService.
// Finder and Cache are optional.
type AttractionServiceDeps struct {
	Catalog       ports.AttractionCatalog
	Finder        ports.AttractionFinder
	Ranker        *AttractionRanker
	Policy        *ProximityPolicy
	Tracking      *TrackingService
	Rewards       ports.RewardSource
	Pool          *workerpool.Pool
	Cache         ports.CacheService
	LookupTimeout time.Duration
}

// NewAttractionService creates a new AttractionService.
func NewAttractionService(d AttractionServiceDeps) *AttractionService {
	if d.LookupTimeout <= 0 {
		d.LookupTimeout = DefaultRewardWaitTimeout
	}
	return &AttractionService{
		catalog:       d.Catalog,
		finder:        d.Finder,
		ranker:        d.Ranker,
		policy:        d.Policy,
		tracking:      d.Tracking,
		source:        d.Rewards,
		pool:          d.Pool,
		cache:         d.Cache,
		lookupTimeout: d.LookupTimeout,
	}
}

// RankNearestAttractions returns the k catalog attractions closest to loc.
// k <= 0 uses the ranker's default.
func (s *AttractionService) RankNearestAttractions(ctx context.Context, loc domain.GeoPoint, k int) ([]domain.AttractionDistance, error) {
	if !loc.Valid() {
		return s.ranker.RankNearest(ctx, loc, nil, k), nil
	}
	if k <= 0 {
		k = s.ranker.Limit()
	}

	// keyed on the exact coordinates
	cacheKey := "attractions:nearest:" + strconv.FormatFloat(loc.Lat, 'g', -1, 64) + ":" +
		strconv.FormatFloat(loc.Lon, 'g', -1, 64) + ":" + strconv.Itoa(k)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var ranked []domain.AttractionDistance
			if err := json.Unmarshal(data, &ranked); err == nil {
				metrics.CacheHits.WithLabelValues("nearest").Inc()
				return ranked, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("nearest").Inc()
	}

	attractions, err := s.catalog.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load attractions: %w", err)
	}
	ranked := s.ranker.RankNearest(ctx, loc, attractions, k)

	if s.cache != nil {
		if data, err := json.Marshal(ranked); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, nearestCacheTTL)
		}
	}
	return ranked, nil
}

// NearbyAttractions returns the closest attractions to the user's last known
// location together with the points each would earn. A failed point lookup
// reports zero points for that attraction.
func (s *AttractionService) NearbyAttractions(ctx context.Context, user *domain.User) ([]domain.NearbyAttraction, error) {
	vl, err := s.tracking.GetUserLocation(ctx, user)
	if err != nil {
		return nil, err
	}
	ranked, err := s.RankNearestAttractions(ctx, vl.Location, 0)
	if err != nil {
		return nil, err
	}

	points := make([]atomic.Int64, len(ranked))
	batch := s.pool.NewBatch()
	for i, ad := range ranked {
		err := batch.Go(ctx, func(ctx context.Context) error {
			p, err := s.source.RewardPoints(ctx, ad.Attraction.ID, user.ID)
			if err != nil {
				slog.WarnContext(ctx, "reward lookup failed for nearby attraction",
					"user", user.Name, "attraction", ad.Attraction.Name, "error", err)
				return err
			}
			points[i].Store(int64(p))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("schedule reward lookup: %w", err)
		}
	}
	if _, err := batch.Wait(ctx, s.lookupTimeout); err != nil {
		slog.WarnContext(ctx, "nearby reward lookups incomplete", "user", user.Name, "error", err)
	}

	out := make([]domain.NearbyAttraction, len(ranked))
	for i, ad := range ranked {
		out[i] = domain.NearbyAttraction{
			Name:          ad.Attraction.Name,
			Latitude:      ad.Attraction.Location.Lat,
			Longitude:     ad.Attraction.Location.Lon,
			UserLatitude:  vl.Location.Lat,
			UserLongitude: vl.Location.Lon,
			Distance:      ad.Distance,
			RewardPoints:  int(points[i].Load()),
		}
	}
	return out, nil
}

// VisibleAttractions returns every attraction within the visibility range of
// loc, nearest first.
func (s *AttractionService) VisibleAttractions(ctx context.Context, loc domain.GeoPoint) ([]domain.AttractionDistance, error) {
	if !loc.Valid() {
		return s.ranker.RankNearest(ctx, loc, nil, 0), nil
	}

	var (
		candidates []domain.Attraction
		err        error
	)
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBoxMiles(loc.Lat, loc.Lon, s.policy.VisibilityRange())
	// boxes crossing the antimeridian are not expressible as one Bounds
	if s.finder != nil && minLon >= -180 && maxLon <= 180 {
		candidates, err = s.finder.FindWithin(ctx, domain.Bounds{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon})
	} else {
		candidates, err = s.catalog.All(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("load attractions: %w", err)
	}
	if len(candidates) == 0 {
		return []domain.AttractionDistance{}, nil
	}

	ranked := s.ranker.RankNearest(ctx, loc, candidates, len(candidates))
	visible := ranked[:0]
	for _, ad := range ranked {
		if s.policy.IsVisible(loc, ad.Attraction) {
			visible = append(visible, ad)
		}
	}
	return visible, nil
}
