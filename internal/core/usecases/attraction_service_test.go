package usecases_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/samirrijal/tourguide/internal/core/domain"
	"github.com/samirrijal/tourguide/internal/core/ports"
	"github.com/samirrijal/tourguide/internal/core/usecases"
	"github.com/samirrijal/tourguide/internal/pkg/workerpool"
)

func newAttractionService(t *testing.T, catalog *mockCatalog, withFinder bool, source ports.RewardSource, cache ports.CacheService) *usecases.AttractionService {
	t.Helper()
	f := newTrackingFixture(t, &mockLocationSource{}, catalog, source)
	pool := workerpool.New("nearby-test", 8)
	t.Cleanup(func() { pool.Shutdown(context.Background()) })

	deps := usecases.AttractionServiceDeps{
		Catalog:  catalog,
		Ranker:   usecases.NewAttractionRanker(5),
		Policy:   usecases.NewProximityPolicy(10, 200),
		Tracking: f.tracking,
		Rewards:  source,
		Pool:     pool,
		Cache:    cache,
	}
	if withFinder {
		deps.Finder = catalog
	}
	return usecases.NewAttractionService(deps)
}

func gridCatalog() *mockCatalog {
	var attractions []domain.Attraction
	for i := 0; i < 10; i++ {
		attractions = append(attractions, attraction(fmt.Sprintf("a%d", i), fmt.Sprintf("Attraction %d", i), float64(i), 0))
	}
	return staticCatalog(attractions...)
}

func TestAttractionService_NearbyAttractions(t *testing.T) {
	source := &mockRewardSource{rewardPointsFn: func(ctx context.Context, attractionID, userID string) (int, error) {
		if attractionID == "a2" {
			return 0, errors.New("lookup failed")
		}
		return 500, nil
	}}
	svc := newAttractionService(t, gridCatalog(), false, source, nil)

	user := domain.NewUser("u1", "alice", "", "")
	visit(user, 0, 0)

	got, err := svc.NearbyAttractions(context.Background(), user)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 nearby attractions, got %d", len(got))
	}
	for i, na := range got {
		if na.Name != fmt.Sprintf("Attraction %d", i) {
			t.Errorf("position %d: got %s", i, na.Name)
		}
		if na.UserLatitude != 0 || na.UserLongitude != 0 {
			t.Errorf("expected user coordinates to be carried through")
		}
		wantPoints := 500
		if i == 2 {
			wantPoints = 0
		}
		if na.RewardPoints != wantPoints {
			t.Errorf("%s: points %d, want %d", na.Name, na.RewardPoints, wantPoints)
		}
	}
	if got[1].Distance <= got[0].Distance {
		t.Error("expected increasing distances")
	}
}

func TestAttractionService_RankNearest_UsesCache(t *testing.T) {
	calls := 0
	attractions := gridCatalog()
	catalog := &mockCatalog{allFn: func(ctx context.Context) ([]domain.Attraction, error) {
		calls++
		return attractions.All(ctx)
	}}
	svc := newAttractionService(t, catalog, false, &mockRewardSource{}, newMockCache())

	loc := domain.GeoPoint{Lat: 3, Lon: 0}
	first, err := svc.RankNearestAttractions(context.Background(), loc, 3)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.RankNearestAttractions(context.Background(), loc, 3)
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("expected the second call to be served from cache, catalog called %d times", calls)
	}
	if len(first) != 3 || len(second) != 3 || first[0].Attraction.Name != second[0].Attraction.Name {
		t.Errorf("cached result differs: %v vs %v", first, second)
	}
}

func TestAttractionService_RankNearest_CacheKeyedOnExactLocation(t *testing.T) {
	calls := 0
	attractions := gridCatalog()
	catalog := &mockCatalog{allFn: func(ctx context.Context) ([]domain.Attraction, error) {
		calls++
		return attractions.All(ctx)
	}}
	svc := newAttractionService(t, catalog, false, &mockRewardSource{}, newMockCache())

	// both round to the same four decimals
	first := domain.GeoPoint{Lat: 3.00001, Lon: 0.00001}
	second := domain.GeoPoint{Lat: 3.00004, Lon: 0.00004}
	if _, err := svc.RankNearestAttractions(context.Background(), first, 3); err != nil {
		t.Fatal(err)
	}
	got, err := svc.RankNearestAttractions(context.Background(), second, 3)
	if err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("expected distinct locations to miss the cache, catalog called %d times", calls)
	}
	for _, ad := range got {
		if want := usecases.Distance(second, ad.Attraction); ad.Distance != want {
			t.Errorf("%s: distance %v, want %v", ad.Attraction.Name, ad.Distance, want)
		}
	}
}

func TestAttractionService_RankNearest_InvalidLocation(t *testing.T) {
	svc := newAttractionService(t, gridCatalog(), false, &mockRewardSource{}, nil)
	got, err := svc.RankNearestAttractions(context.Background(), domain.GeoPoint{Lat: -91}, 5)
	if err != nil || len(got) != 0 {
		t.Errorf("expected empty result without error, got %v %v", got, err)
	}
}

func TestAttractionService_VisibleAttractions(t *testing.T) {
	var bounds domain.Bounds
	catalog := gridCatalog()
	all, _ := catalog.All(context.Background())
	catalog.findWithinFn = func(ctx context.Context, b domain.Bounds) ([]domain.Attraction, error) {
		bounds = b
		var out []domain.Attraction
		for _, a := range all {
			if b.Contains(a.Location) {
				out = append(out, a)
			}
		}
		return out, nil
	}
	svc := newAttractionService(t, catalog, true, &mockRewardSource{}, nil)

	// 200 miles is just under 3 degrees of latitude
	got, err := svc.VisibleAttractions(context.Background(), domain.GeoPoint{Lat: 0, Lon: 0})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected attractions 0..2 to be visible, got %d", len(got))
	}
	if bounds.MaxLat <= 2 || bounds.MaxLat >= 3 {
		t.Errorf("unexpected bounding box %+v", bounds)
	}
}

func TestAttractionService_VisibleAttractions_NoFinder(t *testing.T) {
	svc := newAttractionService(t, gridCatalog(), false, &mockRewardSource{}, nil)
	got, err := svc.VisibleAttractions(context.Background(), domain.GeoPoint{Lat: 9, Lon: 0})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0].Attraction.Name != "Attraction 9" {
		t.Errorf("unexpected result: %v", got)
	}
}
