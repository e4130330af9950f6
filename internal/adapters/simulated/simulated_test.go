package simulated

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samirrijal/tourguide/internal/core/domain"
)

func TestGPS_CurrentLocation(t *testing.T) {
	gps := NewGPS(0, 42)
	for i := 0; i < 200; i++ {
		vl, err := gps.CurrentLocation(context.Background(), "u1")
		if err != nil {
			t.Fatal(err)
		}
		if !vl.Location.Valid() || vl.Location.Lat > maxMercatorLat || vl.Location.Lat < -maxMercatorLat {
			t.Fatalf("location out of range: %+v", vl.Location)
		}
		if vl.UserID != "u1" || vl.TimeVisit.IsZero() {
			t.Fatalf("unexpected location: %+v", vl)
		}
	}
}

func TestGPS_RespectsContext(t *testing.T) {
	gps := NewGPS(time.Second, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := gps.CurrentLocation(ctx, "u1"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error, got %v", err)
	}
}

func TestRewardCentral_Range(t *testing.T) {
	rc := NewRewardCentral(0, 7)
	for i := 0; i < 500; i++ {
		p, err := rc.RewardPoints(context.Background(), "a", "u")
		if err != nil {
			t.Fatal(err)
		}
		if p < 1 || p > 1000 {
			t.Fatalf("points out of range: %d", p)
		}
	}
	if _, err := rc.RewardPoints(context.Background(), "", "u"); err == nil {
		t.Error("expected error for empty attraction id")
	}
}

func TestTripPricer_Price(t *testing.T) {
	pricer := NewTripPricer("test-server-api-key", 0, 3)

	providers, err := pricer.Price(context.Background(), domain.TripQuery{
		APIKey: "test-server-api-key", UserID: "u1",
		NumberOfAdults: 2, NumberOfChildren: 1, TripDuration: 3,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(providers) != 5 {
		t.Fatalf("expected 5 providers, got %d", len(providers))
	}
	names := map[string]bool{}
	for _, p := range providers {
		if names[p.Name] {
			t.Errorf("duplicate provider %s", p.Name)
		}
		names[p.Name] = true
		if p.Price <= 0 || p.TripID == "" {
			t.Errorf("unexpected provider %+v", p)
		}
	}
}

func TestTripPricer_RewardPointsFloorAtZero(t *testing.T) {
	pricer := NewTripPricer("key", 0, 3)
	providers, err := pricer.Price(context.Background(), domain.TripQuery{
		APIKey: "key", NumberOfAdults: 1, TripDuration: 1, RewardPoints: 1_000_000,
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range providers {
		if p.Price != 0 {
			t.Errorf("expected price floored at 0, got %v", p.Price)
		}
	}
}

func TestTripPricer_InvalidKey(t *testing.T) {
	pricer := NewTripPricer("key", 0, 3)
	if _, err := pricer.Price(context.Background(), domain.TripQuery{APIKey: "nope"}); !errors.Is(err, ErrInvalidAPIKey) {
		t.Errorf("expected ErrInvalidAPIKey, got %v", err)
	}
}

func TestFeed_All(t *testing.T) {
	first, _ := NewFeed().All(context.Background())
	second, _ := NewFeed().All(context.Background())
	if len(first) != 26 {
		t.Fatalf("expected 26 attractions, got %d", len(first))
	}
	ids := map[string]bool{}
	for i, a := range first {
		if !a.Location.Valid() {
			t.Errorf("%s has an invalid location", a.Name)
		}
		if a.ID != second[i].ID {
			t.Errorf("%s: ids should be stable", a.Name)
		}
		if ids[a.ID] {
			t.Errorf("duplicate id for %s", a.Name)
		}
		ids[a.ID] = true
	}
}
