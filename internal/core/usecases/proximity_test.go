package usecases_test

import (
	"errors"
	"math"
	"testing"

	"github.com/samirrijal/tourguide/internal/core/domain"
	"github.com/samirrijal/tourguide/internal/core/usecases"
)

func TestProximityPolicy_Defaults(t *testing.T) {
	p := usecases.NewProximityPolicy(0, 0)
	if p.RewardBuffer() != 10 {
		t.Errorf("expected default buffer 10, got %v", p.RewardBuffer())
	}
	if p.VisibilityRange() != 200 {
		t.Errorf("expected default range 200, got %v", p.VisibilityRange())
	}
}

func TestProximityPolicy_BoundaryIsInclusive(t *testing.T) {
	loc := domain.GeoPoint{Lat: 40, Lon: -100}
	a := attraction("a1", "Boundary", 40.1, -100)
	d := usecases.Distance(loc, a)

	p := usecases.NewProximityPolicy(d, 0)
	if !p.IsRewardEligible(loc, a) {
		t.Errorf("attraction at exactly the buffer distance (%v) should be eligible", d)
	}

	if err := p.SetRewardBuffer(math.Nextafter(d, 0)); err != nil {
		t.Fatal(err)
	}
	if p.IsRewardEligible(loc, a) {
		t.Error("attraction just beyond the buffer should not be eligible")
	}
}

func TestProximityPolicy_Monotonic(t *testing.T) {
	p := usecases.NewProximityPolicy(10, 200)
	loc := domain.GeoPoint{Lat: 0, Lon: 0}

	for step := 0; step < 40; step++ {
		a := attraction("a", "step", float64(step)*0.01, 0)
		d := usecases.Distance(loc, a)
		if got, want := p.IsRewardEligible(loc, a), d <= 10; got != want {
			t.Errorf("distance %v: eligible=%v want %v", d, got, want)
		}
		if got, want := p.IsVisible(loc, a), d <= 200; got != want {
			t.Errorf("distance %v: visible=%v want %v", d, got, want)
		}
	}
}

func TestProximityPolicy_VisibilityIndependentOfBuffer(t *testing.T) {
	p := usecases.NewProximityPolicy(10, 200)
	loc := domain.GeoPoint{Lat: 0, Lon: 0}
	a := attraction("a", "far", 1, 0) // ~69 miles

	if p.IsRewardEligible(loc, a) {
		t.Error("69 miles should not be reward eligible with a 10 mile buffer")
	}
	if !p.IsVisible(loc, a) {
		t.Error("69 miles should be visible with a 200 mile range")
	}
}

func TestProximityPolicy_SetAndReset(t *testing.T) {
	p := usecases.NewProximityPolicy(15, 0)

	if err := p.SetRewardBuffer(500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.RewardBuffer() != 500 {
		t.Errorf("expected 500, got %v", p.RewardBuffer())
	}

	p.ResetRewardBuffer()
	if p.RewardBuffer() != 15 {
		t.Errorf("reset should restore the configured default 15, got %v", p.RewardBuffer())
	}

	for _, bad := range []float64{-1, math.NaN(), math.Inf(1)} {
		if err := p.SetRewardBuffer(bad); !errors.Is(err, usecases.ErrInvalidBuffer) {
			t.Errorf("SetRewardBuffer(%v) = %v, want ErrInvalidBuffer", bad, err)
		}
	}
}

func TestProximityPolicy_InvalidLocation(t *testing.T) {
	p := usecases.NewProximityPolicy(math.MaxFloat64, math.MaxFloat64)
	a := attraction("a", "x", 0, 0)
	bad := domain.GeoPoint{Lat: math.NaN(), Lon: 0}

	if p.IsRewardEligible(bad, a) || p.IsVisible(bad, a) {
		t.Error("invalid locations must never be eligible or visible")
	}
}
