package geospatial

import (
	"math"
	"testing"
)

func TestDistanceMiles_Identity(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{33.817595, -117.922008},
		{-85.05112878, 179.9},
		{89.9999, -45},
	}
	for _, p := range points {
		d := DistanceMiles(p[0], p[1], p[0], p[1])
		if math.IsNaN(d) || d > 1e-6 {
			t.Errorf("DistanceMiles(%v, %v) = %v, want 0", p, p, d)
		}
	}
}

func TestDistanceMiles_Symmetry(t *testing.T) {
	pairs := [][4]float64{
		{33.817595, -117.922008, 43.582767, -110.821999},
		{-12.5, 130.1, 48.8, 2.35},
		{0, 179.5, 0, -179.5},
	}
	for _, p := range pairs {
		ab := DistanceMiles(p[0], p[1], p[2], p[3])
		ba := DistanceMiles(p[2], p[3], p[0], p[1])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("asymmetric distance for %v: %v vs %v", p, ab, ba)
		}
	}
}

func TestDistanceMiles_OneDegreeLatitude(t *testing.T) {
	// 60 nautical miles per degree
	got := DistanceMiles(10, 20, 11, 20)
	want := 60 * 1.15077945
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("got %v, want %v", got, want)
	}
	if math.Abs(got-69) > 0.1 {
		t.Errorf("expected roughly 69 miles, got %v", got)
	}
}

func TestDistanceMiles_KnownCities(t *testing.T) {
	// Los Angeles to New York is about 2450 statute miles along the great circle.
	got := DistanceMiles(34.0522, -118.2437, 40.7128, -74.0060)
	if got < 2400 || got > 2500 {
		t.Errorf("LA-NYC distance = %v, expected about 2450", got)
	}
}

func TestBoundingBoxMiles_ContainsRadius(t *testing.T) {
	lat, lon, radius := 45.0, -93.0, 200.0
	minLat, minLon, maxLat, maxLon := BoundingBoxMiles(lat, lon, radius)

	if minLat >= lat || minLon >= lon || maxLat <= lat || maxLon <= lon {
		t.Fatalf("box does not surround center: %v %v %v %v", minLat, minLon, maxLat, maxLon)
	}

	// every grid point within the radius must fall inside the box
	for dLat := -5.0; dLat <= 5.0; dLat += 0.25 {
		for dLon := -7.0; dLon <= 7.0; dLon += 0.25 {
			pLat, pLon := lat+dLat, lon+dLon
			if DistanceMiles(lat, lon, pLat, pLon) > radius {
				continue
			}
			if pLat < minLat || pLat > maxLat || pLon < minLon || pLon > maxLon {
				t.Errorf("point (%v, %v) within %v miles lies outside the box", pLat, pLon, radius)
			}
		}
	}
}

func TestBoundingBoxMiles_Pole(t *testing.T) {
	_, minLon, maxLat, maxLon := BoundingBoxMiles(89.5, 10, 100)
	if maxLat != 90 || minLon != -180 || maxLon != 180 {
		t.Errorf("expected full longitude band near the pole, got %v..%v max lat %v", minLon, maxLon, maxLat)
	}
}
