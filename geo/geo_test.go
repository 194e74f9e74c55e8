package geo

import (
	"math"
	"testing"
)

func TestDistanceKm_Identity(t *testing.T) {
	pts := []Point{
		{Lat: 0, Lng: 0},
		{Lat: 13.7563, Lng: 100.5018},
		{Lat: -33.8688, Lng: 151.2093},
	}
	for _, p := range pts {
		if d := DistanceKm(p, p); d != 0 {
			t.Errorf("DistanceKm(%v, %v) = %v, want 0", p, p, d)
		}
	}
}

func TestDistanceKm_Symmetry(t *testing.T) {
	a := Point{Lat: 13.7563, Lng: 100.5018}
	b := Point{Lat: 14.9707, Lng: 102.1018}
	if da, db := DistanceKm(a, b), DistanceKm(b, a); math.Abs(da-db) > 1e-9 {
		t.Errorf("asymmetric: %v vs %v", da, db)
	}
}

func TestDistanceKm_KnownDistance(t *testing.T) {
	// Bangkok to Nakhon Ratchasima, roughly 215 km great-circle.
	a := Point{Lat: 13.7563, Lng: 100.5018}
	b := Point{Lat: 14.9707, Lng: 102.1018}
	d := DistanceKm(a, b)
	if d < 210 || d > 225 {
		t.Errorf("DistanceKm = %v, want ~215", d)
	}
}

func TestDistanceKm_NaNPropagates(t *testing.T) {
	a := Point{Lat: math.NaN(), Lng: 100.5}
	b := Point{Lat: 13.7, Lng: 100.5}
	if d := DistanceKm(a, b); !math.IsNaN(d) {
		t.Errorf("DistanceKm with NaN input = %v, want NaN", d)
	}
}

func TestETAMinutes_SlowSpeedUsesFallback(t *testing.T) {
	cur := Point{Lat: 13.7000, Lng: 100.5000}
	dest := Point{Lat: 13.7500, Lng: 100.5500}
	crawl := 2.0

	min, ok := ETAMinutes(cur, &crawl, dest, 3, 40)
	if !ok {
		t.Fatal("expected an estimate")
	}
	want := int(math.Round(DistanceKm(cur, dest) / 40 * 60))
	if min != want {
		t.Errorf("ETAMinutes = %d, want %d (fallback 40 km/h)", min, want)
	}

	// Same trip with a believable speed must use it, not the fallback.
	moving := 80.0
	fast, ok := ETAMinutes(cur, &moving, dest, 3, 40)
	if !ok || fast >= min {
		t.Errorf("ETAMinutes at 80 km/h = %d, want less than %d", fast, min)
	}
}

func TestETAMinutes_NeverBelowOneMinute(t *testing.T) {
	cur := Point{Lat: 13.70000, Lng: 100.50000}
	dest := Point{Lat: 13.70001, Lng: 100.50001}
	min, ok := ETAMinutes(cur, nil, dest, 3, 40)
	if !ok {
		t.Fatal("expected an estimate")
	}
	if min < 1 {
		t.Errorf("ETAMinutes = %d, want >= 1", min)
	}
}

func TestETAMinutes_UnknownCoordinates(t *testing.T) {
	good := Point{Lat: 13.7, Lng: 100.5}
	bad := Point{Lat: math.NaN(), Lng: 100.5}
	if _, ok := ETAMinutes(bad, nil, good, 3, 40); ok {
		t.Error("expected no estimate for NaN current position")
	}
	if _, ok := ETAMinutes(good, nil, bad, 3, 40); ok {
		t.Error("expected no estimate for NaN destination")
	}
	if _, ok := ETAMinutes(good, nil, Point{Lat: 91, Lng: 0}, 3, 40); ok {
		t.Error("expected no estimate for out-of-range destination")
	}
}
