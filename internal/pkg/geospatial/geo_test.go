package geospatial_test

import (
	"math"
	"testing"

	"github.com/clicbook/clicbook/internal/core/domain"
	"github.com/clicbook/clicbook/internal/pkg/geospatial"
)

var (
	paris = domain.Coordinate{Lat: 48.8566, Lon: 2.3522}
	lyon  = domain.Coordinate{Lat: 45.7640, Lon: 4.8357}
)

func TestDistanceKm_ParisLyon(t *testing.T) {
	d := geospatial.DistanceKm(paris, lyon)
	if d < 390 || d > 394 {
		t.Errorf("Paris-Lyon distance = %.2f km, want 392 +/- 2", d)
	}
}

func TestDistanceKm_Symmetry(t *testing.T) {
	pairs := [][2]domain.Coordinate{
		{paris, lyon},
		{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 180}},
		{{Lat: -33.8688, Lon: 151.2093}, {Lat: 40.7128, Lon: -74.0060}},
		{{Lat: 89.9, Lon: 10}, {Lat: -89.9, Lon: -170}},
	}
	for _, p := range pairs {
		ab := geospatial.DistanceKm(p[0], p[1])
		ba := geospatial.DistanceKm(p[1], p[0])
		if math.Abs(ab-ba) > 1e-6 {
			t.Errorf("distance not symmetric: %.9f vs %.9f", ab, ba)
		}
	}
}

func TestDistanceKm_IdenticalPoints(t *testing.T) {
	if d := geospatial.DistanceKm(paris, paris); d != 0 {
		t.Errorf("distance between identical points = %v, want 0", d)
	}
}

func TestDistanceKm_AntipodalStable(t *testing.T) {
	a := domain.Coordinate{Lat: 0, Lon: 0}
	b := domain.Coordinate{Lat: 0, Lon: 180}
	d := geospatial.DistanceKm(a, b)
	if math.IsNaN(d) {
		t.Fatal("antipodal distance is NaN")
	}
	// Half the Earth's circumference.
	want := math.Pi * geospatial.EarthRadiusKm
	if math.Abs(d-want) > 1 {
		t.Errorf("antipodal distance = %.2f km, want %.2f", d, want)
	}
}

func TestFitViewport_Empty(t *testing.T) {
	_, err := geospatial.FitViewport(nil, 0, 0)
	if err != geospatial.ErrNoPoints {
		t.Errorf("expected ErrNoPoints, got %v", err)
	}
}

func TestFitViewport_Containment(t *testing.T) {
	points := []domain.Coordinate{
		{Lat: 48.8566, Lon: 2.3522},
		{Lat: 48.7000, Lon: 2.1000},
		{Lat: 49.0500, Lon: 2.6000},
		{Lat: 48.9000, Lon: 2.4500},
	}

	vp, err := geospatial.FitViewport(points, 1.5, 0.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, p := range points {
		latOff := geospatial.LatSpanKm(math.Abs(p.Lat - vp.Center.Lat))
		lonOff := geospatial.LonSpanKm(math.Abs(p.Lon-vp.Center.Lon), vp.Center.Lat)
		if latOff > vp.LatSpanKm/2 {
			t.Errorf("point %+v outside latitude span: %.3f > %.3f", p, latOff, vp.LatSpanKm/2)
		}
		if lonOff > vp.LonSpanKm/2 {
			t.Errorf("point %+v outside longitude span: %.3f > %.3f", p, lonOff, vp.LonSpanKm/2)
		}
	}
}

func TestFitViewport_MinSpanFloor(t *testing.T) {
	// A single point must still yield a usable camera region.
	vp, err := geospatial.FitViewport([]domain.Coordinate{paris}, 1.5, 0.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vp.Center != paris {
		t.Errorf("center = %+v, want %+v", vp.Center, paris)
	}
	if vp.LatSpanKm < geospatial.LatSpanKm(0.05) {
		t.Errorf("lat span %.3f km below minimum", vp.LatSpanKm)
	}
	if vp.LonSpanKm < geospatial.LonSpanKm(0.05, paris.Lat)-1e-9 {
		t.Errorf("lon span %.3f km below minimum", vp.LonSpanKm)
	}
}

func TestBoundsOf(t *testing.T) {
	b, err := geospatial.BoundsOf([]domain.Coordinate{paris, lyon})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.MinLat != lyon.Lat || b.MaxLat != paris.Lat {
		t.Errorf("latitude bounds wrong: %+v", b)
	}
	if b.MinLon != paris.Lon || b.MaxLon != lyon.Lon {
		t.Errorf("longitude bounds wrong: %+v", b)
	}
}
