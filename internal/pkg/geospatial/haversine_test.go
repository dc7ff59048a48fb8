package geospatial

import (
	"math"
	"testing"
)

func TestHaversineKm_SamePointIsZero(t *testing.T) {
	points := [][2]float64{
		{36.8065, 10.1815},
		{0, 0},
		{-90, 180},
		{89.9, -179.9},
	}
	for _, p := range points {
		if d := HaversineKm(p[0], p[1], p[0], p[1]); d != 0 {
			t.Errorf("distance from %v to itself = %v, want 0", p, d)
		}
	}
}

func TestHaversineKm_Symmetric(t *testing.T) {
	pairs := [][4]float64{
		{36.8065, 10.1815, 34.7406, 10.7603},
		{38.5, -120.2, 43.252, -126.453},
		{-33.9, 18.4, 51.5, -0.12},
		{120, 400, -95, -200}, // out of range inputs still produce a number
	}
	for _, p := range pairs {
		ab := HaversineKm(p[0], p[1], p[2], p[3])
		ba := HaversineKm(p[2], p[3], p[0], p[1])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("asymmetric distance for %v: %v vs %v", p, ab, ba)
		}
		if math.IsNaN(ab) {
			t.Errorf("NaN distance for %v", p)
		}
	}
}

func TestHaversineKm_TunisSfax(t *testing.T) {
	d := HaversineKm(36.8065, 10.1815, 34.7406, 10.7603)
	if d < 230 || d > 241 {
		t.Errorf("Tunis-Sfax = %.1f km, want about 235 km", d)
	}
}

func TestHaversineKm_QuarterMeridian(t *testing.T) {
	d := HaversineKm(0, 0, 90, 0)
	want := earthRadiusKm * math.Pi / 2
	if math.Abs(d-want) > 1e-6 {
		t.Errorf("equator to pole = %v, want %v", d, want)
	}
}

func TestPathBounds(t *testing.T) {
	minLat, minLon, maxLat, maxLon := PathBounds([][2]float64{
		{36.8, 10.1}, {33.9, 10.09}, {35.8, 10.63},
	})
	if minLat != 33.9 || maxLat != 36.8 || minLon != 10.09 || maxLon != 10.63 {
		t.Errorf("unexpected bounds %v %v %v %v", minLat, minLon, maxLat, maxLon)
	}

	a, b, c, d := PathBounds(nil)
	if a != 0 || b != 0 || c != 0 || d != 0 {
		t.Errorf("empty path should give zero bounds")
	}
}
