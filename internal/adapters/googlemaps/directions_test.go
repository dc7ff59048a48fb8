package googlemaps

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samirrijal/tunitrip/internal/core/domain"
	"github.com/samirrijal/tunitrip/internal/core/ports"
)

func TestFetchRoute_SumsLegs(t *testing.T) {
	var waypoints, origin string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin = r.URL.Query().Get("origin")
		waypoints = r.URL.Query().Get("waypoints")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "OK",
			"routes": [{
				"summary": "A1",
				"legs": [
					{"distance": {"text": "140 km", "value": 140200}},
					{"distance": {"text": "130 km", "value": 130300}}
				],
				"overview_polyline": {"points": "_p~iF~ps|U_ulLnnqC"}
			}]
		}`))
	}))
	defer srv.Close()

	p, err := New("test-key", srv.URL, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	points := []domain.GeoPoint{
		{Lat: 36.8065, Lon: 10.1815},
		{Lat: 35.8245, Lon: 10.6346},
		{Lat: 34.7406, Lon: 10.7603},
	}
	res, err := p.FetchRoute(context.Background(), points)
	if err != nil {
		t.Fatal(err)
	}

	if res.TotalDistanceKm != 270.5 {
		t.Errorf("expected 270.5 km, got %v", res.TotalDistanceKm)
	}
	if res.EncodedGeometry != "_p~iF~ps|U_ulLnnqC" {
		t.Errorf("unexpected geometry %q", res.EncodedGeometry)
	}
	if origin != "36.806500,10.181500" {
		t.Errorf("unexpected origin %q", origin)
	}
	if waypoints != "35.824500,10.634600" {
		t.Errorf("unexpected waypoints %q", waypoints)
	}
}

func TestFetchRoute_ZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "routes": []}`))
	}))
	defer srv.Close()

	p, _ := New("test-key", srv.URL, time.Second)
	_, err := p.FetchRoute(context.Background(), []domain.GeoPoint{{Lat: 36.8, Lon: 10.1}, {Lat: 33.8, Lon: 10.8}})
	if !errors.Is(err, ports.ErrNoRoute) {
		t.Errorf("expected ErrNoRoute, got %v", err)
	}
}

func TestFetchRoute_DeniedIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "REQUEST_DENIED", "error_message": "bad key", "routes": []}`))
	}))
	defer srv.Close()

	p, _ := New("test-key", srv.URL, time.Second)
	_, err := p.FetchRoute(context.Background(), []domain.GeoPoint{{Lat: 36.8, Lon: 10.1}, {Lat: 33.8, Lon: 10.8}})
	if err == nil || errors.Is(err, ports.ErrNoRoute) {
		t.Errorf("expected a provider error, got %v", err)
	}
}

func TestFetchRoute_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	p, err := New("test-key", srv.URL, 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	start := time.Now()
	_, err = p.FetchRoute(context.Background(), []domain.GeoPoint{{Lat: 36.8, Lon: 10.1}, {Lat: 33.8, Lon: 10.8}})
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("request was not bounded by the timeout, took %v", elapsed)
	}
}
