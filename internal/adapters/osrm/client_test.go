package osrm

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

var (
	tunis = domain.GeoPoint{Lat: 36.8065, Lon: 10.1815}
	sfax  = domain.GeoPoint{Lat: 34.7406, Lon: 10.7603}
)

func TestFetchRoute(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code":"Ok","routes":[
			{"distance":270412.5,"geometry":"_p~iF~ps|U_ulLnnqC_mqNvxq` + "`" + `@"},
			{"distance":301000,"geometry":"??"}
		]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second)
	res, err := c.FetchRoute(context.Background(), []domain.GeoPoint{tunis, sfax})
	if err != nil {
		t.Fatal(err)
	}

	if gotPath != "/route/v1/driving/10.1815,36.8065;10.7603,34.7406" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotQuery != "overview=full" {
		t.Errorf("unexpected query %q", gotQuery)
	}
	if res.TotalDistanceKm != 270.4125 {
		t.Errorf("expected first route in km, got %v", res.TotalDistanceKm)
	}
	if res.EncodedGeometry != "_p~iF~ps|U_ulLnnqC_mqNvxq`@" {
		t.Errorf("unexpected geometry %q", res.EncodedGeometry)
	}
}

func TestFetchRoute_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		noRoute bool
	}{
		{"empty routes", 200, `{"code":"Ok","routes":[]}`, true},
		{"no segment", 200, `{"code":"NoSegment","message":"Could not find a matching segment"}`, true},
		{"server error", 500, `oops`, false},
		{"bad json", 200, `{"routes":`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			res, err := New(srv.URL, time.Second).FetchRoute(context.Background(), []domain.GeoPoint{tunis, sfax})
			if err == nil || res != nil {
				t.Fatalf("expected error, got %+v", res)
			}
			if errors.Is(err, ports.ErrNoRoute) != tt.noRoute {
				t.Errorf("ErrNoRoute = %v, want %v (err: %v)", errors.Is(err, ports.ErrNoRoute), tt.noRoute, err)
			}
		})
	}
}

func TestFetchRoute_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{"code":"Ok","routes":[{"distance":1}]}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := New(srv.URL, 5*time.Second).FetchRoute(ctx, []domain.GeoPoint{tunis, sfax}); err == nil {
		t.Fatal("expected timeout")
	}
}
